package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/middleware"
	"github.com/deskhub/deskhub-api/internal/pkg/jwt"
	"github.com/deskhub/deskhub-api/internal/pkg/response"
	"github.com/deskhub/deskhub-api/internal/pkg/validator"
)

// Scope names for reservation management
const (
	ScopeShow   = "reservations.show"
	ScopeMake   = "reservations.make"
	ScopeCancel = "reservations.cancel"
)

// Handler handles reservation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reservation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /reservations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := &Filter{UserID: middleware.GetUserID(r.Context())}
	page := 1

	params := r.URL.Query()
	if v := params.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			response.BadRequest(w, "Invalid page")
			return
		}
		page = p
	}
	if v := params.Get("status"); v != "" {
		status := Status(v)
		if !status.Valid() {
			response.BadRequest(w, "Invalid status")
			return
		}
		filter.Status = &status
	}
	if v := params.Get("office_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid office_id")
			return
		}
		filter.OfficeID = &id
	}
	if v := params.Get("from_date"); v != "" {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			response.BadRequest(w, "Invalid from_date")
			return
		}
		filter.FromDate = &d
	}
	if v := params.Get("to_date"); v != "" {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			response.BadRequest(w, "Invalid to_date")
			return
		}
		filter.ToDate = &d
	}

	reservations, total, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		response.InternalError(w)
		return
	}

	out, err := h.service.Hydrate(r.Context(), reservations)
	if err != nil {
		response.InternalError(w)
		return
	}

	meta := response.NewMeta(total, page, PageSize)
	response.Paginated(w, out, meta, response.NewLinks(r.URL.Path, meta))
}

// Create handles POST /reservations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	start, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		response.ValidationError(w, map[string]string{"start_date": "The start date must be a valid date."})
		return
	}
	end, err := time.Parse(DateLayout, req.EndDate)
	if err != nil {
		response.ValidationError(w, map[string]string{"end_date": "The end date must be a valid date."})
		return
	}

	visitorID := middleware.GetUserID(r.Context())
	res, err := h.service.Create(r.Context(), visitorID, req.OfficeID, start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, err := h.service.Hydrate(r.Context(), []*Reservation{res})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, out[0])
}

// Cancel handles DELETE /reservations/{id}
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reservation ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	res, err := h.service.Cancel(r.Context(), requesterID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, err := h.service.Hydrate(r.Context(), []*Reservation{res})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, out[0])
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(w, verrs)
	case errors.Is(err, ErrReservationNotFound):
		response.NotFound(w, "Reservation not found")
	case errors.Is(err, ErrNotReservationOwner):
		response.Forbidden(w, "You can only manage your own reservations")
	case errors.Is(err, ErrNotActive):
		response.ValidationError(w, map[string]string{"reservation": "Only active reservations can be cancelled."})
	case errors.Is(err, ErrTxConflict):
		response.Conflict(w, "The office was booked by someone else, please try again")
	default:
		response.InternalError(w)
	}
}

// Routes returns the reservation router
func (h *Handler) Routes(jwtService *jwt.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Auth(jwtService))
	r.With(middleware.RequireScope(ScopeShow)).Get("/", h.List)
	r.With(middleware.RequireScope(ScopeMake)).Post("/", h.Create)
	r.With(middleware.RequireScope(ScopeCancel)).Delete("/{id}", h.Cancel)
	return r
}
