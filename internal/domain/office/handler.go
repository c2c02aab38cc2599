package office

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/middleware"
	"github.com/deskhub/deskhub-api/internal/pkg/jwt"
	"github.com/deskhub/deskhub-api/internal/pkg/response"
	"github.com/deskhub/deskhub-api/internal/pkg/validator"
)

// Scope names for office management
const (
	ScopeCreate = "office.create"
	ScopeUpdate = "office.update"
	ScopeDelete = "office.delete"
)

// Handler handles office HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates office handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /offices
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := &ListQuery{Page: 1}

	params := r.URL.Query()
	if v := params.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			response.BadRequest(w, "Invalid page")
			return
		}
		q.Page = page
	}
	if v := params.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid user_id")
			return
		}
		q.UserID = &id
	}
	if v := params.Get("visitor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid visitor_id")
			return
		}
		q.VisitorID = &id
	}
	if v := params.Get("tags"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				response.BadRequest(w, "Invalid tags")
				return
			}
			q.TagIDs = append(q.TagIDs, id)
		}
	}

	lat, lng := params.Get("lat"), params.Get("lng")
	if (lat == "") != (lng == "") {
		response.BadRequest(w, "lat and lng must be provided together")
		return
	}
	if lat != "" {
		latF, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			response.BadRequest(w, "Invalid lat")
			return
		}
		lngF, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			response.BadRequest(w, "Invalid lng")
			return
		}
		q.Lat, q.Lng = &latF, &lngF
	}

	requesterID := middleware.GetUserID(r.Context())
	offices, total, err := h.service.List(r.Context(), requesterID, q)
	if err != nil {
		response.InternalError(w)
		return
	}

	out, err := h.service.Hydrate(r.Context(), offices)
	if err != nil {
		response.InternalError(w)
		return
	}

	meta := response.NewMeta(total, q.Page, PageSize)
	response.Paginated(w, out, meta, response.NewLinks(r.URL.Path, meta))
}

// Get handles GET /offices/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid office ID")
		return
	}

	o, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOfficeNotFound) {
			response.NotFound(w, "Office not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	// Unapproved and hidden offices exist only for their owner.
	requesterID := middleware.GetUserID(r.Context())
	if !o.IsVisible() && o.UserID != requesterID && !middleware.IsAdmin(r.Context()) {
		response.NotFound(w, "Office not found")
		return
	}

	out, err := h.service.Hydrate(r.Context(), []*Office{o})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, out[0])
}

// Create handles POST /offices
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	o, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, err := h.service.Hydrate(r.Context(), []*Office{o})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, out[0])
}

// Update handles PUT /offices/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid office ID")
		return
	}

	var req UpdateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	o, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, err := h.service.Hydrate(r.Context(), []*Office{o})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, out[0])
}

// Delete handles DELETE /offices/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid office ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	switch {
	case errors.Is(err, ErrOfficeNotFound):
		response.NotFound(w, "Office not found")
	case errors.Is(err, ErrNotOfficeOwner):
		response.Forbidden(w, "You can only manage your own offices")
	case errors.Is(err, ErrHasReservations):
		response.ValidationError(w, map[string]string{"office": "Cannot delete an office that has reservations."})
	case errors.As(err, &verrs):
		response.ValidationError(w, verrs)
	default:
		response.InternalError(w)
	}
}

// Routes returns the office router
func (h *Handler) Routes(jwtService *jwt.Service) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(jwtService))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtService))
		r.With(middleware.RequireScope(ScopeCreate)).Post("/", h.Create)
		r.With(middleware.RequireScope(ScopeUpdate)).Put("/{id}", h.Update)
		r.With(middleware.RequireScope(ScopeDelete)).Delete("/{id}", h.Delete)
	})

	return r
}
