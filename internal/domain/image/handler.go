package image

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/middleware"
	"github.com/deskhub/deskhub-api/internal/pkg/response"
)

// Handler handles office image HTTP requests
type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler creates image handler
func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

// Store handles POST /offices/{officeID}/images
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	officeID, err := uuid.Parse(chi.URLParam(r, "officeID"))
	if err != nil {
		response.BadRequest(w, "Invalid office ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.ValidationError(w, map[string]string{"image": "Image exceeds the size limit"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.ValidationError(w, map[string]string{"image": "Image file is required"})
		return
	}
	defer file.Close()

	userID := middleware.GetUserID(r.Context())
	img, err := h.service.Upload(r.Context(), userID, officeID, header.Filename, header.Size, file)
	if err != nil {
		switch err {
		case ErrOfficeNotFound:
			response.NotFound(w, "Office not found")
		case ErrNotOfficeOwner:
			response.Forbidden(w, "You can only manage images on your own offices")
		case ErrInvalidImageType:
			response.ValidationError(w, map[string]string{"image": "Image must be a jpg or png file"})
		case ErrImageTooLarge:
			response.ValidationError(w, map[string]string{"image": "Image exceeds the size limit"})
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, img)
}

// Delete handles DELETE /offices/{officeID}/images/{imageID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	officeID, err := uuid.Parse(chi.URLParam(r, "officeID"))
	if err != nil {
		response.BadRequest(w, "Invalid office ID")
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		response.BadRequest(w, "Invalid image ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, officeID, imageID); err != nil {
		switch err {
		case ErrOfficeNotFound:
			response.NotFound(w, "Office not found")
		case ErrNotOfficeOwner:
			response.Forbidden(w, "You can only manage images on your own offices")
		case ErrImageNotFound:
			response.NotFound(w, "Image not found")
		case ErrOnlyImage:
			response.ValidationError(w, map[string]string{"image": "Cannot delete the only image."})
		case ErrFeaturedImage:
			response.ValidationError(w, map[string]string{"image": "Cannot delete the featured image."})
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// Routes returns the office image router, mounted under /offices/{officeID}/images
func (h *Handler) Routes(authMiddleware, scopeMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(scopeMiddleware)
	r.Post("/", h.Store)
	r.Delete("/{imageID}", h.Delete)
	return r
}
