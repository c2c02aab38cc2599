package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deskhub/deskhub-api/internal/pkg/response"
)

// Handler handles tag HTTP requests
type Handler struct {
	repo Repository
}

// NewHandler creates tag handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /tags
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.repo.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	if tags == nil {
		tags = []*Tag{}
	}
	response.OK(w, tags)
}

// Routes returns tag router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}
