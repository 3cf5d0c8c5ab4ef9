package feed

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
)

// Handler handles feed HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates feed handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns /api/feed. Every authenticated user may read it.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	return r
}

// Get handles GET /api/feed
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())

	f, err := h.service.Get(r.Context(), caller)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, f)
}
