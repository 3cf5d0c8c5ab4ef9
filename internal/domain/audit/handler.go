package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/pagination"
	"github.com/cresol/hub-api/internal/pkg/response"
)

// Handler serves the audit log to admins.
type Handler struct {
	service *Service
}

// NewHandler creates audit handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/admin/audit/logs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		Params:     pagination.FromRequest(r, 50, 100),
	}

	logs, total, err := h.service.List(r.Context(), f)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}

	items := make([]*LogResponse, len(logs))
	for i, l := range logs {
		items[i] = ToResponse(l)
	}
	response.WithMeta(w, items, response.NewMeta(total, f.Page, f.Limit))
}

// Routes returns the audit router. The caller applies the admin gate.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/logs", h.List)
	return r
}
