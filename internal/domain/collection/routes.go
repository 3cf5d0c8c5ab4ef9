package collection

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
)

// Routes returns /api/collections. Reads are open to every role, writes
// follow the collections policy.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireMethod(authz.Collections))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)

		r.Get("/items", h.ListItems)
		r.Post("/items", h.AddItem)
		r.Put("/items", h.ReorderItems)
		r.Delete("/items/{itemId}", h.RemoveItem)
	})
	return r
}
