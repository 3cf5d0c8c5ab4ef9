package reference

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
)

// Routes registers GET /work-locations and GET /positions on an /api router.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.Reference, authz.Read))
		r.Get("/work-locations", h.ListWorkLocations)
		r.Get("/positions", h.ListPositions)
	})
}

// AdminRoutes registers the writes on an /api/admin router.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authz.RequireManage(authz.Reference))

		r.Get("/work-locations", h.ListWorkLocations)
		r.Post("/work-locations", h.CreateWorkLocation)
		r.Put("/work-locations/{id}", h.UpdateWorkLocation)
		r.Delete("/work-locations/{id}", h.DeleteWorkLocation)

		r.Get("/positions", h.ListPositions)
		r.Post("/positions", h.CreatePosition)
		r.Put("/positions/{id}", h.UpdatePosition)
		r.Delete("/positions/{id}", h.DeletePosition)
	})
}
