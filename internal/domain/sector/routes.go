package sector

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
)

// Routes returns /api/sectors. extra registers nested content routes under
// /{id}.
func (h *Handler) Routes(extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Sectors, authz.Read))

	r.Get("/", h.ListSectors)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetSector)
		r.Get("/subsectors", h.ListSubsectors)
		for _, register := range extra {
			register(r)
		}
	})
	return r
}

// SubsectorRoutes returns /api/subsectors.
func (h *Handler) SubsectorRoutes(extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Subsectors, authz.Read))

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetSubsector)
		for _, register := range extra {
			register(r)
		}
	})
	return r
}

// AdminRoutes returns /api/admin/sectors.
func (h *Handler) AdminRoutes(extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.With(authz.Require(authz.Sectors, authz.Create)).Post("/", h.CreateSector)
	r.Route("/{id}", func(r chi.Router) {
		r.With(authz.Require(authz.Sectors, authz.Update)).Put("/", h.UpdateSector)
		r.With(authz.Require(authz.Sectors, authz.Delete)).Delete("/", h.DeleteSector)

		r.Route("/admins", func(r chi.Router) {
			r.Use(authz.Require(authz.Sectors, authz.Update))
			r.Get("/", h.ListSectorAdmins)
			r.Post("/", h.AssignSectorAdmin)
			r.Delete("/{userId}", h.RevokeSectorAdmin)
		})

		for _, register := range extra {
			register(r)
		}
	})
	return r
}

// AdminSubsectorRoutes returns /api/admin/subsectors. Sector admins pass the
// policy and are then held to their own sectors.
func (h *Handler) AdminSubsectorRoutes(scopes *authz.Scopes, extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.With(authz.Require(authz.Subsectors, authz.Create)).Post("/", h.CreateSubsector)
	r.Route("/{id}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireManage(authz.Subsectors), scopes.RequireSubsector("id"))
			r.Put("/", h.UpdateSubsector)
			r.Delete("/", h.DeleteSubsector)
			r.Get("/admins", h.ListSubsectorAdmins)
			r.Post("/admins", h.AssignSubsectorAdmin)
			r.Delete("/admins/{userId}", h.RevokeSubsectorAdmin)
		})

		for _, register := range extra {
			register(r)
		}
	})
	return r
}
