package gallery

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
)

// Routes returns /api/gallery.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Gallery, authz.Read))
	r.Get("/", h.List)
	return r
}

// AdminRoutes returns /api/admin/gallery.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireManage(authz.Gallery))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.With(middleware.Deadline(middleware.UploadTimeout)).Post("/upload", h.Upload)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/active", h.SetActive)
	r.Delete("/{id}", h.Delete)
	return r
}

// SubsectorRoutes registers GET /images under /api/subsectors/{id}.
func (h *Handler) SubsectorRoutes() func(chi.Router) {
	return func(r chi.Router) {
		r.With(authz.Require(authz.SubsectorContent, authz.Read)).Get("/images", h.ListSubsector)
	}
}

// SubsectorAdminRoutes registers the image writes under
// /api/admin/subsectors/{id}.
func (h *Handler) SubsectorAdminRoutes(scopes *authz.Scopes) func(chi.Router) {
	return func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireManage(authz.SubsectorContent), scopes.RequireSubsector("id"))

			r.Get("/images", h.ListSubsector)
			r.Post("/images", h.CreateSubsector)
			r.With(middleware.Deadline(middleware.UploadTimeout)).Post("/images/upload", h.UploadSubsector)
			r.Put("/images/{itemId}", h.UpdateSubsector)
			r.Patch("/images/{itemId}/published", h.SetSubsectorPublished)
			r.Delete("/images/{itemId}", h.DeleteSubsector)
		})
	}
}
