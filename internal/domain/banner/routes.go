package banner

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
)

// Routes returns /api/banners.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Banners, authz.Read))
	r.Get("/", h.List)
	return r
}

// AdminRoutes returns /api/admin/banners.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireManage(authz.Banners))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.With(middleware.Deadline(middleware.UploadTimeout)).Post("/upload", h.Upload)
	r.Put("/reorder", h.Reorder)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/active", h.SetActive)
	r.Delete("/{id}", h.Delete)
	return r
}
