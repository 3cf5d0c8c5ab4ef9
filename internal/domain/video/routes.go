package video

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
)

// Routes returns /api/videos.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Videos, authz.Read))
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns /api/admin/videos. upload stores a direct video file
// and answers with its URL, which the client then sends to POST /.
func (h *Handler) AdminRoutes(upload http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireManage(authz.Videos))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	if upload != nil {
		r.With(middleware.Deadline(middleware.UploadTimeout)).Post("/upload", upload)
	}
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/active", h.SetActive)
	r.Delete("/{id}", h.Delete)
	return r
}
