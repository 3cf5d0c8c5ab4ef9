package content

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
)

// PublicRoutes registers the read routes under a parent's /{id}.
func (h *Handler) PublicRoutes() func(chi.Router) {
	s := h.service
	return func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.Require(s.scope.Resource, authz.Read))

			r.Get("/news", list(s.ListNews))
			r.Get("/news/{itemId}", get(s.GetNews))
			r.Get("/events", list(s.ListEvents))
			r.Get("/events/{itemId}", get(s.GetEvent))
			r.Get("/videos", list(s.ListVideos))
			r.Get("/videos/{itemId}", get(s.GetVideo))
		})
	}
}

// AdminRoutes registers the write routes under a parent's /{id}. The caller
// must pass the policy and manage the parent.
func (h *Handler) AdminRoutes(scopes *authz.Scopes) func(chi.Router) {
	s := h.service
	guard := scopes.RequireSubsector
	if s.scope.Name == SectorScope.Name {
		guard = scopes.RequireSector
	}

	return func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireManage(s.scope.Resource), guard("id"))

			r.Get("/news", list(s.ListNews))
			r.Post("/news", create(s.CreateNews))
			r.Put("/news/{itemId}", update(s.UpdateNews))
			r.Delete("/news/{itemId}", remove(s.DeleteNews))
			h.toggles(r, KindNews)

			r.Get("/events", list(s.ListEvents))
			r.Post("/events", create(s.CreateEvent))
			r.Put("/events/{itemId}", update(s.UpdateEvent))
			r.Delete("/events/{itemId}", remove(s.DeleteEvent))
			h.toggles(r, KindEvents)

			r.Get("/videos", list(s.ListVideos))
			r.Post("/videos", create(s.CreateVideo))
			r.Put("/videos/reorder", h.ReorderVideos)
			r.Put("/videos/{itemId}", update(s.UpdateVideo))
			r.Delete("/videos/{itemId}", remove(s.DeleteVideo))
			h.toggles(r, KindVideos)
		})
	}
}

func (h *Handler) toggles(r chi.Router, k Kind) {
	r.Patch("/"+string(k)+"/{itemId}/featured", h.SetFeatured(k))
	r.Patch("/"+string(k)+"/{itemId}/published", h.SetPublished(k))
}
