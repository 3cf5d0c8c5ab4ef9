package notification

import (
	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
)

// Routes returns /api/notifications. Every authenticated user reads only
// their own rows.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/unread-count", h.GetUnreadCount)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)
	return r
}

// AdminRoutes returns /api/admin/notifications.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireManage(authz.Notifications))
	r.Post("/", h.Send)
	return r
}

// GroupRoutes returns /api/admin/notification-groups.
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireManage(authz.Notifications))
	r.Get("/", h.ListGroups)
	r.Post("/", h.CreateGroup)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetGroup)
		r.Put("/", h.UpdateGroup)
		r.Delete("/", h.DeleteGroup)
		r.Get("/members", h.ListMembers)
		r.Post("/members", h.AddMembers)
		r.Delete("/members/{userId}", h.RemoveMember)
	})
	return r
}
