package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cresol/hub-api/internal/authz"
)

// Routes returns /api/admin/users.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireMethod(authz.Users))
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	return r
}

// CreateUserRoute returns POST /api/admin/create-user behind authn, which
// must accept the token from the adminToken body field.
func (h *Handler) CreateUserRoute(authn func(http.Handler) http.Handler) http.Handler {
	return chi.Chain(authn, authz.Require(authz.Users, authz.Create)).HandlerFunc(h.CreateUser)
}

// UpdateRoleRoute returns POST /api/admin/update-user-role. Authentication
// is applied by the parent router.
func (h *Handler) UpdateRoleRoute() http.Handler {
	return authz.Require(authz.Users, authz.Update)(http.HandlerFunc(h.UpdateRole))
}
