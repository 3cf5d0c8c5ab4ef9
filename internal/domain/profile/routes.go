package profile

import "github.com/go-chi/chi/v5"

// Routes returns the /api/me router. Authentication is applied by the
// parent router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMe)
	r.Put("/", h.UpdateMe)
	return r
}
