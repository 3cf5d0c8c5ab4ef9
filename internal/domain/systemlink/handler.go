package systemlink

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles system link HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates system link handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns /api/system-links.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.SystemLinks, authz.Read))
	r.Get("/", h.List)
	return r
}

// AdminRoutes returns /api/admin/system-links.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireManage(authz.SystemLinks))
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/active", h.SetActive)
	r.Delete("/{id}", h.Delete)
	return r
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid system link ID")
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := response.DecodeJSON(r.Body, v); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(v); errs != nil {
		errorhandler.HandleValidation(w, r, errs)
		return false
	}
	return true
}

// List handles GET /api/system-links?active_only=false
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	links, err := h.service.List(r.Context(), caller, r.URL.Query().Get("active_only") != "false")
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, links)
}

// Create handles POST /api/admin/system-links
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.service.Create(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, l)
}

// Update handles PUT /api/admin/system-links/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req LinkRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, l)
}

// SetActive handles PATCH /api/admin/system-links/{id}/active
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req ActiveRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.SetActive(r.Context(), id, *req.IsActive); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"id": id, "is_active": *req.IsActive})
}

// Delete handles DELETE /api/admin/system-links/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}
