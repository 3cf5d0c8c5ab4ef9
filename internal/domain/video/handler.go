package video

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles dashboard video HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates dashboard video handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid video ID")
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

// List handles GET /api/videos?active_only=false
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	videos, err := h.service.List(r.Context(), caller, r.URL.Query().Get("active_only") != "false")
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, videos)
}

// Get handles GET /api/videos/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	v, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, v)
}

// Create handles POST /api/admin/videos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	v, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, v)
}

// Update handles PUT /api/admin/videos/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req VideoRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, v)
}

// SetActive handles PATCH /api/admin/videos/{id}/active
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

// Delete handles DELETE /api/admin/videos/{id}
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
