package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles work location and position HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reference handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid ID")
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

// ListWorkLocations handles GET /api/work-locations
func (h *Handler) ListWorkLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListWorkLocations(r.Context())
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, rows)
}

// CreateWorkLocation handles POST /api/admin/work-locations
func (h *Handler) CreateWorkLocation(w http.ResponseWriter, r *http.Request) {
	var req WorkLocationRequest
	if !decode(w, r, &req) {
		return
	}
	wl, err := h.service.CreateWorkLocation(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, wl)
}

// UpdateWorkLocation handles PUT /api/admin/work-locations/{id}
func (h *Handler) UpdateWorkLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req WorkLocationRequest
	if !decode(w, r, &req) {
		return
	}
	wl, err := h.service.UpdateWorkLocation(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, wl)
}

// DeleteWorkLocation handles DELETE /api/admin/work-locations/{id}
func (h *Handler) DeleteWorkLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteWorkLocation(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

// ListPositions handles GET /api/positions
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListPositions(r.Context())
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, rows)
}

// CreatePosition handles POST /api/admin/positions
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.CreatePosition(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, p)
}

// UpdatePosition handles PUT /api/admin/positions/{id}
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req PositionRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdatePosition(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, p)
}

// DeletePosition handles DELETE /api/admin/positions/{id}
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePosition(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}
