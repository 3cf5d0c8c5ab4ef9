package sector

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles sector and subsector HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates sector handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		response.BadRequest(w, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// ListSectors handles GET /api/sectors?managed=true
func (h *Handler) ListSectors(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	managed := r.URL.Query().Get("managed") == "true"

	sectors, err := h.service.ListSectors(r.Context(), caller, managed)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, sectors)
}

// GetSector handles GET /api/sectors/{id}
func (h *Handler) GetSector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	sec, err := h.service.GetSector(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, sec)
}

// ListSubsectors handles GET /api/sectors/{id}/subsectors
func (h *Handler) ListSubsectors(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	subs, err := h.service.ListSubsectors(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, subs)
}

// GetSubsector handles GET /api/subsectors/{id}
func (h *Handler) GetSubsector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	sub, err := h.service.GetSubsector(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, sub)
}

// CreateSector handles POST /api/admin/sectors
func (h *Handler) CreateSector(w http.ResponseWriter, r *http.Request) {
	var req SectorRequest
	if !decode(w, r, &req) {
		return
	}
	sec, err := h.service.CreateSector(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, sec)
}

// UpdateSector handles PUT /api/admin/sectors/{id}
func (h *Handler) UpdateSector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req SectorRequest
	if !decode(w, r, &req) {
		return
	}
	sec, err := h.service.UpdateSector(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, sec)
}

// DeleteSector handles DELETE /api/admin/sectors/{id}
func (h *Handler) DeleteSector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSector(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

// CreateSubsector handles POST /api/admin/subsectors
func (h *Handler) CreateSubsector(w http.ResponseWriter, r *http.Request) {
	var req SubsectorRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	sub, err := h.service.CreateSubsector(r.Context(), caller, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, sub)
}

// UpdateSubsector handles PUT /api/admin/subsectors/{id}
func (h *Handler) UpdateSubsector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req SubsectorRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	sub, err := h.service.UpdateSubsector(r.Context(), caller, id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, sub)
}

// DeleteSubsector handles DELETE /api/admin/subsectors/{id}
func (h *Handler) DeleteSubsector(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSubsector(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

// ListSectorAdmins handles GET /api/admin/sectors/{id}/admins
func (h *Handler) ListSectorAdmins(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	admins, err := h.service.ListSectorAdmins(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, admins)
}

// AssignSectorAdmin handles POST /api/admin/sectors/{id}/admins
func (h *Handler) AssignSectorAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req AssignAdminRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.AssignSectorAdmin(r.Context(), id, req.UserID); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, map[string]uuid.UUID{"sector_id": id, "user_id": req.UserID})
}

// RevokeSectorAdmin handles DELETE /api/admin/sectors/{id}/admins/{userId}
func (h *Handler) RevokeSectorAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := parseID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.service.RevokeSectorAdmin(r.Context(), id, userID); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

// ListSubsectorAdmins handles GET /api/admin/subsectors/{id}/admins
func (h *Handler) ListSubsectorAdmins(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	admins, err := h.service.ListSubsectorAdmins(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, admins)
}

// AssignSubsectorAdmin handles POST /api/admin/subsectors/{id}/admins
func (h *Handler) AssignSubsectorAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req AssignAdminRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.AssignSubsectorAdmin(r.Context(), id, req.UserID); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, map[string]uuid.UUID{"subsector_id": id, "user_id": req.UserID})
}

// RevokeSubsectorAdmin handles DELETE /api/admin/subsectors/{id}/admins/{userId}
func (h *Handler) RevokeSubsectorAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := parseID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.service.RevokeSubsectorAdmin(r.Context(), id, userID); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
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
