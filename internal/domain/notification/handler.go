package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/pagination"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler handles notification HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r, defaultLimit, maxLimit)

	list, total, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), p)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.WithMeta(w, list, response.NewMeta(total, p.Page, p.Limit))
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GetUnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead handles POST /api/notifications/{id}/read
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid notification ID")
	if !ok {
		return
	}
	if err := h.service.MarkAsRead(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, map[string]string{"status": "ok"})
}

// MarkAllAsRead handles POST /api/notifications/read-all
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllAsRead(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, ReadAllResponse{Updated: n})
}

// Send handles POST /api/admin/notifications
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())

	result, err := h.service.Send(r.Context(), caller, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, result)
}

// ListGroups handles GET /api/admin/notification-groups
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid group ID")
	if !ok {
		return
	}
	g, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, g)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())

	g, err := h.service.CreateGroup(r.Context(), caller, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, g)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid group ID")
	if !ok {
		return
	}
	var req GroupRequest
	if !decode(w, r, &req) {
		return
	}

	g, err := h.service.UpdateGroup(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, g)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid group ID")
	if !ok {
		return
	}
	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid group ID")
	if !ok {
		return
	}
	members, err := h.service.ListMembers(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, members)
}

func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid group ID")
	if !ok {
		return
	}
	var req MembersRequest
	if !decode(w, r, &req) {
		return
	}

	added, err := h.service.AddMembers(r.Context(), id, req.UserIDs)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, map[string]int64{"added": added})
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "Invalid group ID")
	if !ok {
		return
	}
	userID, ok := parseID(w, r, "userId", "Invalid user ID")
	if !ok {
		return
	}
	if err := h.service.RemoveMember(r.Context(), id, userID); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

func parseID(w http.ResponseWriter, r *http.Request, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		response.BadRequest(w, msg)
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
