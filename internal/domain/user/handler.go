package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/domain/profile"
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

// Handler handles user management HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateUser handles POST /api/admin/create-user
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Raw(w, http.StatusCreated, CreateUserResponse{
		Success:      true,
		TempPassword: created.TempPassword,
		UserID:       created.UserID,
	})
}

// UpdateRole handles POST /api/admin/update-user-role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())

	p, err := h.service.ChangeRole(r.Context(), caller, req.UserID, req.Role)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, p)
}

// List handles GET /api/admin/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := profile.Filter{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Params: pagination.FromRequest(r, defaultLimit, maxLimit),
	}
	if f.Role == "all" {
		f.Role = ""
	}

	users, total, err := h.service.List(r.Context(), f)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.WithMeta(w, users, response.NewMeta(total, f.Page, f.Limit))
}

// Get handles GET /api/admin/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, p)
}

// Update handles PUT /api/admin/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())

	p, err := h.service.Update(r.Context(), caller, id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, p)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
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
