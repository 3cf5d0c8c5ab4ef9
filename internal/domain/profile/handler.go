package profile

import (
	"net/http"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles profile HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates profile handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetMe handles GET /api/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, p)
}

// UpdateMe handles PUT /api/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.HandleValidation(w, r, errs)
		return
	}

	p, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, p)
}
