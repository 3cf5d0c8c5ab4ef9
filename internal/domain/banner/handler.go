package banner

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/domain/upload"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/storage"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles banner HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates banner handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid banner ID")
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

// List handles GET /api/banners?active_only=false
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	banners, err := h.service.List(r.Context(), caller, r.URL.Query().Get("active_only") != "false")
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, banners)
}

// Create handles POST /api/admin/banners
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req BannerRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.service.Create(r.Context(), &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, b)
}

// Upload handles POST /api/admin/banners/upload
// Multipart form: file + title + link
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, ok := upload.FormFile(w, r, storage.BucketBanners)
	if !ok {
		return
	}
	defer file.Close()

	var link *string
	if l := strings.TrimSpace(r.FormValue("link")); l != "" {
		if err := validator.ValidateVar(l, "url"); err != nil {
			errorhandler.HandleValidation(w, r, map[string]string{"link": "must be a valid URL"})
			return
		}
		link = &l
	}

	b, err := h.service.Upload(r.Context(), strings.TrimSpace(r.FormValue("title")), link, file)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, b)
}

// Update handles PUT /api/admin/banners/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req BannerRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, b)
}

// SetActive handles PATCH /api/admin/banners/{id}/active
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

// Reorder handles PUT /api/admin/banners/reorder
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.Reorder(r.Context(), req.IDs); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, map[string]int{"reordered": len(req.IDs)})
}

// Delete handles DELETE /api/admin/banners/{id}
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
