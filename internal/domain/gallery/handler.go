package gallery

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

// Handler handles gallery HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates gallery handler
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

func formTitle(r *http.Request) *string {
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		return nil
	}
	return &title
}

// List handles GET /api/gallery?active_only=false
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	activeOnly := r.URL.Query().Get("active_only") != "false"

	images, err := h.service.List(r.Context(), caller, activeOnly)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, images)
}

// Create handles POST /api/admin/gallery
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	img, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, img)
}

// Upload handles POST /api/admin/gallery/upload
// Multipart form: file + title
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, ok := upload.FormFile(w, r, storage.BucketImages)
	if !ok {
		return
	}
	defer file.Close()

	caller, _ := middleware.GetIdentity(r.Context())
	img, err := h.service.Upload(r.Context(), caller, formTitle(r), file)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, img)
}

// Update handles PUT /api/admin/gallery/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ImageRequest
	if !decode(w, r, &req) {
		return
	}
	img, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, img)
}

// SetActive handles PATCH /api/admin/gallery/{id}/active
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
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

// Delete handles DELETE /api/admin/gallery/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}

// ListSubsector handles GET /api/subsectors/{id}/images?show_drafts=true
func (h *Handler) ListSubsector(w http.ResponseWriter, r *http.Request) {
	subsectorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	images, err := h.service.ListSubsector(r.Context(), caller, subsectorID, r.URL.Query().Get("show_drafts") == "true")
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, images)
}

// CreateSubsector handles POST /api/admin/subsectors/{id}/images
func (h *Handler) CreateSubsector(w http.ResponseWriter, r *http.Request) {
	subsectorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ImageRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	img, err := h.service.CreateSubsectorImage(r.Context(), caller, subsectorID, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, img)
}

// UploadSubsector handles POST /api/admin/subsectors/{id}/images/upload
func (h *Handler) UploadSubsector(w http.ResponseWriter, r *http.Request) {
	subsectorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	file, ok := upload.FormFile(w, r, storage.BucketImages)
	if !ok {
		return
	}
	defer file.Close()

	caller, _ := middleware.GetIdentity(r.Context())
	img, err := h.service.UploadSubsectorImage(r.Context(), caller, subsectorID, formTitle(r), file)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, img)
}

// UpdateSubsector handles PUT /api/admin/subsectors/{id}/images/{itemId}
func (h *Handler) UpdateSubsector(w http.ResponseWriter, r *http.Request) {
	subsectorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	id, ok := parseID(w, r, "itemId")
	if !ok {
		return
	}
	var req ImageRequest
	if !decode(w, r, &req) {
		return
	}
	img, err := h.service.UpdateSubsectorImage(r.Context(), subsectorID, id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, img)
}

// SetSubsectorPublished handles PATCH /api/admin/subsectors/{id}/images/{itemId}/published
func (h *Handler) SetSubsectorPublished(w http.ResponseWriter, r *http.Request) {
	subsectorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	id, ok := parseID(w, r, "itemId")
	if !ok {
		return
	}
	var req PublishedRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.SetSubsectorImagePublished(r.Context(), subsectorID, id, *req.IsPublished); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{"id": id, "is_published": *req.IsPublished})
}

// DeleteSubsector handles DELETE /api/admin/subsectors/{id}/images/{itemId}
func (h *Handler) DeleteSubsector(w http.ResponseWriter, r *http.Request) {
	subsectorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	id, ok := parseID(w, r, "itemId")
	if !ok {
		return
	}
	if err := h.service.DeleteSubsectorImage(r.Context(), subsectorID, id); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}
