package collection

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/pagination"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

// Handler handles collection HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates collection handler
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

// List handles GET /api/collections
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Params:    pagination.FromRequest(r, defaultLimit, maxLimit),
		Search:    strings.TrimSpace(q.Get("search")),
		Type:      q.Get("type"),
		Status:    q.Get("status"),
		SortBy:    q.Get("sort_by"),
		SortOrder: strings.ToLower(q.Get("sort_order")),
	}
	if f.Type == "all" {
		f.Type = ""
	}

	caller, _ := middleware.GetIdentity(r.Context())
	page, err := h.service.List(r.Context(), caller, f)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.WithMeta(w, page.Collections, response.NewMeta(page.Total, f.Page, f.Limit))
}

// Get handles GET /api/collections/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	detail, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, detail)
}

// Create handles POST /api/collections
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	c, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, c)
}

// Update handles PUT /api/collections/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req CollectionRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, c)
}

// Delete handles DELETE /api/collections/{id}
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

// ListItems handles GET /api/collections/{id}/items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	caller, _ := middleware.GetIdentity(r.Context())
	items, err := h.service.ListItems(r.Context(), caller, id)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, items)
}

// AddItem handles POST /api/collections/{id}/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ItemRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.service.AddItem(r.Context(), id, &req)
	if err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.Created(w, item)
}

// ReorderItems handles PUT /api/collections/{id}/items
func (h *Handler) ReorderItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.ReorderItems(r.Context(), id, req.IDs); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, map[string]int{"reordered": len(req.IDs)})
}

// RemoveItem handles DELETE /api/collections/{id}/items/{itemId}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemId")
	if !ok {
		return
	}
	if err := h.service.RemoveItem(r.Context(), id, itemID); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.NoContent(w)
}
