package content

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// Handler handles scoped content HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates content handler
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

func parseIDs(w http.ResponseWriter, r *http.Request) (parentID, itemID uuid.UUID, ok bool) {
	if parentID, ok = parseID(w, r, "id"); !ok {
		return
	}
	itemID, ok = parseID(w, r, "itemId")
	return
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

// list handles GET .../{id}/<kind>?show_drafts=true
func list[T any](load func(context.Context, middleware.Identity, uuid.UUID, bool) ([]*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		caller, _ := middleware.GetIdentity(r.Context())
		items, err := load(r.Context(), caller, parentID, r.URL.Query().Get("show_drafts") == "true")
		if err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.OK(w, items)
	}
}

// get handles GET .../{id}/<kind>/{itemId}
func get[T any](load func(context.Context, middleware.Identity, uuid.UUID, uuid.UUID) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, itemID, ok := parseIDs(w, r)
		if !ok {
			return
		}
		caller, _ := middleware.GetIdentity(r.Context())
		it, err := load(r.Context(), caller, parentID, itemID)
		if err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.OK(w, it)
	}
}

// create handles POST .../{id}/<kind>
func create[Req, T any](save func(context.Context, middleware.Identity, uuid.UUID, *Req) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		var req Req
		if !decode(w, r, &req) {
			return
		}
		caller, _ := middleware.GetIdentity(r.Context())
		it, err := save(r.Context(), caller, parentID, &req)
		if err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.Created(w, it)
	}
}

// update handles PUT .../{id}/<kind>/{itemId}
func update[Req, T any](save func(context.Context, uuid.UUID, uuid.UUID, *Req) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, itemID, ok := parseIDs(w, r)
		if !ok {
			return
		}
		var req Req
		if !decode(w, r, &req) {
			return
		}
		it, err := save(r.Context(), parentID, itemID, &req)
		if err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.OK(w, it)
	}
}

// remove handles DELETE .../{id}/<kind>/{itemId}
func remove(del func(context.Context, uuid.UUID, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, itemID, ok := parseIDs(w, r)
		if !ok {
			return
		}
		if err := del(r.Context(), parentID, itemID); err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.NoContent(w)
	}
}

// SetFeatured handles PATCH .../{id}/<kind>/{itemId}/featured
func (h *Handler) SetFeatured(k Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, itemID, ok := parseIDs(w, r)
		if !ok {
			return
		}
		var req FeaturedRequest
		if !decode(w, r, &req) {
			return
		}
		if err := h.service.SetFeatured(r.Context(), k, parentID, itemID, *req.IsFeatured); err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.OK(w, map[string]interface{}{"id": itemID, "is_featured": *req.IsFeatured})
	}
}

// SetPublished handles PATCH .../{id}/<kind>/{itemId}/published
func (h *Handler) SetPublished(k Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, itemID, ok := parseIDs(w, r)
		if !ok {
			return
		}
		var req PublishedRequest
		if !decode(w, r, &req) {
			return
		}
		if err := h.service.SetPublished(r.Context(), k, parentID, itemID, *req.IsPublished); err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.OK(w, map[string]interface{}{"id": itemID, "is_published": *req.IsPublished})
	}
}

// ReorderVideos handles PUT .../{id}/videos/reorder
func (h *Handler) ReorderVideos(w http.ResponseWriter, r *http.Request) {
	parentID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.ReorderVideos(r.Context(), parentID, req.IDs); err != nil {
		errorhandler.Handle(w, r, err)
		return
	}
	response.OK(w, map[string]int{"reordered": len(req.IDs)})
}
