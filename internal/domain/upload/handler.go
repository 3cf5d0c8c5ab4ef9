package upload

import (
	"mime/multipart"
	"net/http"

	"github.com/cresol/hub-api/internal/pkg/errorhandler"
	"github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

// multipartMemory is what ParseMultipartForm keeps in memory; larger parts
// spill to temp files.
const multipartMemory = 32 << 20

// FormFile reads the "file" part of a multipart request, capping the body
// at the bucket limit. On failure the response is already written.
func FormFile(w http.ResponseWriter, r *http.Request, bucket string) (multipart.File, bool) {
	limit, ok := storage.MaxFileSizes[bucket]
	if !ok {
		limit = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return nil, false
	}
	return file, true
}

// Handler exposes raw uploads, used for direct video files.
type Handler struct {
	service *Service
}

// NewHandler creates upload handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST .../upload for req.Bucket and returns the stored
// object. The caller saves the URL on its own row afterwards.
func (h *Handler) Upload(req Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, ok := FormFile(w, r, req.Bucket)
		if !ok {
			return
		}
		defer file.Close()

		stored, err := h.service.Store(r.Context(), req, file)
		if err != nil {
			errorhandler.Handle(w, r, err)
			return
		}
		response.Created(w, stored)
	}
}
