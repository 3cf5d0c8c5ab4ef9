package errorhandler

import (
	"errors"
	"net/http"

	"github.com/lib/pq"

	"github.com/cresol/hub-api/internal/pkg/apperror"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/response"
)

// Handle maps err to the response envelope and logs it with the request
// context. Classified errors keep their message; anything else becomes 500.
func Handle(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	msg := apperror.Message(err)

	if kind == apperror.KindInternal {
		kind, msg = classifyDatabase(err)
	}

	status := statusFor(kind)
	event := logger.FromContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromContext(r.Context()).Error()
	}
	event.Err(err).
		Str("error_code", kind.String()).
		Int("status_code", status).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request error")

	if kind == apperror.KindInternal {
		response.InternalError(w)
		return
	}
	response.Error(w, status, kind.String(), msg)
}

// HandleValidation writes field errors and logs them at debug level.
func HandleValidation(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	logger.FromContext(r.Context()).Debug().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
	response.ValidationError(w, fieldErrors)
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// classifyDatabase turns constraint violations that escaped the domain
// layer into client errors.
func classifyDatabase(err error) (apperror.Kind, string) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return apperror.KindInternal, ""
	}
	switch pqErr.Code {
	case "23505":
		return apperror.KindConflict, "Record already exists"
	case "23503":
		return apperror.KindValidation, "Referenced record does not exist"
	case "23502", "23514", "22P02":
		return apperror.KindValidation, "Invalid value"
	default:
		return apperror.KindInternal, ""
	}
}
