package errorhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/pkg/apperror"
	"github.com/cresol/hub-api/internal/pkg/response"
)

func TestHandleMapsKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", apperror.NotFound("News not found"), http.StatusNotFound, "NOT_FOUND", "News not found"},
		{"wrapped validation", fmt.Errorf("create: %w", apperror.Validation("title is required")), http.StatusBadRequest, "VALIDATION_ERROR", "title is required"},
		{"conflict", apperror.Conflict("Item already in collection"), http.StatusConflict, "CONFLICT", "Item already in collection"},
		{"forbidden", apperror.Forbidden("Profile not found"), http.StatusForbidden, "FORBIDDEN", "Profile not found"},
		{"unique violation", &pq.Error{Code: "23505"}, http.StatusConflict, "CONFLICT", "Record already exists"},
		{"fk violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23503"}), http.StatusBadRequest, "VALIDATION_ERROR", "Referenced record does not exist"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			Handle(w, r, tt.err)

			require.Equal(t, tt.wantStatus, w.Code)
			var resp response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}
