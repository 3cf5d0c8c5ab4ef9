package response

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetaHasMore(t *testing.T) {
	tests := []struct {
		total, page, limit int
		want               bool
	}{
		{total: 30, page: 2, limit: 12, want: true},
		{total: 24, page: 2, limit: 12, want: false},
		{total: 0, page: 1, limit: 12, want: false},
		{total: 13, page: 1, limit: 12, want: true},
		{total: 0, page: math.MaxInt, limit: 12, want: false},
		{total: 5, page: math.MaxInt / 2, limit: 100, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewMeta(tt.total, tt.page, tt.limit).HasMore, "total=%d page=%d", tt.total, tt.page)
	}
}

func TestValidationErrorIsBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationError(w, map[string]string{"email": "This field is required"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "This field is required", resp.Error.Details["email"])
}

func TestDecodeJSONDropsUndeclaredFields(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}
	err := DecodeJSON(io.NopCloser(strings.NewReader(`{"title":"x","id":"123","created_by":"someone"}`)), &dst)
	require.NoError(t, err)
	assert.Equal(t, "x", dst.Title)
}
