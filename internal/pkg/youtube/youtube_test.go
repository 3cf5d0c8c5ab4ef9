package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cresol/hub-api/internal/pkg/retry"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123", true},
		{"https://youtu.be/xyz789", "xyz789", true},
		{"https://youtu.be/xyz789?t=42", "xyz789", true},
		{"youtube.com/watch?v=dQw4w9WgXcQ&list=PL1", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=abc_-12", "abc_-12", true},
		{"https://www.youtube.com/embed/emb123", "emb123", true},
		{"https://www.youtube.com/shorts/sh0rt", "sh0rt", true},
		{"https://youtu.be/", "", false},
		{"https://www.youtube.com/watch", "", false},
		{"https://vimeo.com/12345", "", false},
		{"not a url at all", "", false},
		{"https://www.youtube.com/watch?v=<script>", "", false},
		{"", "", false},
		{"://", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractID(tt.url)
		assert.Equal(t, tt.want, got, tt.url)
		assert.Equal(t, tt.wantOK, ok, tt.url)
	}
}

func TestThumbnailFromURL(t *testing.T) {
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", ThumbnailFromURL("https://www.youtube.com/watch?v=abc123"))
	assert.Equal(t, "", ThumbnailFromURL("https://example.com/video.mp4"))
}

func TestProberFallsBackToHQ(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if strings.HasSuffix(r.URL.Path, "/maxresdefault.jpg") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	p := NewProber(server.Client(), retry.Policy{Attempts: 3, BaseDelay: time.Millisecond})
	p.base = server.URL + "/vi/"

	got := p.Resolve(context.Background(), "https://youtu.be/xyz789")
	assert.Equal(t, server.URL+"/vi/xyz789/hqdefault.jpg", got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestProberKeepsMaxRes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	p := NewProber(server.Client(), retry.Policy{Attempts: 3, BaseDelay: time.Millisecond})
	p.base = server.URL + "/vi/"

	assert.Equal(t, server.URL+"/vi/abc123/maxresdefault.jpg", p.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc123"))
	assert.Equal(t, "", p.Resolve(context.Background(), "https://example.com/x.mp4"))
}
