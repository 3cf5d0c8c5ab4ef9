// Package youtube extracts video ids from YouTube links and derives their
// thumbnail URLs.
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cresol/hub-api/internal/pkg/retry"
)

const thumbnailBase = "https://img.youtube.com/vi/"

// Thumbnail qualities served by img.youtube.com.
const (
	QualityMax  = "maxresdefault"
	QualityHigh = "hqdefault"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ExtractID returns the video id of a YouTube URL. It understands
// watch?v=<id>, youtu.be/<id>, /embed/<id>, /shorts/<id> and /v/<id>.
// Anything else yields "", false.
func ExtractID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		if len(segments) >= 2 {
			switch segments[0] {
			case "embed", "shorts", "v", "live":
				id = segments[1]
			}
		}
	default:
		return "", false
	}

	if !idPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// ThumbnailURL returns the thumbnail URL for id in the given quality.
func ThumbnailURL(id, quality string) string {
	return thumbnailOn(thumbnailBase, id, quality)
}

func thumbnailOn(base, id, quality string) string {
	return base + id + "/" + quality + ".jpg"
}

// ThumbnailFromURL derives the max resolution thumbnail of a YouTube link,
// or "" when no id can be extracted.
func ThumbnailFromURL(videoURL string) string {
	id, ok := ExtractID(videoURL)
	if !ok {
		return ""
	}
	return ThumbnailURL(id, QualityMax)
}

// Resolver picks the thumbnail of a video link. Implemented by Static and
// Prober.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) string
}

// Static derives the max resolution thumbnail without network access.
type Static struct{}

func (Static) Resolve(_ context.Context, videoURL string) string {
	return ThumbnailFromURL(videoURL)
}

// Prober checks that a thumbnail actually exists. Not every video has a
// maxresdefault image; those fall back to hqdefault.
type Prober struct {
	client *http.Client
	policy retry.Policy
	base   string
}

// NewProber creates a prober using policy for transient failures.
func NewProber(client *http.Client, policy retry.Policy) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Prober{client: client, policy: policy, base: thumbnailBase}
}

// Resolve returns the best available thumbnail for videoURL, or "" when it
// is not a YouTube link.
func (p *Prober) Resolve(ctx context.Context, videoURL string) string {
	id, ok := ExtractID(videoURL)
	if !ok {
		return ""
	}

	maxURL := thumbnailOn(p.base, id, QualityMax)
	err := retry.Do(ctx, p.policy, func(ctx context.Context) error {
		return p.head(ctx, maxURL)
	})
	if err == nil {
		return maxURL
	}

	log.Debug().Err(err).Str("video_id", id).Msg("maxres thumbnail unavailable, using hqdefault")
	return thumbnailOn(p.base, id, QualityHigh)
}

func (p *Prober) head(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return retry.Permanent(fmt.Errorf("thumbnail not found"))
	default:
		return fmt.Errorf("thumbnail probe status %d", resp.StatusCode)
	}
}
