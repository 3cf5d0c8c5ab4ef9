// Package feed assembles the intranet home page from every content source
// in one request.
package feed

import (
	"context"

	"github.com/cresol/hub-api/internal/domain/banner"
	"github.com/cresol/hub-api/internal/domain/content"
	"github.com/cresol/hub-api/internal/domain/gallery"
	"github.com/cresol/hub-api/internal/domain/indicator"
	"github.com/cresol/hub-api/internal/domain/systemlink"
	"github.com/cresol/hub-api/internal/domain/video"
	"github.com/cresol/hub-api/internal/middleware"
)

// Slice names, as reported in Feed.Partial.
const (
	SliceBanners        = "banners"
	SliceFeaturedNews   = "featured_news"
	SliceLatestNews     = "latest_news"
	SliceUpcomingEvents = "upcoming_events"
	SliceVideos         = "videos"
	SliceGallery        = "gallery"
	SliceIndicators     = "indicators"
	SliceSystemLinks    = "system_links"
)

const (
	featuredLimit = 5
	latestLimit   = 6
	eventsLimit   = 5
)

// Feed is the home page payload. A slice that failed to load is empty and
// named in Partial.
type Feed struct {
	Banners        []*banner.Banner       `json:"banners"`
	FeaturedNews   []*content.News        `json:"featured_news"`
	LatestNews     []*content.News        `json:"latest_news"`
	UpcomingEvents []*content.Event       `json:"upcoming_events"`
	Videos         []*video.Video         `json:"videos"`
	Gallery        []*gallery.Image       `json:"gallery"`
	Indicators     []*indicator.Indicator `json:"indicators"`
	SystemLinks    []*systemlink.Link     `json:"system_links"`
	Partial        []string               `json:"partial"`
}

func emptyFeed() *Feed {
	return &Feed{
		Banners:        []*banner.Banner{},
		FeaturedNews:   []*content.News{},
		LatestNews:     []*content.News{},
		UpcomingEvents: []*content.Event{},
		Videos:         []*video.Video{},
		Gallery:        []*gallery.Image{},
		Indicators:     []*indicator.Indicator{},
		SystemLinks:    []*systemlink.Link{},
		Partial:        []string{},
	}
}

// Lister is the list call shared by the flat content services.
type Lister[T any] interface {
	List(ctx context.Context, caller middleware.Identity, activeOnly bool) ([]T, error)
}

// Sources are the services the feed reads. A nil source is skipped.
type Sources struct {
	Banners     Lister[*banner.Banner]
	Videos      Lister[*video.Video]
	Gallery     Lister[*gallery.Image]
	Indicators  Lister[*indicator.Indicator]
	SystemLinks Lister[*systemlink.Link]
}
