package feed

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cresol/hub-api/internal/domain/banner"
	"github.com/cresol/hub-api/internal/domain/content"
	"github.com/cresol/hub-api/internal/domain/gallery"
	"github.com/cresol/hub-api/internal/domain/indicator"
	"github.com/cresol/hub-api/internal/domain/systemlink"
	"github.com/cresol/hub-api/internal/domain/video"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/logger"
)

// The news and event slices are cached under the tables the sector content
// service invalidates.
var (
	newsTable   = content.SectorScope.Table(content.KindNews)
	eventsTable = content.SectorScope.Table(content.KindEvents)
)

// Service loads every feed slice concurrently.
type Service struct {
	repo    Repository
	sources Sources
	cache   *cache.Cache
	now     func() time.Time
}

// NewService creates feed service
func NewService(repo Repository, sources Sources, c *cache.Cache) *Service {
	return &Service{repo: repo, sources: sources, cache: c, now: time.Now}
}

// Get returns the feed for caller. A failing slice is logged and left
// empty; Get itself only fails when ctx is done.
func (s *Service) Get(ctx context.Context, caller middleware.Identity) (*Feed, error) {
	f := emptyFeed()

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	fail := func(name string, err error) {
		logger.FromContext(ctx).Warn().Err(err).Str("slice", name).Msg("Feed slice failed")
		mu.Lock()
		f.Partial = append(f.Partial, name)
		mu.Unlock()
	}

	if s.sources.Banners != nil {
		collect(ctx, &g, SliceBanners, &f.Banners, fail, func(ctx context.Context) ([]*banner.Banner, error) {
			return s.sources.Banners.List(ctx, caller, true)
		})
	}
	if s.repo != nil {
		collect(ctx, &g, SliceFeaturedNews, &f.FeaturedNews, fail, func(ctx context.Context) ([]*content.News, error) {
			return cache.Fetch(ctx, s.cache, newsTable, "featured:"+strconv.Itoa(featuredLimit), func(ctx context.Context) ([]*content.News, error) {
				return s.repo.FeaturedNews(ctx, featuredLimit)
			})
		})
		collect(ctx, &g, SliceLatestNews, &f.LatestNews, fail, func(ctx context.Context) ([]*content.News, error) {
			return cache.Fetch(ctx, s.cache, newsTable, "latest:"+strconv.Itoa(latestLimit), func(ctx context.Context) ([]*content.News, error) {
				return s.repo.LatestNews(ctx, latestLimit)
			})
		})
		today := truncateDay(s.now())
		collect(ctx, &g, SliceUpcomingEvents, &f.UpcomingEvents, fail, func(ctx context.Context) ([]*content.Event, error) {
			return cache.Fetch(ctx, s.cache, eventsTable, "upcoming:"+today.Format("2006-01-02"), func(ctx context.Context) ([]*content.Event, error) {
				return s.repo.UpcomingEvents(ctx, today, eventsLimit)
			})
		})
	}
	if s.sources.Videos != nil {
		collect(ctx, &g, SliceVideos, &f.Videos, fail, func(ctx context.Context) ([]*video.Video, error) {
			return s.sources.Videos.List(ctx, caller, true)
		})
	}
	if s.sources.Gallery != nil {
		collect(ctx, &g, SliceGallery, &f.Gallery, fail, func(ctx context.Context) ([]*gallery.Image, error) {
			return s.sources.Gallery.List(ctx, caller, true)
		})
	}
	if s.sources.Indicators != nil {
		collect(ctx, &g, SliceIndicators, &f.Indicators, fail, func(ctx context.Context) ([]*indicator.Indicator, error) {
			return s.sources.Indicators.List(ctx, caller, true)
		})
	}
	if s.sources.SystemLinks != nil {
		collect(ctx, &g, SliceSystemLinks, &f.SystemLinks, fail, func(ctx context.Context) ([]*systemlink.Link, error) {
			return s.sources.SystemLinks.List(ctx, caller, true)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(f.Partial)
	return f, nil
}

// collect runs load on g and stores its result in dst. Errors and panics
// are reported through fail; only a cancelled ctx fails the group.
func collect[T any](ctx context.Context, g *errgroup.Group, name string, dst *[]T, fail func(string, error), load func(context.Context) ([]T, error)) {
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fail(name, fmt.Errorf("panic: %v", r))
			}
		}()
		items, loadErr := load(ctx)
		if loadErr != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			fail(name, loadErr)
			return nil
		}
		if items != nil {
			*dst = items
		}
		return nil
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
