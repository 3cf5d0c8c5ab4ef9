package feed

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cresol/hub-api/internal/domain/content"
)

// Repository reads published sector content across all sectors.
type Repository interface {
	FeaturedNews(ctx context.Context, limit int) ([]*content.News, error)
	LatestNews(ctx context.Context, limit int) ([]*content.News, error)
	UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]*content.Event, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates feed repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const (
	newsColumns  = `id, sector_id AS parent_id, is_featured, is_published, created_by, created_at, updated_at, title, summary, content, image_url`
	eventColumns = `id, sector_id AS parent_id, is_featured, is_published, created_by, created_at, updated_at, title, description, location, start_date, end_date`
)

func (r *repository) FeaturedNews(ctx context.Context, limit int) ([]*content.News, error) {
	news := []*content.News{}
	err := r.db.SelectContext(ctx, &news, `
		SELECT `+newsColumns+` FROM sector_news
		WHERE is_published AND is_featured
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return withSector(news), err
}

func (r *repository) LatestNews(ctx context.Context, limit int) ([]*content.News, error) {
	news := []*content.News{}
	err := r.db.SelectContext(ctx, &news, `
		SELECT `+newsColumns+` FROM sector_news
		WHERE is_published
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return withSector(news), err
}

// UpcomingEvents includes events still running at from.
func (r *repository) UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]*content.Event, error) {
	events := []*content.Event{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT `+eventColumns+` FROM sector_events
		WHERE is_published AND COALESCE(end_date, start_date) >= $1
		ORDER BY start_date
		LIMIT $2
	`, from, limit)
	for _, e := range events {
		parent := e.ParentID
		e.SectorID = &parent
	}
	return events, err
}

func withSector(news []*content.News) []*content.News {
	for _, n := range news {
		parent := n.ParentID
		n.SectorID = &parent
	}
	return news
}
