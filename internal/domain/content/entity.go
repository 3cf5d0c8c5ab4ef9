package content

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the columns shared by every scoped content row.
type Base struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ParentID    uuid.UUID  `db:"parent_id" json:"-"`
	SectorID    *uuid.UUID `db:"-" json:"sector_id,omitempty"`
	SubsectorID *uuid.UUID `db:"-" json:"subsector_id,omitempty"`
	IsFeatured  bool       `db:"is_featured" json:"is_featured"`
	IsPublished bool       `db:"is_published" json:"is_published"`
	CreatedBy   *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Public reports whether readers outside the managers may see the row.
func (b Base) Public() bool { return b.IsPublished }

func (b *Base) base() *Base { return b }

// bind exposes the parent id under the scope's JSON name.
func (b *Base) bind(scope Scope) {
	parent := b.ParentID
	if scope.ParentColumn == SectorScope.ParentColumn {
		b.SectorID = &parent
	} else {
		b.SubsectorID = &parent
	}
}

// News is a sector_news / subsector_news row.
type News struct {
	Base
	Title    string  `db:"title" json:"title"`
	Summary  *string `db:"summary" json:"summary,omitempty"`
	Content  string  `db:"content" json:"content"`
	ImageURL *string `db:"image_url" json:"image_url,omitempty"`
}

// Event is a sector_events / subsector_events row.
type Event struct {
	Base
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Location    *string    `db:"location" json:"location,omitempty"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// Video is a sector_videos / subsector_videos row.
type Video struct {
	Base
	Title        string  `db:"title" json:"title"`
	Description  *string `db:"description" json:"description,omitempty"`
	VideoURL     string  `db:"video_url" json:"video_url"`
	ThumbnailURL *string `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	FilePath     *string `db:"file_path" json:"file_path,omitempty"`
	UploadType   string  `db:"upload_type" json:"upload_type"`
	OrderIndex   int     `db:"order_index" json:"order_index"`
}
