package gallery

import (
	"time"

	"github.com/google/uuid"
)

const (
	tableGallery     = "gallery_images"
	tableSubsectors  = "subsector_images"
	tableCollections = "collections"
)

// Image is a gallery_images row.
type Image struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Title         *string    `db:"title" json:"title,omitempty"`
	ImageURL      string     `db:"image_url" json:"image_url"`
	ThumbnailURL  *string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	FilePath      *string    `db:"file_path" json:"file_path,omitempty"`
	ThumbnailPath *string    `db:"thumbnail_path" json:"thumbnail_path,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	OrderIndex    int        `db:"order_index" json:"order_index"`
	CreatedBy     *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

func (i Image) Public() bool { return i.IsActive }

// SubsectorImage is a subsector_images row.
type SubsectorImage struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SubsectorID   uuid.UUID  `db:"subsector_id" json:"subsector_id"`
	Title         *string    `db:"title" json:"title,omitempty"`
	ImageURL      string     `db:"image_url" json:"image_url"`
	ThumbnailURL  *string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	FilePath      *string    `db:"file_path" json:"file_path,omitempty"`
	ThumbnailPath *string    `db:"thumbnail_path" json:"thumbnail_path,omitempty"`
	IsPublished   bool       `db:"is_published" json:"is_published"`
	OrderIndex    int        `db:"order_index" json:"order_index"`
	CreatedBy     *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

func (s SubsectorImage) Public() bool { return s.IsPublished }

// files is the storage footprint of an image row.
type files struct {
	paths []string
	urls  []string
}

func filesOf(filePath, thumbPath, thumbURL *string, imageURL string) files {
	var f files
	for _, p := range []*string{filePath, thumbPath} {
		if p != nil {
			f.paths = append(f.paths, *p)
		}
	}
	f.urls = append(f.urls, imageURL)
	if thumbURL != nil {
		f.urls = append(f.urls, *thumbURL)
	}
	return f
}
