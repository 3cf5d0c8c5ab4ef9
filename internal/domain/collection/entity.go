package collection

import (
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/pkg/pagination"
)

const (
	table      = "collections"
	tableItems = "collection_items"
)

// Item types.
const (
	ItemImage = "image"
	ItemVideo = "video"
)

// Collection types.
const (
	TypeImages = "images"
	TypeVideos = "videos"
	TypeMixed  = "mixed"
)

// Collection groups gallery images and dashboard videos.
type Collection struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Description   *string    `db:"description" json:"description,omitempty"`
	CoverImageURL *string    `db:"cover_image_url" json:"cover_image_url,omitempty"`
	Type          string     `db:"type" json:"type"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	OrderIndex    int        `db:"order_index" json:"order_index"`
	ItemCount     int        `db:"item_count" json:"item_count"`
	CreatedBy     *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

func (c Collection) Public() bool { return c.IsActive }

// accepts reports whether items of itemType may be added.
func (c *Collection) accepts(itemType string) bool {
	switch c.Type {
	case TypeImages:
		return itemType == ItemImage
	case TypeVideos:
		return itemType == ItemVideo
	}
	return true
}

// Item is one entry of a collection. Exactly one of Image and Video is set
// once the item is resolved.
type Item struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CollectionID uuid.UUID `db:"collection_id" json:"collection_id"`
	ItemType     string    `db:"item_type" json:"item_type"`
	ItemID       uuid.UUID `db:"item_id" json:"item_id"`
	OrderIndex   int       `db:"order_index" json:"order_index"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Image *ImageRef `db:"-" json:"image,omitempty"`
	Video *VideoRef `db:"-" json:"video,omitempty"`
}

// ImageRef is the gallery image an item points at.
type ImageRef struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Title        *string   `db:"title" json:"title,omitempty"`
	ImageURL     string    `db:"image_url" json:"image_url"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// VideoRef is the dashboard video an item points at.
type VideoRef struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	VideoURL     string    `db:"video_url" json:"video_url"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	UploadType   string    `db:"upload_type" json:"upload_type"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// Detail is a collection with its resolved items.
type Detail struct {
	*Collection
	Items []*Item `json:"items"`
}

// Statuses accepted by the list filter.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusAll      = "all"
)

// Filter narrows the collection list.
type Filter struct {
	pagination.Params
	Search    string
	Type      string
	Status    string
	SortBy    string
	SortOrder string
}

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"name":        "name",
	"order_index": "order_index",
	"updated_at":  "updated_at",
}

// normalize replaces unknown sort and status values with defaults.
func (f *Filter) normalize() {
	if _, ok := sortColumns[f.SortBy]; !ok {
		f.SortBy = "order_index"
	}
	if f.SortOrder != "desc" {
		f.SortOrder = "asc"
	}
	switch f.Status {
	case StatusActive, StatusInactive, StatusAll:
	default:
		f.Status = StatusActive
	}
}

// Page is one page of collections.
type Page struct {
	Collections []*Collection `json:"collections"`
	Total       int           `json:"total"`
}
