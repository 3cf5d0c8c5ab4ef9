package content

import (
	"time"

	"github.com/google/uuid"
)

// NewsRequest is the body of news create and update.
type NewsRequest struct {
	Title       string  `json:"title" validate:"required,min=2,max=300"`
	Summary     *string `json:"summary" validate:"omitempty,max=1000"`
	Content     string  `json:"content" validate:"max=100000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsFeatured  bool    `json:"is_featured"`
	IsPublished *bool   `json:"is_published"`
}

// EventRequest is the body of event create and update.
type EventRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=300"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Location    *string    `json:"location" validate:"omitempty,max=300"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	IsFeatured  bool       `json:"is_featured"`
	IsPublished *bool      `json:"is_published"`
}

// VideoRequest is the body of video create and update.
type VideoRequest struct {
	Title        string  `json:"title" validate:"required,min=2,max=300"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	VideoURL     string  `json:"video_url" validate:"required,url"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	FilePath     *string `json:"file_path" validate:"omitempty,max=500"`
	UploadType   string  `json:"upload_type" validate:"upload_type"`
	IsFeatured   bool    `json:"is_featured"`
	IsPublished  *bool   `json:"is_published"`
	OrderIndex   *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// FeaturedRequest is the body of PATCH .../featured.
type FeaturedRequest struct {
	IsFeatured *bool `json:"is_featured" validate:"required"`
}

// PublishedRequest is the body of PATCH .../published.
type PublishedRequest struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}

// ReorderRequest lists ids in their new order.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}
