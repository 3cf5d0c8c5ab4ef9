package video

import "github.com/google/uuid"

// VideoRequest is the body of create and update. CollectionID is only read
// on create.
type VideoRequest struct {
	Title        string     `json:"title" validate:"required,min=2,max=300"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	VideoURL     string     `json:"video_url" validate:"required,url"`
	ThumbnailURL *string    `json:"thumbnail_url" validate:"omitempty,url"`
	FilePath     *string    `json:"file_path" validate:"omitempty,max=500"`
	UploadType   string     `json:"upload_type" validate:"upload_type"`
	IsActive     *bool      `json:"is_active"`
	OrderIndex   *int       `json:"order_index" validate:"omitempty,gte=0"`
	CollectionID *uuid.UUID `json:"collection_id"`
}

// ActiveRequest is the body of PATCH /{id}/active.
type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
