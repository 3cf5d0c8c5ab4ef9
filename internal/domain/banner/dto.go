package banner

import "github.com/google/uuid"

// BannerRequest is the body of create and update.
type BannerRequest struct {
	Title      string  `json:"title" validate:"required,min=2,max=200"`
	ImageURL   string  `json:"image_url" validate:"required,url"`
	Link       *string `json:"link" validate:"omitempty,url"`
	IsActive   *bool   `json:"is_active"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// ActiveRequest is the body of PATCH /{id}/active.
type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ReorderRequest lists banner ids in display order.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=200"`
}
