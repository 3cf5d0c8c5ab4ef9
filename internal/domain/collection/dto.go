package collection

import "github.com/google/uuid"

// CollectionRequest is the body of create and update.
type CollectionRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
	Type          string  `json:"type" validate:"collection_type"`
	IsActive      *bool   `json:"is_active"`
	OrderIndex    *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// ItemRequest adds an image or video to a collection.
type ItemRequest struct {
	ItemType   string    `json:"item_type" validate:"required,item_type"`
	ItemID     uuid.UUID `json:"item_id" validate:"required"`
	OrderIndex *int      `json:"order_index" validate:"omitempty,gte=0"`
}

// ReorderRequest lists collection item ids in display order.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}
