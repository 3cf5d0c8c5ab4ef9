package gallery

// ImageRequest creates or updates an image that is already hosted.
type ImageRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=300"`
	ImageURL     string  `json:"image_url" validate:"required,url"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	IsActive     *bool   `json:"is_active"`
	IsPublished  *bool   `json:"is_published"`
	OrderIndex   *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// ActiveRequest is the body of PATCH .../active.
type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// PublishedRequest is the body of PATCH .../published.
type PublishedRequest struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}
