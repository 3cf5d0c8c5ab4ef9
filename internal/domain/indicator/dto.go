package indicator

// IndicatorRequest is the body of create and update.
type IndicatorRequest struct {
	Title      string  `json:"title" validate:"required,min=2,max=120"`
	Value      string  `json:"value" validate:"required,max=60"`
	Unit       *string `json:"unit" validate:"omitempty,max=20"`
	Issuer     *string `json:"issuer" validate:"omitempty,max=120"`
	Period     *string `json:"period" validate:"omitempty,max=60"`
	Icon       *string `json:"icon" validate:"omitempty,max=60"`
	IsActive   *bool   `json:"is_active"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// ActiveRequest is the body of PATCH /{id}/active.
type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
