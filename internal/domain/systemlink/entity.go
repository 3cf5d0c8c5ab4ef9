package systemlink

import (
	"time"

	"github.com/google/uuid"
)

const table = "system_links"

// Link is a shortcut to an internal system shown on the dashboard.
type Link struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	URL         string    `db:"url" json:"url"`
	Description *string   `db:"description" json:"description,omitempty"`
	Icon        *string   `db:"icon" json:"icon,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	OrderIndex  int       `db:"order_index" json:"order_index"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (l Link) Public() bool { return l.IsActive }

// LinkRequest is the body of create and update.
type LinkRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	URL         string  `json:"url" validate:"required,url"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=60"`
	IsActive    *bool   `json:"is_active"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// ActiveRequest is the body of PATCH /{id}/active.
type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
