package sector

import "github.com/google/uuid"

// SectorRequest is the body of sector create and update.
type SectorRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// SubsectorRequest is the body of subsector create and update. SectorID is
// required on create and may move the subsector on update.
type SubsectorRequest struct {
	SectorID    uuid.UUID `json:"sector_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=2,max=120"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
}

// AssignAdminRequest is the body of POST .../admins.
type AssignAdminRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}
