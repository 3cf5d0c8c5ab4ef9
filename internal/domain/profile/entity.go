package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/pkg/pagination"
)

// Profile is the intranet profile of an auth user. The id equals the auth
// user id.
type Profile struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	FullName       string     `db:"full_name" json:"full_name"`
	Role           string     `db:"role" json:"role"`
	PositionID     *uuid.UUID `db:"position_id" json:"position_id,omitempty"`
	WorkLocationID *uuid.UUID `db:"work_location_id" json:"work_location_id,omitempty"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Filter narrows the admin user list.
type Filter struct {
	Search string
	Role   string
	pagination.Params
}
