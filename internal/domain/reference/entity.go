package reference

import (
	"time"

	"github.com/google/uuid"
)

const (
	tableWorkLocations = "work_locations"
	tablePositions     = "positions"
)

// WorkLocation is a branch or office a profile can be assigned to.
type WorkLocation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	City      *string   `db:"city" json:"city,omitempty"`
	State     *string   `db:"state" json:"state,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Position is a job title.
type Position struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Department *string   `db:"department" json:"department,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
