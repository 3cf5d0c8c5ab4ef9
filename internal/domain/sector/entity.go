package sector

import (
	"time"

	"github.com/google/uuid"
)

// Sector is a top-level organizational unit.
type Sector struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Description *string      `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	Subsectors  []*Subsector `db:"-" json:"subsectors,omitempty"`
}

// Subsector belongs to exactly one sector.
type Subsector struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SectorID    uuid.UUID `db:"sector_id" json:"sector_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScopeAdmin is a user assigned to administer a sector or subsector.
type ScopeAdmin struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoredFile is a storage reference held by content that cascades away with
// a sector or subsector.
type StoredFile struct {
	Bucket string  `db:"bucket"`
	Path   *string `db:"path"`
	URL    *string `db:"url"`
}
