package indicator

import (
	"time"

	"github.com/google/uuid"
)

const table = "economic_indicators"

// Indicator is an economic figure shown on the dashboard (Selic, CDI, IPCA).
type Indicator struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Value      string    `db:"value" json:"value"`
	Unit       *string   `db:"unit" json:"unit,omitempty"`
	Issuer     *string   `db:"issuer" json:"issuer,omitempty"`
	Period     *string   `db:"period" json:"period,omitempty"`
	Icon       *string   `db:"icon" json:"icon,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (i Indicator) Public() bool { return i.IsActive }
