package banner

import (
	"time"

	"github.com/google/uuid"
)

const table = "banners"

// Banner is a dashboard carousel slide.
type Banner struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	FilePath   *string   `db:"file_path" json:"file_path,omitempty"`
	Link       *string   `db:"link" json:"link,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (b Banner) Public() bool { return b.IsActive }
