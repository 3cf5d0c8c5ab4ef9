package video

import (
	"time"

	"github.com/google/uuid"
)

const table = "dashboard_videos"

const (
	uploadYouTube = "youtube"
	uploadDirect  = "direct"
)

// Video is a dashboard video, either a YouTube link or a stored file.
type Video struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	VideoURL     string     `db:"video_url" json:"video_url"`
	ThumbnailURL *string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	FilePath     *string    `db:"file_path" json:"file_path,omitempty"`
	UploadType   string     `db:"upload_type" json:"upload_type"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	OrderIndex   int        `db:"order_index" json:"order_index"`
	CreatedBy    *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

func (v Video) Public() bool { return v.IsActive }
