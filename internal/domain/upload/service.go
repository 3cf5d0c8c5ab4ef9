// Package upload stores multipart uploads in the object store. Images are
// resized and get a thumbnail next to the original.
package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cresol/hub-api/internal/pkg/imaging"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

// Request describes where an upload goes.
type Request struct {
	Bucket string
	Prefix string
	// Thumbnail renders a thumbnail for image uploads.
	Thumbnail bool
}

// Stored is the result of a successful upload.
type Stored struct {
	Bucket       string `json:"bucket"`
	Key          string `json:"file_path"`
	URL          string `json:"url"`
	ThumbnailKey string `json:"thumbnail_path,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Objects lists what was written, for compensation.
func (s *Stored) Objects() []storage.Object {
	objs := []storage.Object{{Bucket: s.Bucket, Key: s.Key}}
	if s.ThumbnailKey != "" {
		objs = append(objs, storage.Object{Bucket: s.Bucket, Key: s.ThumbnailKey})
	}
	return objs
}

// Service handles upload business logic
type Service struct {
	store   storage.ObjectStore
	cleaner *storage.Cleaner
	images  *imaging.Processor
}

// NewService creates upload service
func NewService(cleaner *storage.Cleaner, images *imaging.Processor) *Service {
	return &Service{store: cleaner.Store(), cleaner: cleaner, images: images}
}

// Store validates r against the bucket rules and writes it.
func (s *Service) Store(ctx context.Context, req Request, r io.Reader) (*Stored, error) {
	buffer, mimeType, err := storage.ValidateAndBuffer(r, req.Bucket)
	if err != nil {
		return nil, classify(err)
	}

	stored := &Stored{Bucket: req.Bucket, ContentType: mimeType}
	data := buffer.Bytes()
	var thumb []byte

	// WebP has no decoder here and is stored untouched.
	if strings.HasPrefix(mimeType, "image/") && mimeType != "image/webp" && s.images != nil {
		img, err := s.images.Process(bytes.NewReader(data))
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("mime", mimeType).Msg("Failed to process image")
			return nil, ErrUnreadableImage
		}
		data = img.Original
		stored.ContentType = img.ContentType
		stored.Width, stored.Height = img.Width, img.Height
		if req.Thumbnail {
			thumb = img.Thumbnail
		}
	}

	stored.Key = storage.NewKey(req.Prefix, stored.ContentType)
	stored.Size = int64(len(data))
	if err := s.store.Upload(ctx, req.Bucket, stored.Key, bytes.NewReader(data), stored.ContentType); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("bucket", req.Bucket).Str("key", stored.Key).Msg("Upload failed")
		return nil, ErrStorageUnavailable
	}
	stored.URL = s.store.PublicURL(req.Bucket, stored.Key)

	if thumb != nil {
		thumbKey := storage.ThumbnailKey(stored.Key)
		if err := s.store.Upload(ctx, req.Bucket, thumbKey, bytes.NewReader(thumb), "image/jpeg"); err != nil {
			logger.FromContext(ctx).Error().Err(err).Str("key", thumbKey).Msg("Thumbnail upload failed")
			s.Discard(ctx, stored)
			return nil, ErrStorageUnavailable
		}
		stored.ThumbnailKey = thumbKey
		stored.ThumbnailURL = s.store.PublicURL(req.Bucket, thumbKey)
	}
	return stored, nil
}

// Discard removes an upload whose database row could not be written.
func (s *Service) Discard(ctx context.Context, stored *Stored) {
	if stored == nil {
		return
	}
	s.cleaner.Remove(ctx, stored.Objects()...)
}

func classify(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return ErrFileTooLarge
	case errors.Is(err, storage.ErrInvalidMimeType):
		return ErrInvalidMime
	case errors.Is(err, storage.ErrEmptyFile):
		return ErrEmptyFile
	default:
		return err
	}
}
