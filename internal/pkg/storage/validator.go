package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// AllowedMimeTypes lists accepted content types per bucket. The type is
// sniffed from the bytes, never taken from the client.
var AllowedMimeTypes = map[string][]string{
	BucketImages:  {"image/jpeg", "image/png", "image/gif", "image/webp"},
	BucketBanners: {"image/jpeg", "image/png", "image/webp"},
	BucketVideos:  {"video/mp4", "video/webm", "video/quicktime"},
}

// MaxFileSizes caps uploads per bucket.
var MaxFileSizes = map[string]int64{
	BucketImages:  10 << 20,
	BucketBanners: 5 << 20,
	BucketVideos:  200 << 20,
}

// ValidateFile reads at most maxSize bytes of r and checks the sniffed MIME
// type against the bucket's allow list.
func ValidateFile(r io.Reader, bucket string, maxSize int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, "", ErrFileTooLarge
	}

	mimeType := sniff(data)
	allowed, ok := AllowedMimeTypes[bucket]
	if !ok {
		return nil, "", fmt.Errorf("unknown bucket: %s", bucket)
	}
	for _, t := range allowed {
		if t == mimeType {
			return data, mimeType, nil
		}
	}
	return nil, "", ErrInvalidMimeType
}

// ValidateAndBuffer validates r for bucket with the bucket size limit.
func ValidateAndBuffer(r io.Reader, bucket string) (*bytes.Buffer, string, error) {
	maxSize, ok := MaxFileSizes[bucket]
	if !ok {
		maxSize = 10 << 20
	}
	data, mimeType, err := ValidateFile(r, bucket, maxSize)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewBuffer(data), mimeType, nil
}

func sniff(data []byte) string {
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	// DetectContentType does not know QuickTime; ftypqt at offset 4.
	if mimeType == "application/octet-stream" && len(data) > 12 && string(data[4:10]) == "ftypqt" {
		return "video/quicktime"
	}
	return mimeType
}

// ExtensionFor returns the file extension for a MIME type
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ""
	}
}

// NewKey builds a unique object key under prefix, e.g.
// gallery/2026/10/<uuid>.jpg.
func NewKey(prefix, mimeType string) string {
	now := time.Now().UTC()
	return path.Join(prefix, now.Format("2006"), now.Format("01"), uuid.NewString()+ExtensionFor(mimeType))
}

// ThumbnailKey derives the thumbnail key stored next to key.
func ThumbnailKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "_thumb.jpg"
}
