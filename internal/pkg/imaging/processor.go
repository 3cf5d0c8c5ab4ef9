package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ProcessedImage holds the stored variants of an uploaded image.
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth    int // Max width for original (default 2000)
	MaxHeight   int // Max height for original (default 2000)
	ThumbWidth  int // Thumbnail width (default 400)
	ThumbHeight int // Thumbnail height (default 300)
	Quality     int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:    2000,
		MaxHeight:   2000,
		ThumbWidth:  400,
		ThumbHeight: 300,
		Quality:     85,
	}
}

// Processor resizes uploads and renders thumbnails.
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process downsizes the image when it exceeds the configured bounds and
// renders a center-cropped JPEG thumbnail. PNG stays PNG; everything else is
// re-encoded as JPEG. WebP sources are rejected by decode and must be
// stored as-is by the caller.
func (p *Processor) Process(r io.Reader) (*ProcessedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := img
	bounds := img.Bounds()
	if bounds.Dx() > p.config.MaxWidth || bounds.Dy() > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	result := &ProcessedImage{
		ContentType: "image/jpeg",
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
	}

	var original bytes.Buffer
	if format == "png" {
		result.ContentType = "image/png"
		err = png.Encode(&original, resized)
	} else {
		err = jpeg.Encode(&original, resized, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode original: %w", err)
	}
	result.Original = original.Bytes()

	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)
	var thumbnail bytes.Buffer
	if err := jpeg.Encode(&thumbnail, thumb, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	result.Thumbnail = thumbnail.Bytes()

	return result, nil
}
