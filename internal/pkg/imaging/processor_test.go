package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessDownsizesAndThumbnails(t *testing.T) {
	p := NewProcessor(Config{MaxWidth: 100, MaxHeight: 100, ThumbWidth: 40, ThumbHeight: 30, Quality: 80})

	out, err := p.Process(bytes.NewReader(encodePNG(t, 400, 200)))
	require.NoError(t, err)

	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)

	thumb, err := jpeg.Decode(bytes.NewReader(out.Thumbnail))
	require.NoError(t, err)
	assert.Equal(t, 40, thumb.Bounds().Dx())
	assert.Equal(t, 30, thumb.Bounds().Dy())
}

func TestProcessKeepsSmallImages(t *testing.T) {
	out, err := NewProcessor(DefaultConfig()).Process(bytes.NewReader(encodePNG(t, 50, 60)))
	require.NoError(t, err)
	assert.Equal(t, 50, out.Width)
	assert.Equal(t, 60, out.Height)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := NewProcessor(DefaultConfig()).Process(strings.NewReader("not an image"))
	assert.Error(t, err)
}
