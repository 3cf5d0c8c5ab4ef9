package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/pkg/retry"
)

type fakeStore struct {
	mu       sync.Mutex
	fail     map[string]error
	removed  map[string][]string
	uploaded map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{fail: map[string]error{}, removed: map[string][]string{}, uploaded: map[string][]byte{}}
}

func (s *fakeStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	b, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[bucket+"/"+key] = b
	return nil
}

func (s *fakeStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[bucket]; err != nil {
		return err
	}
	s.removed[bucket] = append(s.removed[bucket], keys...)
	return nil
}

func (s *fakeStore) PublicURL(bucket, key string) string {
	return "https://proj.supabase.co/storage/v1/object/public/" + bucket + "/" + key
}

func TestKeyFromURL(t *testing.T) {
	store := newFakeStore()

	key, ok := KeyFromURL(store, BucketVideos, "https://proj.supabase.co/storage/v1/object/public/videos/thumbs/a.jpg?t=1")
	assert.True(t, ok)
	assert.Equal(t, "thumbs/a.jpg", key)

	_, ok = KeyFromURL(store, BucketVideos, "https://img.youtube.com/vi/abc/maxresdefault.jpg")
	assert.False(t, ok)

	_, ok = KeyFromURL(store, BucketVideos, "https://proj.supabase.co/storage/v1/object/public/images/a.jpg")
	assert.False(t, ok, "other bucket")
}

func TestObjectsForDeduplicates(t *testing.T) {
	store := newFakeStore()
	objs := ObjectsFor(store, BucketVideos,
		[]string{"uploads/v.mp4", "", "/uploads/v.mp4"},
		[]string{store.PublicURL(BucketVideos, "uploads/v.mp4"), store.PublicURL(BucketVideos, "thumbs/v.jpg"), "https://img.youtube.com/vi/x/hqdefault.jpg"},
	)
	assert.Equal(t, []Object{
		{Bucket: BucketVideos, Key: "uploads/v.mp4"},
		{Bucket: BucketVideos, Key: "thumbs/v.jpg"},
	}, objs)
}

func TestCleanerQueuesFailedRemovals(t *testing.T) {
	store := newFakeStore()
	store.fail[BucketVideos] = errors.New("storage down")
	queue := NewMemoryQueue()
	cleaner := NewCleaner(store, queue)

	cleaner.Remove(context.Background(),
		Object{Bucket: BucketVideos, Key: "a.mp4"},
		Object{Bucket: BucketImages, Key: "b.jpg"},
	)

	assert.Equal(t, []string{"b.jpg"}, store.removed[BucketImages])
	n, _ := queue.Len(context.Background())
	assert.Equal(t, int64(1), n)
}

func TestCleanerDropsMissingBucket(t *testing.T) {
	store := newFakeStore()
	store.fail[BucketBanners] = ErrBucketNotFound
	queue := NewMemoryQueue()

	NewCleaner(store, queue).Remove(context.Background(), Object{Bucket: BucketBanners, Key: "x.png"})

	n, _ := queue.Len(context.Background())
	assert.Zero(t, n)
}

func TestSweeperRunOnce(t *testing.T) {
	store := newFakeStore()
	store.fail[BucketVideos] = errors.New("still down")
	queue := NewMemoryQueue()
	ctx := context.Background()
	require.NoError(t, queue.Push(ctx,
		Object{Bucket: BucketImages, Key: "1.jpg"},
		Object{Bucket: BucketImages, Key: "2.jpg"},
		Object{Bucket: BucketVideos, Key: "3.mp4"},
	))

	sweeper := NewSweeper(store, queue, retry.Policy{Attempts: 2, BaseDelay: time.Millisecond})
	removed, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, _ := queue.Pop(ctx, 10)
	assert.Equal(t, []Object{{Bucket: BucketVideos, Key: "3.mp4"}}, left)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/files/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, BucketImages, "gallery/a.jpg", strings.NewReader("data"), "image/jpeg"))
	_, err = os.Stat(filepath.Join(dir, BucketImages, "gallery", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/images/gallery/a.jpg", store.PublicURL(BucketImages, "gallery/a.jpg"))

	require.NoError(t, store.Remove(ctx, BucketImages, "gallery/a.jpg", "gallery/missing.jpg"))
	_, err = os.Stat(filepath.Join(dir, BucketImages, "gallery", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, store.Upload(ctx, BucketImages, "../../escape.txt", strings.NewReader("x"), "text/plain"))
}

func TestValidateFile(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	buf, mime, err := ValidateAndBuffer(bytes.NewReader(png), BucketImages)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, len(png), buf.Len())

	_, _, err = ValidateFile(bytes.NewReader([]byte("plain text")), BucketImages, 1024)
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, _, err = ValidateFile(bytes.NewReader(png), BucketImages, 4)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, _, err = ValidateFile(bytes.NewReader(nil), BucketImages, 4)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestKeys(t *testing.T) {
	key := NewKey("gallery", "image/png")
	assert.True(t, strings.HasPrefix(key, "gallery/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "gallery/2026/10/x_thumb.jpg", ThumbnailKey("gallery/2026/10/x.png"))
}
