package storage

import (
	"context"
	"io"
	"strings"
)

// Buckets used by the hub.
const (
	BucketVideos  = "videos"
	BucketImages  = "images"
	BucketBanners = "banners"
)

// Object addresses one stored file.
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ObjectStore is the minimal interface for file storage backends.
type ObjectStore interface {
	// Upload stores r under bucket/key.
	Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error

	// Remove deletes keys from bucket. Missing keys are not an error.
	Remove(ctx context.Context, bucket string, keys ...string) error

	// PublicURL returns the public URL of bucket/key.
	PublicURL(bucket, key string) string
}

// Open returns the S3 store when driver is "s3" and the local disk store
// under localPath otherwise. Local files are served under s3cfg.PublicURL.
func Open(ctx context.Context, driver string, s3cfg S3Config, localPath string) (ObjectStore, error) {
	if driver == "s3" {
		return NewS3Store(ctx, s3cfg)
	}
	return NewLocalStore(localPath, s3cfg.PublicURL)
}

// KeyFromURL returns the key of a URL produced by store.PublicURL for
// bucket. ok is false for URLs hosted anywhere else (YouTube thumbnails,
// external images).
func KeyFromURL(store ObjectStore, bucket, rawURL string) (key string, ok bool) {
	if rawURL == "" {
		return "", false
	}
	prefix := store.PublicURL(bucket, "")
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key = strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}

// ObjectsFor collects the stored objects of a row: explicit paths plus any
// URLs that point into the bucket. Duplicates and empty values are skipped.
func ObjectsFor(store ObjectStore, bucket string, paths []string, urls []string) []Object {
	seen := make(map[string]bool)
	var objs []Object
	add := func(key string) {
		key = strings.TrimPrefix(key, "/")
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		objs = append(objs, Object{Bucket: bucket, Key: key})
	}

	for _, p := range paths {
		add(p)
	}
	for _, u := range urls {
		if key, ok := KeyFromURL(store, bucket, u); ok {
			add(key)
		}
	}
	return objs
}
