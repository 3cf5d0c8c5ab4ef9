package banner

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/domain/upload"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

// Service handles banner business logic
type Service struct {
	repo      Repository
	uploads   *upload.Service
	cleaner   *storage.Cleaner
	cache     *cache.Cache
	publisher realtime.Publisher
}

// NewService creates banner service
func NewService(repo Repository, uploads *upload.Service, cleaner *storage.Cleaner, c *cache.Cache, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, uploads: uploads, cleaner: cleaner, cache: c, publisher: publisher}
}

// List returns banners ordered for display. Non-managers only get active
// ones.
func (s *Service) List(ctx context.Context, caller middleware.Identity, activeOnly bool) ([]*Banner, error) {
	if !authz.IsManager(caller.Role, authz.Banners) {
		activeOnly = true
	}
	return cache.Fetch(ctx, s.cache, table, "active="+strconv.FormatBool(activeOnly), func(ctx context.Context) ([]*Banner, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *Service) Create(ctx context.Context, req *BannerRequest) (*Banner, error) {
	now := time.Now()
	b := &Banner{
		ID:        uuid.New(),
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		FilePath:  s.storedKey(req.ImageURL),
		Link:      req.Link,
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, b, req.OrderIndex); err != nil {
		return nil, err
	}
	return b, nil
}

// Upload stores the image and creates an active banner pointing at it.
func (s *Service) Upload(ctx context.Context, title string, link *string, file io.Reader) (*Banner, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	stored, err := s.uploads.Store(ctx, upload.Request{Bucket: storage.BucketBanners, Prefix: "banners"}, file)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &Banner{
		ID:        uuid.New(),
		Title:     title,
		ImageURL:  stored.URL,
		FilePath:  &stored.Key,
		Link:      link,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, b, nil); err != nil {
		s.uploads.Discard(ctx, stored)
		return nil, err
	}
	return b, nil
}

func (s *Service) insert(ctx context.Context, b *Banner, orderIndex *int) error {
	if orderIndex != nil {
		b.OrderIndex = *orderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return err
		}
		b.OrderIndex = next
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	s.changed(ctx, realtime.Insert, b, nil)
	return nil
}

// Update replaces the banner fields. A replaced stored image is removed
// once the row points at the new one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *BannerRequest) (*Banner, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBannerNotFound
	}
	old := *b

	b.Title = req.Title
	b.Link = req.Link
	if req.ImageURL != b.ImageURL {
		b.ImageURL = req.ImageURL
		b.FilePath = s.storedKey(req.ImageURL)
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		b.OrderIndex = *req.OrderIndex
	}
	b.UpdatedAt = time.Now()

	ok, err := s.repo.Update(ctx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBannerNotFound
	}
	if old.ImageURL != b.ImageURL {
		s.removeFiles(ctx, &old)
	}
	s.changed(ctx, realtime.Update, b, &old)
	return b, nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBannerNotFound
	}
	s.changed(ctx, realtime.Update, map[string]interface{}{"id": id, "is_active": active}, nil)
	return nil
}

// Reorder assigns order_index = position+1 following ids.
func (s *Service) Reorder(ctx context.Context, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return ErrReorderIDs
		}
		seen[id] = true
	}
	if err := s.repo.Reorder(ctx, ids); err != nil {
		return err
	}
	s.changed(ctx, realtime.Update, map[string]interface{}{"ids": ids}, nil)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBannerNotFound
	}
	s.removeFiles(ctx, b)
	s.changed(ctx, realtime.Delete, nil, b)
	return nil
}

func (s *Service) storedKey(imageURL string) *string {
	if s.cleaner == nil {
		return nil
	}
	if key, ok := storage.KeyFromURL(s.cleaner.Store(), storage.BucketBanners, imageURL); ok {
		return &key
	}
	return nil
}

func (s *Service) removeFiles(ctx context.Context, b *Banner) {
	if s.cleaner == nil {
		return
	}
	var paths []string
	if b.FilePath != nil {
		paths = append(paths, *b.FilePath)
	}
	s.cleaner.Remove(ctx, storage.ObjectsFor(s.cleaner.Store(), storage.BucketBanners, paths, []string{b.ImageURL})...)
}

func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, record, old interface{}) {
	s.cache.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}
