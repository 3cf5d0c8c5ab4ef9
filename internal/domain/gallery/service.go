package gallery

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

// Service handles gallery business logic
type Service struct {
	repo      Repository
	scopes    *authz.Scopes
	uploads   *upload.Service
	cleaner   *storage.Cleaner
	cache     *cache.Cache
	stale     cache.Invalidator
	publisher realtime.Publisher
}

// NewService creates gallery service
func NewService(repo Repository, scopes *authz.Scopes, uploads *upload.Service, cleaner *storage.Cleaner, c *cache.Cache, publisher realtime.Publisher) *Service {
	return &Service{
		repo:      repo,
		scopes:    scopes,
		uploads:   uploads,
		cleaner:   cleaner,
		cache:     c,
		stale:     c,
		publisher: publisher,
	}
}

// List returns the gallery. Only gallery managers may see inactive images.
func (s *Service) List(ctx context.Context, caller middleware.Identity, activeOnly bool) ([]*Image, error) {
	if !authz.IsManager(caller.Role, authz.Gallery) {
		activeOnly = true
	}
	return cache.Fetch(ctx, s.cache, tableGallery, "active="+strconv.FormatBool(activeOnly), func(ctx context.Context) ([]*Image, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *Service) Create(ctx context.Context, caller middleware.Identity, req *ImageRequest) (*Image, error) {
	img := newImage(caller)
	img.Title = req.Title
	img.ImageURL = req.ImageURL
	img.ThumbnailURL = req.ThumbnailURL
	if req.IsActive != nil {
		img.IsActive = *req.IsActive
	}
	if err := s.insert(ctx, img, req.OrderIndex); err != nil {
		return nil, err
	}
	return img, nil
}

// Upload stores the file with a thumbnail and inserts its row. The stored
// objects are removed again when the insert fails.
func (s *Service) Upload(ctx context.Context, caller middleware.Identity, title *string, file io.Reader) (*Image, error) {
	stored, err := s.uploads.Store(ctx, upload.Request{Bucket: storage.BucketImages, Prefix: "gallery", Thumbnail: true}, file)
	if err != nil {
		return nil, err
	}

	img := newImage(caller)
	img.Title = title
	img.ImageURL = stored.URL
	img.FilePath = &stored.Key
	if stored.ThumbnailKey != "" {
		img.ThumbnailURL = &stored.ThumbnailURL
		img.ThumbnailPath = &stored.ThumbnailKey
	}
	if err := s.insert(ctx, img, nil); err != nil {
		s.uploads.Discard(ctx, stored)
		return nil, err
	}
	return img, nil
}

func newImage(caller middleware.Identity) *Image {
	now := time.Now()
	img := &Image{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	if caller.UserID != uuid.Nil {
		id := caller.UserID
		img.CreatedBy = &id
	}
	return img
}

func (s *Service) insert(ctx context.Context, img *Image, orderIndex *int) error {
	if orderIndex != nil {
		img.OrderIndex = *orderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return err
		}
		img.OrderIndex = next
	}
	if err := s.repo.Create(ctx, img); err != nil {
		return err
	}
	s.changed(ctx, realtime.Insert, tableGallery, img, nil)
	return nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *ImageRequest) (*Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	old := *img

	img.Title = req.Title
	img.ImageURL = req.ImageURL
	img.ThumbnailURL = req.ThumbnailURL
	if req.IsActive != nil {
		img.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		img.OrderIndex = *req.OrderIndex
	}
	img.UpdatedAt = time.Now()

	if err := found(s.repo.Update(ctx, img)); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Update, tableGallery, img, &old)
	return img, nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := found(s.repo.SetActive(ctx, id, active)); err != nil {
		return err
	}
	s.changed(ctx, realtime.Update, tableGallery, map[string]interface{}{"id": id, "is_active": active}, nil)
	return nil
}

// Delete removes the row, then its files.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	img, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrImageNotFound
	}
	s.removeFiles(ctx, filesOf(img.FilePath, img.ThumbnailPath, img.ThumbnailURL, img.ImageURL))
	// The repository also dropped the image from every collection.
	s.stale.Invalidate(ctx, tableCollections)
	s.changed(ctx, realtime.Delete, tableGallery, nil, img)
	return nil
}

// ListSubsector returns the images of a subsector. Drafts are included only
// for managers of that subsector who ask for them.
func (s *Service) ListSubsector(ctx context.Context, caller middleware.Identity, subsectorID uuid.UUID, showDrafts bool) ([]*SubsectorImage, error) {
	ok, err := s.repo.SubsectorExists(ctx, subsectorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubsectorNotFound
	}

	drafts := false
	if showDrafts && authz.IsManager(caller.Role, authz.SubsectorContent) {
		if drafts, err = s.scopes.CanManageSubsector(ctx, caller, subsectorID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListBySubsector(ctx, subsectorID, drafts)
}

func (s *Service) CreateSubsectorImage(ctx context.Context, caller middleware.Identity, subsectorID uuid.UUID, req *ImageRequest) (*SubsectorImage, error) {
	img := newSubsectorImage(caller, subsectorID)
	img.Title = req.Title
	img.ImageURL = req.ImageURL
	img.ThumbnailURL = req.ThumbnailURL
	if req.IsPublished != nil {
		img.IsPublished = *req.IsPublished
	}
	if err := s.insertSubsector(ctx, img, req.OrderIndex); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Service) UploadSubsectorImage(ctx context.Context, caller middleware.Identity, subsectorID uuid.UUID, title *string, file io.Reader) (*SubsectorImage, error) {
	stored, err := s.uploads.Store(ctx, upload.Request{Bucket: storage.BucketImages, Prefix: "subsectors/" + subsectorID.String(), Thumbnail: true}, file)
	if err != nil {
		return nil, err
	}

	img := newSubsectorImage(caller, subsectorID)
	img.Title = title
	img.ImageURL = stored.URL
	img.FilePath = &stored.Key
	if stored.ThumbnailKey != "" {
		img.ThumbnailURL = &stored.ThumbnailURL
		img.ThumbnailPath = &stored.ThumbnailKey
	}
	if err := s.insertSubsector(ctx, img, nil); err != nil {
		s.uploads.Discard(ctx, stored)
		return nil, err
	}
	return img, nil
}

func newSubsectorImage(caller middleware.Identity, subsectorID uuid.UUID) *SubsectorImage {
	now := time.Now()
	img := &SubsectorImage{ID: uuid.New(), SubsectorID: subsectorID, IsPublished: true, CreatedAt: now, UpdatedAt: now}
	if caller.UserID != uuid.Nil {
		id := caller.UserID
		img.CreatedBy = &id
	}
	return img
}

func (s *Service) insertSubsector(ctx context.Context, img *SubsectorImage, orderIndex *int) error {
	if orderIndex != nil {
		img.OrderIndex = *orderIndex
	} else {
		next, err := s.repo.NextSubsectorOrderIndex(ctx, img.SubsectorID)
		if err != nil {
			return err
		}
		img.OrderIndex = next
	}
	if err := s.repo.CreateSubsectorImage(ctx, img); err != nil {
		return err
	}
	s.changed(ctx, realtime.Insert, tableSubsectors, img, nil)
	return nil
}

func (s *Service) UpdateSubsectorImage(ctx context.Context, subsectorID, id uuid.UUID, req *ImageRequest) (*SubsectorImage, error) {
	img, err := s.repo.GetSubsectorImage(ctx, subsectorID, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	old := *img

	img.Title = req.Title
	img.ImageURL = req.ImageURL
	img.ThumbnailURL = req.ThumbnailURL
	if req.IsPublished != nil {
		img.IsPublished = *req.IsPublished
	}
	if req.OrderIndex != nil {
		img.OrderIndex = *req.OrderIndex
	}
	img.UpdatedAt = time.Now()

	if err := found(s.repo.UpdateSubsectorImage(ctx, img)); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Update, tableSubsectors, img, &old)
	return img, nil
}

func (s *Service) SetSubsectorImagePublished(ctx context.Context, subsectorID, id uuid.UUID, published bool) error {
	if err := found(s.repo.SetPublished(ctx, subsectorID, id, published)); err != nil {
		return err
	}
	s.changed(ctx, realtime.Update, tableSubsectors, map[string]interface{}{"id": id, "is_published": published}, nil)
	return nil
}

func (s *Service) DeleteSubsectorImage(ctx context.Context, subsectorID, id uuid.UUID) error {
	img, err := s.repo.DeleteSubsectorImage(ctx, subsectorID, id)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrImageNotFound
	}
	s.removeFiles(ctx, filesOf(img.FilePath, img.ThumbnailPath, img.ThumbnailURL, img.ImageURL))
	s.changed(ctx, realtime.Delete, tableSubsectors, nil, img)
	return nil
}

func (s *Service) removeFiles(ctx context.Context, f files) {
	if s.cleaner == nil {
		return
	}
	s.cleaner.Remove(ctx, storage.ObjectsFor(s.cleaner.Store(), storage.BucketImages, f.paths, f.urls)...)
}

func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, table string, record, old interface{}) {
	s.stale.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}

func found(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrImageNotFound
	}
	return nil
}
