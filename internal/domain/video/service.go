package video

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	"github.com/cresol/hub-api/internal/pkg/storage"
	"github.com/cresol/hub-api/internal/pkg/youtube"
)

// collectionsTable is invalidated when a video is appended to a collection.
const collectionsTable = "collections"

// Service handles dashboard video business logic
type Service struct {
	repo      Repository
	cleaner   *storage.Cleaner
	cache     *cache.Cache
	publisher realtime.Publisher
	thumbs    youtube.Resolver
}

// NewService creates dashboard video service. A nil thumbs derives YouTube
// thumbnails without probing.
func NewService(repo Repository, cleaner *storage.Cleaner, c *cache.Cache, publisher realtime.Publisher, thumbs youtube.Resolver) *Service {
	if thumbs == nil {
		thumbs = youtube.Static{}
	}
	return &Service{repo: repo, cleaner: cleaner, cache: c, publisher: publisher, thumbs: thumbs}
}

// List returns videos for display. Non-managers only get active ones.
func (s *Service) List(ctx context.Context, caller middleware.Identity, activeOnly bool) ([]*Video, error) {
	if !authz.IsManager(caller.Role, authz.Videos) {
		activeOnly = true
	}
	return cache.Fetch(ctx, s.cache, table, "active="+strconv.FormatBool(activeOnly), func(ctx context.Context) ([]*Video, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *Service) Get(ctx context.Context, caller middleware.Identity, id uuid.UUID) (*Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || (!v.IsActive && !authz.IsManager(caller.Role, authz.Videos)) {
		return nil, ErrVideoNotFound
	}
	return v, nil
}

// Create inserts the video, optionally appending it to a collection in the
// same transaction.
func (s *Service) Create(ctx context.Context, caller middleware.Identity, req *VideoRequest) (*Video, error) {
	now := time.Now()
	v := &Video{
		ID:        uuid.New(),
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if caller.UserID != uuid.Nil {
		id := caller.UserID
		v.CreatedBy = &id
	}
	s.apply(ctx, v, req)

	if req.OrderIndex != nil {
		v.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return nil, err
		}
		v.OrderIndex = next
	}

	if err := s.repo.Create(ctx, v, req.CollectionID); err != nil {
		return nil, err
	}
	if req.CollectionID != nil {
		s.cache.Invalidate(ctx, collectionsTable)
	}
	s.changed(ctx, realtime.Insert, v, nil)
	return v, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *VideoRequest) (*Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVideoNotFound
	}
	old := *v

	s.apply(ctx, v, req)
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		v.OrderIndex = *req.OrderIndex
	}
	v.UpdatedAt = time.Now()

	ok, err := s.repo.Update(ctx, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVideoNotFound
	}
	s.changed(ctx, realtime.Update, v, &old)
	return v, nil
}

func (s *Service) apply(ctx context.Context, v *Video, req *VideoRequest) {
	v.Title = req.Title
	v.Description = req.Description
	v.VideoURL = req.VideoURL
	v.ThumbnailURL = req.ThumbnailURL
	v.FilePath = req.FilePath
	v.UploadType = req.UploadType
	if v.UploadType == "" {
		v.UploadType = uploadYouTube
	}
	if v.UploadType == uploadDirect && v.FilePath == nil && s.cleaner != nil {
		if key, ok := storage.KeyFromURL(s.cleaner.Store(), storage.BucketVideos, v.VideoURL); ok {
			v.FilePath = &key
		}
	}

	if v.UploadType == uploadYouTube && v.ThumbnailURL == nil {
		if thumb := s.thumbs.Resolve(ctx, v.VideoURL); thumb != "" {
			v.ThumbnailURL = &thumb
		} else {
			logger.FromContext(ctx).Warn().Str("video_url", v.VideoURL).Msg("No YouTube id in video URL, saving without thumbnail")
		}
	}
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVideoNotFound
	}
	s.changed(ctx, realtime.Update, map[string]interface{}{"id": id, "is_active": active}, nil)
	return nil
}

// Delete removes the row and its collection memberships, then the stored
// video file and thumbnail.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVideoNotFound
	}
	s.removeFiles(ctx, v)
	s.cache.Invalidate(ctx, collectionsTable)
	s.changed(ctx, realtime.Delete, nil, v)
	return nil
}

func (s *Service) removeFiles(ctx context.Context, v *Video) {
	if s.cleaner == nil {
		return
	}
	store := s.cleaner.Store()
	var paths, urls []string
	if v.FilePath != nil {
		paths = append(paths, *v.FilePath)
	}
	if v.UploadType == uploadDirect {
		urls = append(urls, v.VideoURL)
	}
	objs := storage.ObjectsFor(store, storage.BucketVideos, paths, urls)
	if v.ThumbnailURL != nil {
		objs = append(objs, storage.ObjectsFor(store, storage.BucketImages, nil, []string{*v.ThumbnailURL})...)
	}
	s.cleaner.Remove(ctx, objs...)
}

func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, record, old interface{}) {
	s.cache.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}
