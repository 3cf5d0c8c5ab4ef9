package content

import (
	"context"
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

const (
	uploadYouTube = "youtube"
	uploadDirect  = "direct"
)

type item interface {
	base() *Base
}

// Service handles scoped content business logic
type Service struct {
	scope     Scope
	repo      Repository
	canManage func(context.Context, middleware.Identity, uuid.UUID) (bool, error)
	cleaner   *storage.Cleaner
	publisher realtime.Publisher
	thumbs    youtube.Resolver
	cache     *cache.Cache
}

// NewService creates the content service of scope. thumbs may be nil, in
// which case YouTube thumbnails are derived without probing.
func NewService(scope Scope, repo Repository, scopes *authz.Scopes, cleaner *storage.Cleaner, publisher realtime.Publisher, thumbs youtube.Resolver) *Service {
	canManage := scopes.CanManageSubsector
	if scope.Name == SectorScope.Name {
		canManage = scopes.CanManageSector
	}
	if thumbs == nil {
		thumbs = youtube.Static{}
	}
	return &Service{
		scope:     scope,
		repo:      repo,
		canManage: canManage,
		cleaner:   cleaner,
		publisher: publisher,
		thumbs:    thumbs,
	}
}

// WithCache makes every write invalidate the cached reads of the written
// table, which the feed serves from.
func (s *Service) WithCache(c *cache.Cache) *Service {
	s.cache = c
	return s
}

// Scope returns the scope the service serves.
func (s *Service) Scope() Scope {
	return s.scope
}

// drafts reports whether the caller gets unpublished rows. Only managers of
// the parent do, and only when they ask for them.
func (s *Service) drafts(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, requested bool) (bool, error) {
	if !requested || !authz.IsManager(caller.Role, s.scope.Resource) {
		return false, nil
	}
	return s.canManage(ctx, caller, parentID)
}

func (s *Service) checkParent(ctx context.Context, parentID uuid.UUID) error {
	ok, err := s.repo.ParentExists(ctx, parentID)
	if err != nil {
		return err
	}
	if !ok {
		return s.scope.notFound
	}
	return nil
}

func (s *Service) listPrelude(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, showDrafts bool) (bool, error) {
	if err := s.checkParent(ctx, parentID); err != nil {
		return false, err
	}
	return s.drafts(ctx, caller, parentID, showDrafts)
}

// visible hides drafts from callers who cannot manage the parent.
func (s *Service) visible(ctx context.Context, caller middleware.Identity, it item) error {
	b := it.base()
	if b.IsPublished {
		return nil
	}
	ok, err := s.drafts(ctx, caller, b.ParentID, true)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) stamp(b *Base, caller middleware.Identity, parentID uuid.UUID, featured bool, published *bool) {
	now := time.Now()
	b.ID = uuid.New()
	b.ParentID = parentID
	b.IsFeatured = featured
	b.IsPublished = published == nil || *published
	if caller.UserID != uuid.Nil {
		id := caller.UserID
		b.CreatedBy = &id
	}
	b.CreatedAt = now
	b.UpdatedAt = now
}

func (s *Service) touch(b *Base, featured bool, published *bool) {
	b.IsFeatured = featured
	if published != nil {
		b.IsPublished = *published
	}
	b.UpdatedAt = time.Now()
}

func (s *Service) ListNews(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, showDrafts bool) ([]*News, error) {
	drafts, err := s.listPrelude(ctx, caller, parentID, showDrafts)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListNews(ctx, parentID, drafts)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.bind(s.scope)
	}
	return items, nil
}

func (s *Service) GetNews(ctx context.Context, caller middleware.Identity, parentID, id uuid.UUID) (*News, error) {
	n, err := s.repo.GetNews(ctx, parentID, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	if err := s.visible(ctx, caller, n); err != nil {
		return nil, err
	}
	n.bind(s.scope)
	return n, nil
}

func (s *Service) CreateNews(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, req *NewsRequest) (*News, error) {
	n := &News{}
	s.stamp(&n.Base, caller, parentID, req.IsFeatured, req.IsPublished)
	applyNews(n, req)

	if err := s.repo.CreateNews(ctx, n); err != nil {
		return nil, err
	}
	n.bind(s.scope)
	s.publish(ctx, realtime.Insert, KindNews, n, nil)
	return n, nil
}

func (s *Service) UpdateNews(ctx context.Context, parentID, id uuid.UUID, req *NewsRequest) (*News, error) {
	n, err := s.repo.GetNews(ctx, parentID, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	old := *n

	s.touch(&n.Base, req.IsFeatured, req.IsPublished)
	applyNews(n, req)
	if err := s.saved(s.repo.UpdateNews(ctx, n)); err != nil {
		return nil, err
	}
	n.bind(s.scope)
	s.publish(ctx, realtime.Update, KindNews, n, &old)
	return n, nil
}

func applyNews(n *News, req *NewsRequest) {
	n.Title = req.Title
	n.Summary = req.Summary
	n.Content = req.Content
	n.ImageURL = req.ImageURL
}

func (s *Service) DeleteNews(ctx context.Context, parentID, id uuid.UUID) error {
	n, err := s.repo.DeleteNews(ctx, parentID, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotFound
	}
	if s.cleaner != nil && n.ImageURL != nil {
		s.cleaner.Remove(ctx, storage.ObjectsFor(s.cleaner.Store(), storage.BucketImages, nil, []string{*n.ImageURL})...)
	}
	n.bind(s.scope)
	s.publish(ctx, realtime.Delete, KindNews, nil, n)
	return nil
}

func (s *Service) ListEvents(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, showDrafts bool) ([]*Event, error) {
	drafts, err := s.listPrelude(ctx, caller, parentID, showDrafts)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListEvents(ctx, parentID, drafts)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.bind(s.scope)
	}
	return items, nil
}

func (s *Service) GetEvent(ctx context.Context, caller middleware.Identity, parentID, id uuid.UUID) (*Event, error) {
	e, err := s.repo.GetEvent(ctx, parentID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	if err := s.visible(ctx, caller, e); err != nil {
		return nil, err
	}
	e.bind(s.scope)
	return e, nil
}

func (s *Service) CreateEvent(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, req *EventRequest) (*Event, error) {
	if err := checkDates(req); err != nil {
		return nil, err
	}
	e := &Event{}
	s.stamp(&e.Base, caller, parentID, req.IsFeatured, req.IsPublished)
	applyEvent(e, req)

	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	e.bind(s.scope)
	s.publish(ctx, realtime.Insert, KindEvents, e, nil)
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, parentID, id uuid.UUID, req *EventRequest) (*Event, error) {
	if err := checkDates(req); err != nil {
		return nil, err
	}
	e, err := s.repo.GetEvent(ctx, parentID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	old := *e

	s.touch(&e.Base, req.IsFeatured, req.IsPublished)
	applyEvent(e, req)
	if err := s.saved(s.repo.UpdateEvent(ctx, e)); err != nil {
		return nil, err
	}
	e.bind(s.scope)
	s.publish(ctx, realtime.Update, KindEvents, e, &old)
	return e, nil
}

func checkDates(req *EventRequest) error {
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return ErrInvalidDates
	}
	return nil
}

func applyEvent(e *Event, req *EventRequest) {
	e.Title = req.Title
	e.Description = req.Description
	e.Location = req.Location
	e.StartDate = req.StartDate
	e.EndDate = req.EndDate
}

func (s *Service) DeleteEvent(ctx context.Context, parentID, id uuid.UUID) error {
	e, err := s.repo.DeleteEvent(ctx, parentID, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	e.bind(s.scope)
	s.publish(ctx, realtime.Delete, KindEvents, nil, e)
	return nil
}

func (s *Service) ListVideos(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, showDrafts bool) ([]*Video, error) {
	drafts, err := s.listPrelude(ctx, caller, parentID, showDrafts)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListVideos(ctx, parentID, drafts)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.bind(s.scope)
	}
	return items, nil
}

func (s *Service) GetVideo(ctx context.Context, caller middleware.Identity, parentID, id uuid.UUID) (*Video, error) {
	v, err := s.repo.GetVideo(ctx, parentID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	if err := s.visible(ctx, caller, v); err != nil {
		return nil, err
	}
	v.bind(s.scope)
	return v, nil
}

func (s *Service) CreateVideo(ctx context.Context, caller middleware.Identity, parentID uuid.UUID, req *VideoRequest) (*Video, error) {
	v := &Video{}
	s.stamp(&v.Base, caller, parentID, req.IsFeatured, req.IsPublished)
	s.applyVideo(ctx, v, req)

	if req.OrderIndex != nil {
		v.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx, parentID)
		if err != nil {
			return nil, err
		}
		v.OrderIndex = next
	}

	if err := s.repo.CreateVideo(ctx, v); err != nil {
		return nil, err
	}
	v.bind(s.scope)
	s.publish(ctx, realtime.Insert, KindVideos, v, nil)
	return v, nil
}

func (s *Service) UpdateVideo(ctx context.Context, parentID, id uuid.UUID, req *VideoRequest) (*Video, error) {
	v, err := s.repo.GetVideo(ctx, parentID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	old := *v

	s.touch(&v.Base, req.IsFeatured, req.IsPublished)
	s.applyVideo(ctx, v, req)
	if req.OrderIndex != nil {
		v.OrderIndex = *req.OrderIndex
	}
	if err := s.saved(s.repo.UpdateVideo(ctx, v)); err != nil {
		return nil, err
	}
	v.bind(s.scope)
	s.publish(ctx, realtime.Update, KindVideos, v, &old)
	return v, nil
}

func (s *Service) applyVideo(ctx context.Context, v *Video, req *VideoRequest) {
	v.Title = req.Title
	v.Description = req.Description
	v.VideoURL = req.VideoURL
	v.FilePath = req.FilePath
	v.ThumbnailURL = req.ThumbnailURL
	v.UploadType = req.UploadType
	if v.UploadType == "" {
		v.UploadType = uploadYouTube
	}

	if v.UploadType == uploadYouTube && v.ThumbnailURL == nil {
		if thumb := s.thumbs.Resolve(ctx, v.VideoURL); thumb != "" {
			v.ThumbnailURL = &thumb
		} else {
			logger.FromContext(ctx).Warn().Str("video_url", v.VideoURL).Msg("No YouTube id in video URL, saving without thumbnail")
		}
	}
}

func (s *Service) DeleteVideo(ctx context.Context, parentID, id uuid.UUID) error {
	v, err := s.repo.DeleteVideo(ctx, parentID, id)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrNotFound
	}
	s.removeVideoFiles(ctx, v)
	v.bind(s.scope)
	s.publish(ctx, realtime.Delete, KindVideos, nil, v)
	return nil
}

func (s *Service) removeVideoFiles(ctx context.Context, v *Video) {
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

// SetFeatured features id within its parent. Featuring a row unfeatures
// every sibling of the same kind.
func (s *Service) SetFeatured(ctx context.Context, k Kind, parentID, id uuid.UUID, featured bool) error {
	if err := s.saved(s.repo.SetFeatured(ctx, k, parentID, id, featured)); err != nil {
		return err
	}
	s.publish(ctx, realtime.Update, k, map[string]interface{}{"id": id, "is_featured": featured}, nil)
	return nil
}

func (s *Service) SetPublished(ctx context.Context, k Kind, parentID, id uuid.UUID, published bool) error {
	if err := s.saved(s.repo.SetPublished(ctx, k, parentID, id, published)); err != nil {
		return err
	}
	s.publish(ctx, realtime.Update, k, map[string]interface{}{"id": id, "is_published": published}, nil)
	return nil
}

// ReorderVideos assigns order_index = position+1 following ids.
func (s *Service) ReorderVideos(ctx context.Context, parentID uuid.UUID, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return ErrReorderIDs
		}
		seen[id] = true
	}
	if err := s.repo.Reorder(ctx, parentID, ids); err != nil {
		return err
	}
	s.publish(ctx, realtime.Update, KindVideos, map[string]interface{}{"ids": ids}, nil)
	return nil
}

func (s *Service) saved(found bool, err error) error {
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *Service) publish(ctx context.Context, kind realtime.ChangeType, k Kind, record, old interface{}) {
	s.cache.Invalidate(ctx, s.scope.Table(k))
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: s.scope.Table(k), Record: record, OldRecord: old})
}
