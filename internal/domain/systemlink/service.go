package systemlink

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/realtime"
)

// Service handles system link business logic
type Service struct {
	repo      Repository
	cache     *cache.Cache
	publisher realtime.Publisher
}

// NewService creates system link service
func NewService(repo Repository, c *cache.Cache, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, cache: c, publisher: publisher}
}

func (s *Service) List(ctx context.Context, caller middleware.Identity, activeOnly bool) ([]*Link, error) {
	if !authz.IsManager(caller.Role, authz.SystemLinks) {
		activeOnly = true
	}
	return cache.Fetch(ctx, s.cache, table, "active="+strconv.FormatBool(activeOnly), func(ctx context.Context) ([]*Link, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *Service) Create(ctx context.Context, req *LinkRequest) (*Link, error) {
	now := time.Now()
	l := &Link{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	apply(l, req)
	if req.OrderIndex == nil {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return nil, err
		}
		l.OrderIndex = next
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Insert, l, nil)
	return l, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *LinkRequest) (*Link, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLinkNotFound
	}
	old := *l

	apply(l, req)
	l.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Update, l, &old)
	return l, nil
}

func apply(l *Link, req *LinkRequest) {
	l.Name = req.Name
	l.URL = req.URL
	l.Description = req.Description
	l.Icon = req.Icon
	if req.IsActive != nil {
		l.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		l.OrderIndex = *req.OrderIndex
	}
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.changed(ctx, realtime.Update, map[string]interface{}{"id": id, "is_active": active}, nil)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, realtime.Delete, nil, map[string]interface{}{"id": id})
	return nil
}

func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, record, old interface{}) {
	s.cache.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}
