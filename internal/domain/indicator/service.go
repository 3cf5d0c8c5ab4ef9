package indicator

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

// Service handles indicator business logic
type Service struct {
	repo      Repository
	cache     *cache.Cache
	publisher realtime.Publisher
}

// NewService creates indicator service
func NewService(repo Repository, c *cache.Cache, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, cache: c, publisher: publisher}
}

func (s *Service) List(ctx context.Context, caller middleware.Identity, activeOnly bool) ([]*Indicator, error) {
	if !authz.IsManager(caller.Role, authz.Indicators) {
		activeOnly = true
	}
	return cache.Fetch(ctx, s.cache, table, "active="+strconv.FormatBool(activeOnly), func(ctx context.Context) ([]*Indicator, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *Service) Create(ctx context.Context, req *IndicatorRequest) (*Indicator, error) {
	now := time.Now()
	ind := &Indicator{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	apply(ind, req)

	if req.OrderIndex == nil {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return nil, err
		}
		ind.OrderIndex = next
	}
	if err := s.repo.Create(ctx, ind); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Insert, ind, nil)
	return ind, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *IndicatorRequest) (*Indicator, error) {
	ind, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ind == nil {
		return nil, ErrIndicatorNotFound
	}
	old := *ind

	apply(ind, req)
	ind.UpdatedAt = time.Now()
	ok, err := s.repo.Update(ctx, ind)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIndicatorNotFound
	}
	s.changed(ctx, realtime.Update, ind, &old)
	return ind, nil
}

func apply(ind *Indicator, req *IndicatorRequest) {
	ind.Title = req.Title
	ind.Value = req.Value
	ind.Unit = req.Unit
	ind.Issuer = req.Issuer
	ind.Period = req.Period
	ind.Icon = req.Icon
	if req.IsActive != nil {
		ind.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		ind.OrderIndex = *req.OrderIndex
	}
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIndicatorNotFound
	}
	s.changed(ctx, realtime.Update, map[string]interface{}{"id": id, "is_active": active}, nil)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIndicatorNotFound
	}
	s.changed(ctx, realtime.Delete, nil, map[string]interface{}{"id": id})
	return nil
}

func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, record, old interface{}) {
	s.cache.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}
