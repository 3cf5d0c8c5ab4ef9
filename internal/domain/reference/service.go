package reference

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/realtime"
)

// Service handles work location and position lists
type Service struct {
	repo      Repository
	cache     *cache.Cache
	publisher realtime.Publisher
}

// NewService creates reference service
func NewService(repo Repository, c *cache.Cache, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, cache: c, publisher: publisher}
}

func (s *Service) ListWorkLocations(ctx context.Context) ([]*WorkLocation, error) {
	return cache.Fetch(ctx, s.cache, tableWorkLocations, "all", s.repo.ListWorkLocations)
}

func (s *Service) CreateWorkLocation(ctx context.Context, req *WorkLocationRequest) (*WorkLocation, error) {
	now := time.Now()
	wl := &WorkLocation{ID: uuid.New(), Name: req.Name, Address: req.Address, City: req.City, State: req.State, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateWorkLocation(ctx, wl); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Insert, tableWorkLocations, wl, nil)
	return wl, nil
}

func (s *Service) UpdateWorkLocation(ctx context.Context, id uuid.UUID, req *WorkLocationRequest) (*WorkLocation, error) {
	wl, err := s.repo.GetWorkLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if wl == nil {
		return nil, ErrWorkLocationNotFound
	}
	old := *wl

	wl.Name, wl.Address, wl.City, wl.State = req.Name, req.Address, req.City, req.State
	wl.UpdatedAt = time.Now()
	ok, err := s.repo.UpdateWorkLocation(ctx, wl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWorkLocationNotFound
	}
	s.changed(ctx, realtime.Update, tableWorkLocations, wl, &old)
	return wl, nil
}

func (s *Service) DeleteWorkLocation(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.DeleteWorkLocation(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWorkLocationNotFound
	}
	s.changed(ctx, realtime.Delete, tableWorkLocations, nil, map[string]interface{}{"id": id})
	return nil
}

func (s *Service) ListPositions(ctx context.Context) ([]*Position, error) {
	return cache.Fetch(ctx, s.cache, tablePositions, "all", s.repo.ListPositions)
}

func (s *Service) CreatePosition(ctx context.Context, req *PositionRequest) (*Position, error) {
	now := time.Now()
	p := &Position{ID: uuid.New(), Name: req.Name, Department: req.Department, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreatePosition(ctx, p); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Insert, tablePositions, p, nil)
	return p, nil
}

func (s *Service) UpdatePosition(ctx context.Context, id uuid.UUID, req *PositionRequest) (*Position, error) {
	p, err := s.repo.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPositionNotFound
	}
	old := *p

	p.Name, p.Department = req.Name, req.Department
	p.UpdatedAt = time.Now()
	ok, err := s.repo.UpdatePosition(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPositionNotFound
	}
	s.changed(ctx, realtime.Update, tablePositions, p, &old)
	return p, nil
}

func (s *Service) DeletePosition(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.DeletePosition(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPositionNotFound
	}
	s.changed(ctx, realtime.Delete, tablePositions, nil, map[string]interface{}{"id": id})
	return nil
}

func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, table string, record, old interface{}) {
	s.cache.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}
