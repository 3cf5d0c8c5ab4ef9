package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service handles profile business logic
type Service struct {
	repo Repository
}

// NewService creates profile service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LookupRole resolves the role of an authenticated caller. found is false
// when the user has no profile row.
func (s *Service) LookupRole(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	role, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		return "", false, err
	}
	return role, role != "", nil
}

// Get returns the profile with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// UpdateMe applies the caller's own profile edits.
func (s *Service) UpdateMe(ctx context.Context, id uuid.UUID, req *UpdateMeRequest) (*Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(p)
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns a page of profiles for the admin user list.
func (s *Service) List(ctx context.Context, f Filter) ([]*Profile, int, error) {
	return s.repo.List(ctx, f)
}
