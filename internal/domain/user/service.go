package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/domain/profile"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/database"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/password"
	"github.com/cresol/hub-api/internal/pkg/supabase"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

const entityType = "user"

// AuthAdmin is the part of the auth server admin API the service uses.
type AuthAdmin interface {
	CreateUser(ctx context.Context, p supabase.CreateUserParams) (*supabase.User, error)
	UpdateUserByID(ctx context.Context, id uuid.UUID, p supabase.UpdateUserParams) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Service creates auth users with their profiles and manages roles.
type Service struct {
	profiles profile.Repository
	auth     AuthAdmin
	audit    audit.Recorder
}

// NewService creates user service
func NewService(profiles profile.Repository, auth AuthAdmin, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{profiles: profiles, auth: auth, audit: recorder}
}

// Create registers an auth user with a generated password and writes its
// profile. The auth user is deleted again when the profile cannot be
// written.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*Created, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.IsCorporateEmail(email) {
		return nil, errNotCorporate()
	}
	role := req.Role
	if role == "" {
		role = authz.RoleUser
	}

	existing, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, profile.ErrEmailTaken
	}

	temp, err := password.Generate(password.MinLength)
	if err != nil {
		return nil, err
	}

	u, err := s.auth.CreateUser(ctx, supabase.CreateUserParams{
		Email:        email,
		Password:     temp,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"full_name": req.FullName},
		AppMetadata:  map[string]interface{}{"role": role},
	})
	if errors.Is(err, supabase.ErrEmailExists) {
		return nil, profile.ErrEmailTaken
	}
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("email", email).Msg("Auth user creation failed")
		return nil, ErrAuthUnavailable
	}

	now := time.Now()
	p := &profile.Profile{
		ID:             u.ID,
		Email:          email,
		FullName:       req.FullName,
		Role:           role,
		PositionID:     req.PositionID,
		WorkLocationID: req.WorkLocationID,
		AvatarURL:      req.AvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		s.discardAuthUser(ctx, u.ID)
		switch {
		case database.IsUniqueViolation(err):
			return nil, profile.ErrEmailTaken
		case database.IsForeignKeyViolation(err):
			return nil, ErrInvalidReference
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUserCreated,
		EntityType: entityType,
		EntityID:   u.ID,
		NewValue:   map[string]interface{}{"email": email, "full_name": req.FullName, "role": role},
	})
	return &Created{UserID: u.ID, TempPassword: temp}, nil
}

func (s *Service) discardAuthUser(ctx context.Context, id uuid.UUID) {
	if err := s.auth.DeleteUser(context.WithoutCancel(ctx), id); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("user_id", id.String()).Msg("Failed to delete auth user after profile error")
	}
}

// ChangeRole is the only path that writes profiles.role. The auth server
// metadata is synced afterwards; a failed sync is logged and ignored.
func (s *Service) ChangeRole(ctx context.Context, caller middleware.Identity, userID uuid.UUID, role string) (*profile.Profile, error) {
	if caller.UserID == userID && caller.Role == authz.RoleAdmin && role != authz.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Role == role {
		return p, nil
	}
	old := p.Role

	if err := s.profiles.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	p.Role = role
	p.UpdatedAt = time.Now()

	if err := s.auth.UpdateUserByID(ctx, userID, supabase.UpdateUserParams{
		AppMetadata: map[string]interface{}{"role": role},
	}); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to sync role to auth metadata")
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUserRoleChanged,
		EntityType: entityType,
		EntityID:   userID,
		OldValue:   map[string]string{"role": old},
		NewValue:   map[string]string{"role": role},
	})
	return p, nil
}

// Get returns the profile of a user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, f profile.Filter) ([]*profile.Profile, int, error) {
	return s.profiles.List(ctx, f)
}

// Update applies admin edits to a profile. A role in the body goes through
// ChangeRole.
func (s *Service) Update(ctx context.Context, caller middleware.Identity, id uuid.UUID, req *UpdateUserRequest) (*profile.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Role != nil && *req.Role != p.Role && caller.UserID == id && caller.Role == authz.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	old := *p
	req.Apply(p)
	p.UpdatedAt = time.Now()
	if err := s.profiles.Update(ctx, p); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, err
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUserUpdated,
		EntityType: entityType,
		EntityID:   id,
		OldValue:   old,
		NewValue:   p,
	})

	if req.Role != nil {
		return s.ChangeRole(ctx, caller, id, *req.Role)
	}
	return p, nil
}
