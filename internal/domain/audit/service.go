package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/logger"
)

// Recorder is what other services depend on.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Service records and lists admin actions.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates audit service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record appends an audit row for the caller in ctx. Failures are logged and
// never reach the caller.
func (s *Service) Record(ctx context.Context, e Entry) {
	id, _ := middleware.GetIdentity(ctx)

	l := &Log{
		ID:         uuid.New(),
		ActorID:    uuid.NullUUID{UUID: id.UserID, Valid: id.UserID != uuid.Nil},
		ActorEmail: sql.NullString{String: id.Email, Valid: id.Email != ""},
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   uuid.NullUUID{UUID: e.EntityID, Valid: e.EntityID != uuid.Nil},
		OldValue:   marshal(e.OldValue),
		NewValue:   marshal(e.NewValue),
		Reason:     sql.NullString{String: e.Reason, Valid: e.Reason != ""},
		CreatedAt:  s.now(),
	}
	if ip := middleware.GetClientIP(ctx); ip != "" {
		l.IPAddress = sql.NullString{String: ip, Valid: true}
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), l); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("action", e.Action).Msg("Failed to create audit log")
	}
}

// List returns a page of audit rows, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]*Log, int, error) {
	return s.repo.List(ctx, f)
}

func marshal(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
