package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/pagination"
)

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher RealtimePublisher
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates notification service. publisher and recorder may be
// nil.
func NewService(repo Repository, publisher RealtimePublisher, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, publisher: publisher, audit: recorder, now: time.Now}
}

// Send inserts one notification per distinct recipient and pushes each
// recipient its new unread count.
func (s *Service) Send(ctx context.Context, caller middleware.Identity, req *SendRequest) (*SendResult, error) {
	recipients, err := s.repo.Recipients(ctx, req.UserIDs, req.GroupIDs)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	kind := req.Type
	if kind == "" {
		kind = TypeInfo
	}
	var createdBy *uuid.UUID
	if caller.UserID != uuid.Nil {
		id := caller.UserID
		createdBy = &id
	}

	now := s.now()
	list := make([]*Notification, len(recipients))
	for i, userID := range recipients {
		list[i] = &Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Title:     req.Title,
			Message:   req.Message,
			Type:      kind,
			Link:      req.Link,
			CreatedBy: createdBy,
			CreatedAt: now,
		}
	}
	if err := s.repo.CreateBatch(ctx, list); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionNotificationSent,
		EntityType: "notification",
		NewValue: map[string]interface{}{
			"title":      req.Title,
			"user_ids":   req.UserIDs,
			"group_ids":  req.GroupIDs,
			"recipients": len(list),
		},
	})
	s.push(ctx, list)

	return &SendResult{Recipients: len(list)}, nil
}

func (s *Service) push(ctx context.Context, list []*Notification) {
	if s.publisher == nil {
		return
	}
	log := logger.FromContext(ctx)

	ids := make([]uuid.UUID, len(list))
	for i, n := range list {
		ids[i] = n.UserID
	}
	counts, err := s.repo.CountUnreadByUsers(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count unread notifications")
		return
	}
	for _, n := range list {
		if err := s.publisher.NotifyNew(ctx, n.UserID, n, counts[n.UserID]); err != nil {
			log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Failed to push notification")
		}
	}
}

// List returns a page of the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, p.Limit, p.Offset())
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead marks one of the caller's notifications as read. Rows of other
// users are reported as not found.
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	return s.repo.ListGroups(ctx)
}

func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (s *Service) CreateGroup(ctx context.Context, caller middleware.Identity, req *GroupRequest) (*Group, error) {
	now := s.now()
	g := &Group{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if caller.UserID != uuid.Nil {
		id := caller.UserID
		g.CreatedBy = &id
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) UpdateGroup(ctx context.Context, id uuid.UUID, req *GroupRequest) (*Group, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Name = req.Name
	g.Description = req.Description
	g.UpdatedAt = s.now()

	ok, err := s.repo.UpdateGroup(ctx, g)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (s *Service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.DeleteGroup(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGroupNotFound
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, groupID)
}

// AddMembers returns how many users were newly added.
func (s *Service) AddMembers(ctx context.Context, groupID uuid.UUID, userIDs []uuid.UUID) (int64, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return 0, err
	}
	return s.repo.AddMembers(ctx, groupID, userIDs)
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMemberNotFound
	}
	return nil
}
