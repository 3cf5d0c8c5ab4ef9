package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cresol/hub-api/internal/pkg/database"
)

// Repository defines notification data access
type Repository interface {
	CreateBatch(ctx context.Context, list []*Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	CountUnreadByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Recipients(ctx context.Context, userIDs, groupIDs []uuid.UUID) ([]uuid.UUID, error)

	ListGroups(ctx context.Context) ([]*Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	CreateGroup(ctx context.Context, g *Group) error
	UpdateGroup(ctx context.Context, g *Group) (bool, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error)
	AddMembers(ctx context.Context, groupID uuid.UUID, userIDs []uuid.UUID) (int64, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const notificationColumns = `id, user_id, title, message, type, link, is_read, read_at, created_by, created_at`

// insertChunk keeps a batch insert under the Postgres bind parameter limit.
const insertChunk = 500

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// CreateBatch inserts all rows in one transaction.
func (r *repository) CreateBatch(ctx context.Context, list []*Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, link, is_read, created_by, created_at)
		VALUES (:id, :user_id, :title, :message, :type, :link, :is_read, :created_by, :created_at)
	`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for start := 0; start < len(list); start += insertChunk {
			end := start + insertChunk
			if end > len(list) {
				end = len(list)
			}
			if _, err := tx.NamedExecContext(ctx, query, list[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	list := []*Notification{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return list, total, err
}

func (r *repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID)
	return count, err
}

func (r *repository) CountUnreadByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		UserID uuid.UUID `db:"user_id"`
		Count  int       `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, COUNT(*) AS count FROM notifications
		WHERE user_id = ANY($1::uuid[]) AND NOT is_read
		GROUP BY user_id
	`, uuidArray(userIDs))
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}

// MarkAsRead only touches rows owned by userID.
func (r *repository) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
	`, id, userID))
}

func (r *repository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = true, read_at = NOW() WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE is_read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Recipients resolves the distinct existing users among userIDs and the
// members of groupIDs.
func (r *repository) Recipients(ctx context.Context, userIDs, groupIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM profiles WHERE id = ANY($1::uuid[])
		UNION
		SELECT user_id FROM notification_group_members WHERE group_id = ANY($2::uuid[])
	`, uuidArray(userIDs), uuidArray(groupIDs))
	return ids, err
}

const groupColumns = `g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at,
	(SELECT COUNT(*) FROM notification_group_members m WHERE m.group_id = g.id) AS member_count`

func (r *repository) ListGroups(ctx context.Context) ([]*Group, error) {
	groups := []*Group{}
	err := r.db.SelectContext(ctx, &groups, `SELECT `+groupColumns+` FROM notification_groups g ORDER BY g.name`)
	return groups, err
}

func (r *repository) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	var g Group
	err := r.db.GetContext(ctx, &g, `SELECT `+groupColumns+` FROM notification_groups g WHERE g.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) CreateGroup(ctx context.Context, g *Group) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notification_groups (id, name, description, created_by, created_at, updated_at)
		VALUES (:id, :name, :description, :created_by, :created_at, :updated_at)
	`, g)
	if database.IsUniqueViolation(err) {
		return ErrGroupNameTaken
	}
	return err
}

func (r *repository) UpdateGroup(ctx context.Context, g *Group) (bool, error) {
	ok, err := affected(r.db.NamedExecContext(ctx, `
		UPDATE notification_groups SET name = :name, description = :description, updated_at = :updated_at
		WHERE id = :id
	`, g))
	if database.IsUniqueViolation(err) {
		return false, ErrGroupNameTaken
	}
	return ok, err
}

func (r *repository) DeleteGroup(ctx context.Context, id uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM notification_groups WHERE id = $1`, id))
}

func (r *repository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error) {
	members := []*Member{}
	err := r.db.SelectContext(ctx, &members, `
		SELECT m.group_id, m.user_id, p.email, p.full_name, m.created_at
		FROM notification_group_members m
		JOIN profiles p ON p.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY p.full_name
	`, groupID)
	return members, err
}

// AddMembers ignores users that are already members.
func (r *repository) AddMembers(ctx context.Context, groupID uuid.UUID, userIDs []uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_group_members (group_id, user_id, created_at)
		SELECT $1, u, NOW() FROM unnest($2::uuid[]) AS u
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, uuidArray(userIDs))
	if database.IsForeignKeyViolation(err) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM notification_group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID))
}
