package audit

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository defines audit log data access
type Repository interface {
	Create(ctx context.Context, l *Log) error
	List(ctx context.Context, f Filter) ([]*Log, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates audit repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Log) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, actor_email, action, entity_type, entity_id, old_value, new_value, reason, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.ActorID,
		l.ActorEmail,
		l.Action,
		l.EntityType,
		l.EntityID,
		nullJSON(l.OldValue),
		nullJSON(l.NewValue),
		l.Reason,
		l.IPAddress,
		l.CreatedAt,
	)
	return err
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Log, int, error) {
	where := ` WHERE ($1 = '' OR action = $1) AND ($2 = '' OR entity_type = $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+where, f.Action, f.EntityType); err != nil {
		return nil, 0, err
	}

	logs := []*Log{}
	query := `SELECT id, actor_id, actor_email, action, entity_type, entity_id, old_value, new_value, reason, ip_address, created_at
		FROM audit_logs` + where + ` ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &logs, query, f.Action, f.EntityType, f.Limit, f.Offset()); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// nullJSON keeps empty payloads out of the JSONB columns.
func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}
