package systemlink

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cresol/hub-api/internal/pkg/apperror"
)

var ErrLinkNotFound = apperror.NotFound("System link not found")

// Repository defines system link data access interface
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]*Link, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Link, error)
	Create(ctx context.Context, l *Link) error
	Update(ctx context.Context, l *Link) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	NextOrderIndex(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates system link repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `id, name, url, description, icon, is_active, order_index, created_at, updated_at`

// mustAffect maps a write that touched no row to ErrLinkNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]*Link, error) {
	query := `SELECT ` + columns + ` FROM system_links`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY order_index, name`

	links := []*Link{}
	err := r.db.SelectContext(ctx, &links, query)
	return links, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Link, error) {
	var l Link
	err := r.db.GetContext(ctx, &l, `SELECT `+columns+` FROM system_links WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) Create(ctx context.Context, l *Link) error {
	query := `
		INSERT INTO system_links (id, name, url, description, icon, is_active, order_index, created_at, updated_at)
		VALUES (:id, :name, :url, :description, :icon, :is_active, :order_index, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, l)
	return err
}

func (r *repository) Update(ctx context.Context, l *Link) error {
	query := `
		UPDATE system_links SET
			name = :name, url = :url, description = :description, icon = :icon,
			is_active = :is_active, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id
	`
	return mustAffect(r.db.NamedExecContext(ctx, query, l))
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM system_links WHERE id = $1`, id))
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return mustAffect(r.db.ExecContext(ctx, `UPDATE system_links SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

func (r *repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM system_links`)
	return next, err
}
