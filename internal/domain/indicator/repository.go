package indicator

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines indicator data access interface
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]*Indicator, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Indicator, error)
	Create(ctx context.Context, ind *Indicator) error
	Update(ctx context.Context, ind *Indicator) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	NextOrderIndex(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates indicator repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `id, title, value, unit, issuer, period, icon, is_active, order_index, created_at, updated_at`

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]*Indicator, error) {
	query := `SELECT ` + columns + ` FROM economic_indicators`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY order_index, created_at DESC`

	indicators := []*Indicator{}
	err := r.db.SelectContext(ctx, &indicators, query)
	return indicators, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Indicator, error) {
	var ind Indicator
	err := r.db.GetContext(ctx, &ind, `SELECT `+columns+` FROM economic_indicators WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *repository) Create(ctx context.Context, ind *Indicator) error {
	query := `
		INSERT INTO economic_indicators (id, title, value, unit, issuer, period, icon, is_active, order_index, created_at, updated_at)
		VALUES (:id, :title, :value, :unit, :issuer, :period, :icon, :is_active, :order_index, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, ind)
	return err
}

func (r *repository) Update(ctx context.Context, ind *Indicator) (bool, error) {
	query := `
		UPDATE economic_indicators SET
			title = :title, value = :value, unit = :unit, issuer = :issuer, period = :period,
			icon = :icon, is_active = :is_active, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id
	`
	return affected(r.db.NamedExecContext(ctx, query, ind))
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM economic_indicators WHERE id = $1`, id))
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	return affected(r.db.ExecContext(ctx, `UPDATE economic_indicators SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

func (r *repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM economic_indicators`)
	return next, err
}
