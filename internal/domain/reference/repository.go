package reference

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines reference data access interface
type Repository interface {
	ListWorkLocations(ctx context.Context) ([]*WorkLocation, error)
	GetWorkLocation(ctx context.Context, id uuid.UUID) (*WorkLocation, error)
	CreateWorkLocation(ctx context.Context, wl *WorkLocation) error
	UpdateWorkLocation(ctx context.Context, wl *WorkLocation) (bool, error)
	DeleteWorkLocation(ctx context.Context, id uuid.UUID) (bool, error)

	ListPositions(ctx context.Context) ([]*Position, error)
	GetPosition(ctx context.Context, id uuid.UUID) (*Position, error)
	CreatePosition(ctx context.Context, p *Position) error
	UpdatePosition(ctx context.Context, p *Position) (bool, error)
	DeletePosition(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reference repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) ListWorkLocations(ctx context.Context) ([]*WorkLocation, error) {
	rows := []*WorkLocation{}
	err := r.db.SelectContext(ctx, &rows, `SELECT id, name, address, city, state, created_at, updated_at FROM work_locations ORDER BY name`)
	return rows, err
}

func (r *repository) GetWorkLocation(ctx context.Context, id uuid.UUID) (*WorkLocation, error) {
	var wl WorkLocation
	err := r.db.GetContext(ctx, &wl, `SELECT id, name, address, city, state, created_at, updated_at FROM work_locations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wl, nil
}

func (r *repository) CreateWorkLocation(ctx context.Context, wl *WorkLocation) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO work_locations (id, name, address, city, state, created_at, updated_at)
		VALUES (:id, :name, :address, :city, :state, :created_at, :updated_at)
	`, wl)
	return err
}

func (r *repository) UpdateWorkLocation(ctx context.Context, wl *WorkLocation) (bool, error) {
	return affected(r.db.NamedExecContext(ctx, `
		UPDATE work_locations SET name = :name, address = :address, city = :city, state = :state, updated_at = :updated_at
		WHERE id = :id
	`, wl))
}

// DeleteWorkLocation removes the row. Profiles pointing at it are set to
// NULL by the foreign key.
func (r *repository) DeleteWorkLocation(ctx context.Context, id uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM work_locations WHERE id = $1`, id))
}

func (r *repository) ListPositions(ctx context.Context) ([]*Position, error) {
	rows := []*Position{}
	err := r.db.SelectContext(ctx, &rows, `SELECT id, name, department, created_at, updated_at FROM positions ORDER BY name`)
	return rows, err
}

func (r *repository) GetPosition(ctx context.Context, id uuid.UUID) (*Position, error) {
	var p Position
	err := r.db.GetContext(ctx, &p, `SELECT id, name, department, created_at, updated_at FROM positions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreatePosition(ctx context.Context, p *Position) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO positions (id, name, department, created_at, updated_at)
		VALUES (:id, :name, :department, :created_at, :updated_at)
	`, p)
	return err
}

func (r *repository) UpdatePosition(ctx context.Context, p *Position) (bool, error) {
	return affected(r.db.NamedExecContext(ctx, `
		UPDATE positions SET name = :name, department = :department, updated_at = :updated_at WHERE id = :id
	`, p))
}

func (r *repository) DeletePosition(ctx context.Context, id uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id))
}
