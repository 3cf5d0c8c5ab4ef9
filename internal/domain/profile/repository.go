package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines profile data access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	GetRole(ctx context.Context, id uuid.UUID) (string, error)
	Upsert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	List(ctx context.Context, f Filter) ([]*Profile, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `id, email, full_name, role, position_id, work_location_id, avatar_url, phone, created_at, updated_at`

// GetByID returns nil when the profile does not exist.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+selectColumns+` FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+selectColumns+` FROM profiles WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetRole returns "" without error when no profile row exists.
func (r *repository) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	var role string
	err := r.db.GetContext(ctx, &role, `SELECT role FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return role, err
}

// Upsert inserts the profile or overwrites the editable columns of an
// existing row with the same id.
func (r *repository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role, position_id, work_location_id, avatar_url, phone, created_at, updated_at)
		VALUES (:id, :email, :full_name, :role, :position_id, :work_location_id, :avatar_url, :phone, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			position_id = EXCLUDED.position_id,
			work_location_id = EXCLUDED.work_location_id,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("profile repository upsert: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles
		SET full_name = :full_name, phone = :phone, avatar_url = :avatar_url,
		    position_id = :position_id, work_location_id = :work_location_id, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("profile repository update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *repository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("profile repository update role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Profile, int, error) {
	where := ` WHERE ($1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		AND ($2 = '' OR role = $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`+where, f.Search, f.Role); err != nil {
		return nil, 0, err
	}

	profiles := []*Profile{}
	query := `SELECT ` + selectColumns + ` FROM profiles` + where + ` ORDER BY full_name ASC, email ASC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &profiles, query, f.Search, f.Role, f.Limit, f.Offset()); err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
