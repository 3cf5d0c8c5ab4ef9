package sector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines sector, subsector and scope admin data access
type Repository interface {
	ListSectors(ctx context.Context, managerID uuid.UUID) ([]*Sector, error)
	GetSector(ctx context.Context, id uuid.UUID) (*Sector, error)
	CreateSector(ctx context.Context, s *Sector) error
	UpdateSector(ctx context.Context, s *Sector) error
	DeleteSector(ctx context.Context, id uuid.UUID) error

	ListSubsectors(ctx context.Context, sectorIDs []uuid.UUID) ([]*Subsector, error)
	GetSubsector(ctx context.Context, id uuid.UUID) (*Subsector, error)
	CreateSubsector(ctx context.Context, s *Subsector) error
	UpdateSubsector(ctx context.Context, s *Subsector) error
	DeleteSubsector(ctx context.Context, id uuid.UUID) error

	// StoredFiles lists the storage references of all content that
	// cascades with the sector or subsector.
	StoredFiles(ctx context.Context, sectorID, subsectorID uuid.UUID) ([]StoredFile, error)

	ListSectorAdmins(ctx context.Context, sectorID uuid.UUID) ([]*ScopeAdmin, error)
	AddSectorAdmin(ctx context.Context, sectorID, userID uuid.UUID) error
	RemoveSectorAdmin(ctx context.Context, sectorID, userID uuid.UUID) error
	ListSubsectorAdmins(ctx context.Context, subsectorID uuid.UUID) ([]*ScopeAdmin, error)
	AddSubsectorAdmin(ctx context.Context, subsectorID, userID uuid.UUID) error
	RemoveSubsectorAdmin(ctx context.Context, subsectorID, userID uuid.UUID) error

	IsSectorAdmin(ctx context.Context, userID, sectorID uuid.UUID) (bool, error)
	IsSubsectorAdmin(ctx context.Context, userID, subsectorID uuid.UUID) (bool, error)
	SectorOfSubsector(ctx context.Context, subsectorID uuid.UUID) (uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates sector repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// ListSectors returns all sectors, or only those managerID administers
// (directly or through one of their subsectors) when managerID is set.
func (r *repository) ListSectors(ctx context.Context, managerID uuid.UUID) ([]*Sector, error) {
	sectors := []*Sector{}
	if managerID == uuid.Nil {
		err := r.db.SelectContext(ctx, &sectors, `SELECT id, name, description, created_at, updated_at FROM sectors ORDER BY name`)
		return sectors, err
	}

	query := `
		SELECT s.id, s.name, s.description, s.created_at, s.updated_at
		FROM sectors s
		WHERE EXISTS (SELECT 1 FROM sector_admins sa WHERE sa.sector_id = s.id AND sa.user_id = $1)
		   OR EXISTS (
		        SELECT 1 FROM subsector_admins ssa
		        JOIN subsectors ss ON ss.id = ssa.subsector_id
		        WHERE ss.sector_id = s.id AND ssa.user_id = $1)
		ORDER BY s.name
	`
	err := r.db.SelectContext(ctx, &sectors, query, managerID)
	return sectors, err
}

func (r *repository) GetSector(ctx context.Context, id uuid.UUID) (*Sector, error) {
	var s Sector
	err := r.db.GetContext(ctx, &s, `SELECT id, name, description, created_at, updated_at FROM sectors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateSector(ctx context.Context, s *Sector) error {
	query := `INSERT INTO sectors (id, name, description, created_at, updated_at)
	          VALUES (:id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("sector repository create: %w", err)
	}
	return nil
}

func (r *repository) UpdateSector(ctx context.Context, s *Sector) error {
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE sectors SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`, s)
	if err != nil {
		return fmt.Errorf("sector repository update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSectorNotFound
	}
	return nil
}

// DeleteSector removes the sector; subsectors and content follow through
// ON DELETE CASCADE.
func (r *repository) DeleteSector(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sectors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sector repository delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSectorNotFound
	}
	return nil
}

func (r *repository) ListSubsectors(ctx context.Context, sectorIDs []uuid.UUID) ([]*Subsector, error) {
	subsectors := []*Subsector{}
	if len(sectorIDs) == 0 {
		return subsectors, nil
	}
	query, args, err := sqlx.In(`SELECT id, sector_id, name, description, created_at, updated_at
		FROM subsectors WHERE sector_id IN (?) ORDER BY name`, sectorIDs)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &subsectors, r.db.Rebind(query), args...)
	return subsectors, err
}

func (r *repository) GetSubsector(ctx context.Context, id uuid.UUID) (*Subsector, error) {
	var s Subsector
	err := r.db.GetContext(ctx, &s, `SELECT id, sector_id, name, description, created_at, updated_at FROM subsectors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateSubsector(ctx context.Context, s *Subsector) error {
	query := `INSERT INTO subsectors (id, sector_id, name, description, created_at, updated_at)
	          VALUES (:id, :sector_id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("subsector repository create: %w", err)
	}
	return nil
}

func (r *repository) UpdateSubsector(ctx context.Context, s *Subsector) error {
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE subsectors SET sector_id = :sector_id, name = :name, description = :description, updated_at = :updated_at WHERE id = :id`, s)
	if err != nil {
		return fmt.Errorf("subsector repository update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubsectorNotFound
	}
	return nil
}

func (r *repository) DeleteSubsector(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subsectors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("subsector repository delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubsectorNotFound
	}
	return nil
}

// StoredFiles takes either a sector id or a subsector id; the other must be
// uuid.Nil.
func (r *repository) StoredFiles(ctx context.Context, sectorID, subsectorID uuid.UUID) ([]StoredFile, error) {
	query := `
		WITH scope AS (
			SELECT id FROM subsectors WHERE sector_id = $1 OR id = $2
		)
		SELECT 'videos' AS bucket, file_path AS path, thumbnail_url AS url FROM sector_videos WHERE sector_id = $1
		UNION ALL
		SELECT 'images', NULL, image_url FROM sector_news WHERE sector_id = $1
		UNION ALL
		SELECT 'videos', file_path, thumbnail_url FROM subsector_videos WHERE subsector_id IN (SELECT id FROM scope)
		UNION ALL
		SELECT 'images', NULL, image_url FROM subsector_news WHERE subsector_id IN (SELECT id FROM scope)
		UNION ALL
		SELECT 'images', file_path, image_url FROM subsector_images WHERE subsector_id IN (SELECT id FROM scope)
		UNION ALL
		SELECT 'images', thumbnail_path, thumbnail_url FROM subsector_images WHERE subsector_id IN (SELECT id FROM scope)
	`
	files := []StoredFile{}
	err := r.db.SelectContext(ctx, &files, query, sectorID, subsectorID)
	return files, err
}

func (r *repository) ListSectorAdmins(ctx context.Context, sectorID uuid.UUID) ([]*ScopeAdmin, error) {
	admins := []*ScopeAdmin{}
	query := `
		SELECT sa.user_id, p.email, p.full_name, p.role, sa.created_at
		FROM sector_admins sa JOIN profiles p ON p.id = sa.user_id
		WHERE sa.sector_id = $1 ORDER BY p.full_name
	`
	err := r.db.SelectContext(ctx, &admins, query, sectorID)
	return admins, err
}

// AddSectorAdmin is idempotent.
func (r *repository) AddSectorAdmin(ctx context.Context, sectorID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sector_admins (sector_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, sectorID, userID)
	return err
}

func (r *repository) RemoveSectorAdmin(ctx context.Context, sectorID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sector_admins WHERE sector_id = $1 AND user_id = $2`, sectorID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *repository) ListSubsectorAdmins(ctx context.Context, subsectorID uuid.UUID) ([]*ScopeAdmin, error) {
	admins := []*ScopeAdmin{}
	query := `
		SELECT sa.user_id, p.email, p.full_name, p.role, sa.created_at
		FROM subsector_admins sa JOIN profiles p ON p.id = sa.user_id
		WHERE sa.subsector_id = $1 ORDER BY p.full_name
	`
	err := r.db.SelectContext(ctx, &admins, query, subsectorID)
	return admins, err
}

func (r *repository) AddSubsectorAdmin(ctx context.Context, subsectorID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subsector_admins (subsector_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, subsectorID, userID)
	return err
}

func (r *repository) RemoveSubsectorAdmin(ctx context.Context, subsectorID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subsector_admins WHERE subsector_id = $1 AND user_id = $2`, subsectorID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *repository) IsSectorAdmin(ctx context.Context, userID, sectorID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM sector_admins WHERE user_id = $1 AND sector_id = $2)`, userID, sectorID)
	return ok, err
}

func (r *repository) IsSubsectorAdmin(ctx context.Context, userID, subsectorID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM subsector_admins WHERE user_id = $1 AND subsector_id = $2)`, userID, subsectorID)
	return ok, err
}

func (r *repository) SectorOfSubsector(ctx context.Context, subsectorID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT sector_id FROM subsectors WHERE id = $1`, subsectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	return id, err
}
