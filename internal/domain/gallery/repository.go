package gallery

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cresol/hub-api/internal/pkg/database"
)

// Repository defines gallery data access interface
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]*Image, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	Create(ctx context.Context, img *Image) error
	Update(ctx context.Context, img *Image) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (*Image, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	NextOrderIndex(ctx context.Context) (int, error)

	SubsectorExists(ctx context.Context, subsectorID uuid.UUID) (bool, error)
	ListBySubsector(ctx context.Context, subsectorID uuid.UUID, drafts bool) ([]*SubsectorImage, error)
	GetSubsectorImage(ctx context.Context, subsectorID, id uuid.UUID) (*SubsectorImage, error)
	CreateSubsectorImage(ctx context.Context, img *SubsectorImage) error
	UpdateSubsectorImage(ctx context.Context, img *SubsectorImage) (bool, error)
	DeleteSubsectorImage(ctx context.Context, subsectorID, id uuid.UUID) (*SubsectorImage, error)
	SetPublished(ctx context.Context, subsectorID, id uuid.UUID, published bool) (bool, error)
	NextSubsectorOrderIndex(ctx context.Context, subsectorID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates gallery repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const imageColumns = `id, title, image_url, thumbnail_url, file_path, thumbnail_path, is_active, order_index, created_by, created_at, updated_at`

const subsectorImageColumns = `id, subsector_id, title, image_url, thumbnail_url, file_path, thumbnail_path, is_published, order_index, created_by, created_at, updated_at`

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]*Image, error) {
	query := `SELECT ` + imageColumns + ` FROM gallery_images`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY order_index, created_at DESC`

	images := []*Image{}
	err := r.db.SelectContext(ctx, &images, query)
	return images, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	var img Image
	err := r.db.GetContext(ctx, &img, `SELECT `+imageColumns+` FROM gallery_images WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repository) Create(ctx context.Context, img *Image) error {
	query := `
		INSERT INTO gallery_images (id, title, image_url, thumbnail_url, file_path, thumbnail_path, is_active, order_index, created_by, created_at, updated_at)
		VALUES (:id, :title, :image_url, :thumbnail_url, :file_path, :thumbnail_path, :is_active, :order_index, :created_by, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, img)
	return err
}

func (r *repository) Update(ctx context.Context, img *Image) (bool, error) {
	query := `
		UPDATE gallery_images SET
			title = :title, image_url = :image_url, thumbnail_url = :thumbnail_url,
			is_active = :is_active, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id
	`
	return affected(r.db.NamedExecContext(ctx, query, img))
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*Image, error) {
	var img Image
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &img, `DELETE FROM gallery_images WHERE id = $1 RETURNING `+imageColumns, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM collection_items WHERE item_type = 'image' AND item_id = $1`, id)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	return affected(r.db.ExecContext(ctx, `UPDATE gallery_images SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

func (r *repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM gallery_images`)
	return next, err
}

func (r *repository) SubsectorExists(ctx context.Context, subsectorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM subsectors WHERE id = $1)`, subsectorID)
	return exists, err
}

func (r *repository) ListBySubsector(ctx context.Context, subsectorID uuid.UUID, drafts bool) ([]*SubsectorImage, error) {
	query := `SELECT ` + subsectorImageColumns + ` FROM subsector_images WHERE subsector_id = $1`
	if !drafts {
		query += ` AND is_published`
	}
	query += ` ORDER BY order_index, created_at DESC`

	images := []*SubsectorImage{}
	err := r.db.SelectContext(ctx, &images, query, subsectorID)
	return images, err
}

func (r *repository) GetSubsectorImage(ctx context.Context, subsectorID, id uuid.UUID) (*SubsectorImage, error) {
	var img SubsectorImage
	err := r.db.GetContext(ctx, &img, `SELECT `+subsectorImageColumns+` FROM subsector_images WHERE id = $1 AND subsector_id = $2`, id, subsectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repository) CreateSubsectorImage(ctx context.Context, img *SubsectorImage) error {
	query := `
		INSERT INTO subsector_images (id, subsector_id, title, image_url, thumbnail_url, file_path, thumbnail_path, is_published, order_index, created_by, created_at, updated_at)
		VALUES (:id, :subsector_id, :title, :image_url, :thumbnail_url, :file_path, :thumbnail_path, :is_published, :order_index, :created_by, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, img)
	if database.IsForeignKeyViolation(err) {
		return ErrSubsectorNotFound
	}
	return err
}

func (r *repository) UpdateSubsectorImage(ctx context.Context, img *SubsectorImage) (bool, error) {
	query := `
		UPDATE subsector_images SET
			title = :title, image_url = :image_url, thumbnail_url = :thumbnail_url,
			is_published = :is_published, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id AND subsector_id = :subsector_id
	`
	return affected(r.db.NamedExecContext(ctx, query, img))
}

func (r *repository) DeleteSubsectorImage(ctx context.Context, subsectorID, id uuid.UUID) (*SubsectorImage, error) {
	var img SubsectorImage
	err := r.db.GetContext(ctx, &img, `DELETE FROM subsector_images WHERE id = $1 AND subsector_id = $2 RETURNING `+subsectorImageColumns, id, subsectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repository) SetPublished(ctx context.Context, subsectorID, id uuid.UUID, published bool) (bool, error) {
	return affected(r.db.ExecContext(ctx,
		`UPDATE subsector_images SET is_published = $3, updated_at = NOW() WHERE id = $1 AND subsector_id = $2`,
		id, subsectorID, published))
}

func (r *repository) NextSubsectorOrderIndex(ctx context.Context, subsectorID uuid.UUID) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM subsector_images WHERE subsector_id = $1`, subsectorID)
	return next, err
}
