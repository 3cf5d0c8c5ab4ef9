package video

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cresol/hub-api/internal/pkg/database"
)

// Repository defines dashboard video data access interface
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]*Video, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Video, error)
	// Create inserts v and, when collectionID is set, appends it to that
	// collection. Both writes share one transaction.
	Create(ctx context.Context, v *Video, collectionID *uuid.UUID) error
	Update(ctx context.Context, v *Video) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (*Video, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	NextOrderIndex(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates dashboard video repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `id, title, description, video_url, thumbnail_url, file_path, upload_type, is_active, order_index, created_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, activeOnly bool) ([]*Video, error) {
	query := `SELECT ` + columns + ` FROM dashboard_videos`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY order_index, created_at DESC`

	videos := []*Video{}
	err := r.db.SelectContext(ctx, &videos, query)
	return videos, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Video, error) {
	var v Video
	err := r.db.GetContext(ctx, &v, `SELECT `+columns+` FROM dashboard_videos WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) Create(ctx context.Context, v *Video, collectionID *uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO dashboard_videos (id, title, description, video_url, thumbnail_url, file_path, upload_type, is_active, order_index, created_by, created_at, updated_at)
			VALUES (:id, :title, :description, :video_url, :thumbnail_url, :file_path, :upload_type, :is_active, :order_index, :created_by, :created_at, :updated_at)
		`
		if _, err := tx.NamedExecContext(ctx, query, v); err != nil {
			return err
		}
		if collectionID == nil {
			return nil
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO collection_items (collection_id, item_type, item_id, order_index)
			SELECT $1, 'video', $2, COALESCE(MAX(order_index), 0) + 1
			FROM collection_items WHERE collection_id = $1
		`, *collectionID, v.ID)
		if database.IsForeignKeyViolation(err) {
			return ErrCollectionNotFound
		}
		return err
	})
}

func (r *repository) Update(ctx context.Context, v *Video) (bool, error) {
	query := `
		UPDATE dashboard_videos SET
			title = :title, description = :description, video_url = :video_url,
			thumbnail_url = :thumbnail_url, file_path = :file_path, upload_type = :upload_type,
			is_active = :is_active, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*Video, error) {
	var v Video
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &v, `DELETE FROM dashboard_videos WHERE id = $1 RETURNING `+columns, id); err != nil {
			return err
		}
		// collection_items.item_id is polymorphic and carries no foreign key.
		_, err := tx.ExecContext(ctx, `DELETE FROM collection_items WHERE item_type = 'video' AND item_id = $1`, id)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE dashboard_videos SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM dashboard_videos`)
	return next, err
}
