package banner

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cresol/hub-api/internal/pkg/database"
)

// Repository defines banner data access interface
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]*Banner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Banner, error)
	Create(ctx context.Context, b *Banner) error
	Update(ctx context.Context, b *Banner) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (*Banner, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	NextOrderIndex(ctx context.Context) (int, error)
	Reorder(ctx context.Context, ids []uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates banner repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `id, title, image_url, file_path, link, is_active, order_index, created_at, updated_at`

func (r *repository) List(ctx context.Context, activeOnly bool) ([]*Banner, error) {
	query := `SELECT ` + columns + ` FROM banners`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY order_index, created_at DESC`

	banners := []*Banner{}
	err := r.db.SelectContext(ctx, &banners, query)
	return banners, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Banner, error) {
	var b Banner
	err := r.db.GetContext(ctx, &b, `SELECT `+columns+` FROM banners WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Create(ctx context.Context, b *Banner) error {
	query := `
		INSERT INTO banners (id, title, image_url, file_path, link, is_active, order_index, created_at, updated_at)
		VALUES (:id, :title, :image_url, :file_path, :link, :is_active, :order_index, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, b)
	return err
}

func (r *repository) Update(ctx context.Context, b *Banner) (bool, error) {
	query := `
		UPDATE banners SET
			title = :title, image_url = :image_url, file_path = :file_path, link = :link,
			is_active = :is_active, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, b)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*Banner, error) {
	var b Banner
	err := r.db.GetContext(ctx, &b, `DELETE FROM banners WHERE id = $1 RETURNING `+columns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE banners SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM banners`)
	return next, err
}

func (r *repository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := `
		UPDATE banners b SET order_index = v.pos, updated_at = NOW()
		FROM unnest($1::uuid[]) WITH ORDINALITY AS v(id, pos)
		WHERE b.id = v.id
	`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, pq.Array(strIDs))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if int(n) != len(ids) {
			return ErrReorderIDs
		}
		return nil
	})
}
