package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cresol/hub-api/internal/pkg/database"
)

// Repository defines collection data access interface
type Repository interface {
	List(ctx context.Context, f Filter) ([]*Collection, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	Create(ctx context.Context, c *Collection) error
	Update(ctx context.Context, c *Collection) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	NextOrderIndex(ctx context.Context) (int, error)

	ListItems(ctx context.Context, collectionID uuid.UUID) ([]*Item, error)
	ItemTargetExists(ctx context.Context, itemType string, itemID uuid.UUID) (bool, error)
	ItemExists(ctx context.Context, collectionID uuid.UUID, itemType string, itemID uuid.UUID) (bool, error)
	// AddItem appends item. A nil OrderIndex on the request is resolved by
	// the caller before the insert.
	AddItem(ctx context.Context, item *Item) error
	NextItemOrderIndex(ctx context.Context, collectionID uuid.UUID) (int, error)
	RemoveItem(ctx context.Context, collectionID, itemID uuid.UUID) (bool, error)
	ReorderItems(ctx context.Context, collectionID uuid.UUID, ids []uuid.UUID) error

	ImagesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ImageRef, error)
	VideosByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*VideoRef, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates collection repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `c.id, c.name, c.description, c.cover_image_url, c.type, c.is_active, c.order_index, c.created_by, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM collection_items ci WHERE ci.collection_id = c.id) AS item_count`

const itemColumns = `id, collection_id, item_type, item_id, order_index, created_at`

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Collection, int, error) {
	f.normalize()
	where := ` WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%' OR c.description ILIKE '%' || $1 || '%')
		AND ($2 = '' OR c.type = $2)
		AND ($3 = 'all' OR c.is_active = ($3 = 'active'))`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM collections c`+where, f.Search, f.Type, f.Status); err != nil {
		return nil, 0, err
	}

	// Sort column and direction come from whitelists in Filter.normalize.
	order := fmt.Sprintf(` ORDER BY c.%s %s, c.created_at DESC`, sortColumns[f.SortBy], f.SortOrder)
	query := `SELECT ` + selectColumns + ` FROM collections c` + where + order + ` LIMIT $4 OFFSET $5`

	collections := []*Collection{}
	if err := r.db.SelectContext(ctx, &collections, query, f.Search, f.Type, f.Status, f.Limit, f.Offset()); err != nil {
		return nil, 0, err
	}
	return collections, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Collection, error) {
	var c Collection
	err := r.db.GetContext(ctx, &c, `SELECT `+selectColumns+` FROM collections c WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Collection) error {
	query := `
		INSERT INTO collections (id, name, description, cover_image_url, type, is_active, order_index, created_by, created_at, updated_at)
		VALUES (:id, :name, :description, :cover_image_url, :type, :is_active, :order_index, :created_by, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, c)
	return err
}

func (r *repository) Update(ctx context.Context, c *Collection) (bool, error) {
	query := `
		UPDATE collections SET
			name = :name, description = :description, cover_image_url = :cover_image_url,
			type = :type, is_active = :is_active, order_index = :order_index, updated_at = :updated_at
		WHERE id = :id
	`
	return affected(r.db.NamedExecContext(ctx, query, c))
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id))
}

func (r *repository) NextOrderIndex(ctx context.Context) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM collections`)
	return next, err
}

func (r *repository) ListItems(ctx context.Context, collectionID uuid.UUID) ([]*Item, error) {
	items := []*Item{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM collection_items WHERE collection_id = $1 ORDER BY order_index, created_at`,
		collectionID)
	return items, err
}

func (r *repository) ItemTargetExists(ctx context.Context, itemType string, itemID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM gallery_images WHERE id = $1)`
	if itemType == ItemVideo {
		query = `SELECT EXISTS(SELECT 1 FROM dashboard_videos WHERE id = $1)`
	}
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, itemID)
	return exists, err
}

func (r *repository) ItemExists(ctx context.Context, collectionID uuid.UUID, itemType string, itemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM collection_items WHERE collection_id = $1 AND item_type = $2 AND item_id = $3)`,
		collectionID, itemType, itemID)
	return exists, err
}

func (r *repository) AddItem(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO collection_items (id, collection_id, item_type, item_id, order_index, created_at)
		VALUES (:id, :collection_id, :item_type, :item_id, :order_index, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, item)
	switch {
	case database.IsUniqueViolation(err):
		return ErrDuplicateItem
	case database.IsForeignKeyViolation(err):
		return ErrCollectionNotFound
	}
	return err
}

func (r *repository) NextItemOrderIndex(ctx context.Context, collectionID uuid.UUID) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM collection_items WHERE collection_id = $1`, collectionID)
	return next, err
}

func (r *repository) RemoveItem(ctx context.Context, collectionID, itemID uuid.UUID) (bool, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM collection_items WHERE id = $1 AND collection_id = $2`, itemID, collectionID))
}

func (r *repository) ReorderItems(ctx context.Context, collectionID uuid.UUID, ids []uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE collection_items ci SET order_index = o.pos
			FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, pos)
			WHERE ci.id = o.id AND ci.collection_id = $1
		`, collectionID, uuidStrings(ids))
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

func (r *repository) ImagesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ImageRef, error) {
	out := make(map[uuid.UUID]*ImageRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*ImageRef
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, title, image_url, thumbnail_url, is_active FROM gallery_images WHERE id = ANY($1::uuid[])`,
		uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	for _, img := range rows {
		out[img.ID] = img
	}
	return out, nil
}

func (r *repository) VideosByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*VideoRef, error) {
	out := make(map[uuid.UUID]*VideoRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*VideoRef
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, title, video_url, thumbnail_url, upload_type, is_active FROM dashboard_videos WHERE id = ANY($1::uuid[])`,
		uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	for _, v := range rows {
		out[v.ID] = v
	}
	return out, nil
}
