package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cresol/hub-api/internal/pkg/database"
)

// Repository defines scoped content data access. Every method is bound to
// the parent (sector or subsector) the repository was created for.
type Repository interface {
	ParentExists(ctx context.Context, parentID uuid.UUID) (bool, error)

	ListNews(ctx context.Context, parentID uuid.UUID, drafts bool) ([]*News, error)
	GetNews(ctx context.Context, parentID, id uuid.UUID) (*News, error)
	CreateNews(ctx context.Context, n *News) error
	UpdateNews(ctx context.Context, n *News) (bool, error)
	DeleteNews(ctx context.Context, parentID, id uuid.UUID) (*News, error)

	ListEvents(ctx context.Context, parentID uuid.UUID, drafts bool) ([]*Event, error)
	GetEvent(ctx context.Context, parentID, id uuid.UUID) (*Event, error)
	CreateEvent(ctx context.Context, e *Event) error
	UpdateEvent(ctx context.Context, e *Event) (bool, error)
	DeleteEvent(ctx context.Context, parentID, id uuid.UUID) (*Event, error)

	ListVideos(ctx context.Context, parentID uuid.UUID, drafts bool) ([]*Video, error)
	GetVideo(ctx context.Context, parentID, id uuid.UUID) (*Video, error)
	CreateVideo(ctx context.Context, v *Video) error
	UpdateVideo(ctx context.Context, v *Video) (bool, error)
	DeleteVideo(ctx context.Context, parentID, id uuid.UUID) (*Video, error)

	// SetFeatured marks id as the only featured row of its parent, or
	// clears its flag. found is false when id is not under parentID.
	SetFeatured(ctx context.Context, k Kind, parentID, id uuid.UUID, featured bool) (found bool, err error)
	SetPublished(ctx context.Context, k Kind, parentID, id uuid.UUID, published bool) (found bool, err error)
	NextOrderIndex(ctx context.Context, parentID uuid.UUID) (int, error)
	// Reorder writes order_index = position+1 for the videos in ids.
	Reorder(ctx context.Context, parentID uuid.UUID, ids []uuid.UUID) error
}

var columns = map[Kind][]string{
	KindNews:   {"title", "summary", "content", "image_url"},
	KindEvents: {"title", "description", "location", "start_date", "end_date"},
	KindVideos: {"title", "description", "video_url", "thumbnail_url", "file_path", "upload_type", "order_index"},
}

var ordering = map[Kind]string{
	KindNews:   "created_at DESC",
	KindEvents: "start_date ASC",
	KindVideos: "order_index ASC, created_at DESC",
}

var flagColumns = []string{"is_featured", "is_published", "created_by", "created_at", "updated_at"}

type repository struct {
	db    *sqlx.DB
	scope Scope
}

// NewRepository creates the content repository of scope.
func NewRepository(db *sqlx.DB, scope Scope) Repository {
	return &repository{db: db, scope: scope}
}

func (r *repository) selectList(k Kind) string {
	cols := []string{"id", r.scope.ParentColumn + " AS parent_id"}
	cols = append(cols, flagColumns...)
	cols = append(cols, columns[k]...)
	return strings.Join(cols, ", ")
}

func (r *repository) ParentExists(ctx context.Context, parentID uuid.UUID) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, r.scope.ParentTable)
	err := r.db.GetContext(ctx, &exists, query, parentID)
	return exists, err
}

func (r *repository) list(ctx context.Context, k Kind, dest interface{}, parentID uuid.UUID, drafts bool) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, r.selectList(k), r.scope.Table(k), r.scope.ParentColumn)
	if !drafts {
		query += ` AND is_published`
	}
	query += ` ORDER BY ` + ordering[k]
	return r.db.SelectContext(ctx, dest, query, parentID)
}

func (r *repository) get(ctx context.Context, k Kind, dest interface{}, parentID, id uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND %s = $2`, r.selectList(k), r.scope.Table(k), r.scope.ParentColumn)
	err := r.db.GetContext(ctx, dest, query, id, parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *repository) remove(ctx context.Context, k Kind, dest interface{}, parentID, id uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND %s = $2 RETURNING %s`, r.scope.Table(k), r.scope.ParentColumn, r.selectList(k))
	err := r.db.GetContext(ctx, dest, query, id, parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// lockParent serializes featured writes of one parent.
func (r *repository) lockParent(ctx context.Context, tx *sqlx.Tx, parentID uuid.UUID) error {
	var id uuid.UUID
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.scope.ParentTable)
	err := tx.GetContext(ctx, &id, query, parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return r.scope.notFound
	}
	return err
}

func (r *repository) unfeatureSiblings(ctx context.Context, tx *sqlx.Tx, k Kind, parentID, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET is_featured = false, updated_at = NOW()
		WHERE %s = $1 AND id <> $2 AND is_featured`, r.scope.Table(k), r.scope.ParentColumn)
	_, err := tx.ExecContext(ctx, query, parentID, id)
	return err
}

func (r *repository) insert(ctx context.Context, k Kind, row interface{}, b *Base) error {
	cols := []string{"id", r.scope.ParentColumn}
	vals := []string{":id", ":parent_id"}
	for _, c := range append(append([]string{}, flagColumns...), columns[k]...) {
		cols = append(cols, c)
		vals = append(vals, ":"+c)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, r.scope.Table(k), strings.Join(cols, ", "), strings.Join(vals, ", "))

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if b.IsFeatured {
			if err := r.lockParent(ctx, tx, b.ParentID); err != nil {
				return err
			}
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			if database.IsForeignKeyViolation(err) {
				return r.scope.notFound
			}
			return err
		}
		if b.IsFeatured {
			return r.unfeatureSiblings(ctx, tx, k, b.ParentID, b.ID)
		}
		return nil
	})
}

func (r *repository) update(ctx context.Context, k Kind, row interface{}, b *Base) (bool, error) {
	sets := []string{"is_featured = :is_featured", "is_published = :is_published", "updated_at = :updated_at"}
	for _, c := range columns[k] {
		sets = append(sets, c+" = :"+c)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = :id AND %s = :parent_id`, r.scope.Table(k), strings.Join(sets, ", "), r.scope.ParentColumn)

	found := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if b.IsFeatured {
			if err := r.lockParent(ctx, tx, b.ParentID); err != nil {
				return err
			}
		}
		res, err := tx.NamedExecContext(ctx, query, row)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		found = n > 0
		if found && b.IsFeatured {
			return r.unfeatureSiblings(ctx, tx, k, b.ParentID, b.ID)
		}
		return nil
	})
	return found, err
}

func (r *repository) ListNews(ctx context.Context, parentID uuid.UUID, drafts bool) ([]*News, error) {
	items := []*News{}
	err := r.list(ctx, KindNews, &items, parentID, drafts)
	return items, err
}

func (r *repository) GetNews(ctx context.Context, parentID, id uuid.UUID) (*News, error) {
	var n News
	found, err := r.get(ctx, KindNews, &n, parentID, id)
	if !found {
		return nil, err
	}
	return &n, nil
}

func (r *repository) CreateNews(ctx context.Context, n *News) error {
	return r.insert(ctx, KindNews, n, &n.Base)
}

func (r *repository) UpdateNews(ctx context.Context, n *News) (bool, error) {
	return r.update(ctx, KindNews, n, &n.Base)
}

func (r *repository) DeleteNews(ctx context.Context, parentID, id uuid.UUID) (*News, error) {
	var n News
	found, err := r.remove(ctx, KindNews, &n, parentID, id)
	if !found {
		return nil, err
	}
	return &n, nil
}

func (r *repository) ListEvents(ctx context.Context, parentID uuid.UUID, drafts bool) ([]*Event, error) {
	items := []*Event{}
	err := r.list(ctx, KindEvents, &items, parentID, drafts)
	return items, err
}

func (r *repository) GetEvent(ctx context.Context, parentID, id uuid.UUID) (*Event, error) {
	var e Event
	found, err := r.get(ctx, KindEvents, &e, parentID, id)
	if !found {
		return nil, err
	}
	return &e, nil
}

func (r *repository) CreateEvent(ctx context.Context, e *Event) error {
	return r.insert(ctx, KindEvents, e, &e.Base)
}

func (r *repository) UpdateEvent(ctx context.Context, e *Event) (bool, error) {
	return r.update(ctx, KindEvents, e, &e.Base)
}

func (r *repository) DeleteEvent(ctx context.Context, parentID, id uuid.UUID) (*Event, error) {
	var e Event
	found, err := r.remove(ctx, KindEvents, &e, parentID, id)
	if !found {
		return nil, err
	}
	return &e, nil
}

func (r *repository) ListVideos(ctx context.Context, parentID uuid.UUID, drafts bool) ([]*Video, error) {
	items := []*Video{}
	err := r.list(ctx, KindVideos, &items, parentID, drafts)
	return items, err
}

func (r *repository) GetVideo(ctx context.Context, parentID, id uuid.UUID) (*Video, error) {
	var v Video
	found, err := r.get(ctx, KindVideos, &v, parentID, id)
	if !found {
		return nil, err
	}
	return &v, nil
}

func (r *repository) CreateVideo(ctx context.Context, v *Video) error {
	return r.insert(ctx, KindVideos, v, &v.Base)
}

func (r *repository) UpdateVideo(ctx context.Context, v *Video) (bool, error) {
	return r.update(ctx, KindVideos, v, &v.Base)
}

func (r *repository) DeleteVideo(ctx context.Context, parentID, id uuid.UUID) (*Video, error) {
	var v Video
	found, err := r.remove(ctx, KindVideos, &v, parentID, id)
	if !found {
		return nil, err
	}
	return &v, nil
}

func (r *repository) SetFeatured(ctx context.Context, k Kind, parentID, id uuid.UUID, featured bool) (bool, error) {
	table := r.scope.Table(k)
	found := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.lockParent(ctx, tx, parentID); err != nil {
			return err
		}
		exists := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND %s = $2)`, table, r.scope.ParentColumn)
		if err := tx.GetContext(ctx, &found, exists, id, parentID); err != nil || !found {
			return err
		}

		var query string
		if featured {
			// One statement flips the target on and every sibling off.
			query = fmt.Sprintf(`UPDATE %s SET is_featured = (id = $2), updated_at = NOW()
				WHERE %s = $1 AND (is_featured OR id = $2)`, table, r.scope.ParentColumn)
		} else {
			query = fmt.Sprintf(`UPDATE %s SET is_featured = false, updated_at = NOW()
				WHERE %s = $1 AND id = $2`, table, r.scope.ParentColumn)
		}
		_, err := tx.ExecContext(ctx, query, parentID, id)
		return err
	})
	return found, err
}

func (r *repository) SetPublished(ctx context.Context, k Kind, parentID, id uuid.UUID, published bool) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET is_published = $3, updated_at = NOW() WHERE id = $2 AND %s = $1`, r.scope.Table(k), r.scope.ParentColumn)
	res, err := r.db.ExecContext(ctx, query, parentID, id, published)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) NextOrderIndex(ctx context.Context, parentID uuid.UUID) (int, error) {
	var next int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(order_index), 0) + 1 FROM %s WHERE %s = $1`, r.scope.Table(KindVideos), r.scope.ParentColumn)
	err := r.db.GetContext(ctx, &next, query, parentID)
	return next, err
}

func (r *repository) Reorder(ctx context.Context, parentID uuid.UUID, ids []uuid.UUID) error {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := fmt.Sprintf(`UPDATE %s t SET order_index = v.pos, updated_at = NOW()
		FROM unnest($2::uuid[]) WITH ORDINALITY AS v(id, pos)
		WHERE t.id = v.id AND t.%s = $1`, r.scope.Table(KindVideos), r.scope.ParentColumn)

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, parentID, pq.Array(strIDs))
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
