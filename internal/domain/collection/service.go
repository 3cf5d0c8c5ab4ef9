package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/realtime"
)

// Service handles collection business logic
type Service struct {
	repo      Repository
	cache     *cache.Cache
	publisher realtime.Publisher
}

// NewService creates collection service
func NewService(repo Repository, c *cache.Cache, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, cache: c, publisher: publisher}
}

// List returns one page of collections. Non-managers only see active ones.
func (s *Service) List(ctx context.Context, caller middleware.Identity, f Filter) (*Page, error) {
	if !authz.IsManager(caller.Role, authz.Collections) {
		f.Status = StatusActive
	}
	f.normalize()

	variant := fmt.Sprintf("p=%d:l=%d:q=%s:t=%s:s=%s:o=%s:%s", f.Page, f.Limit, f.Search, f.Type, f.Status, f.SortBy, f.SortOrder)
	return cache.Fetch(ctx, s.cache, table, variant, func(ctx context.Context) (*Page, error) {
		collections, total, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return &Page{Collections: collections, Total: total}, nil
	})
}

// Get returns the collection with its items resolved.
func (s *Service) Get(ctx context.Context, caller middleware.Identity, id uuid.UUID) (*Detail, error) {
	c, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Collection: c, Items: items}, nil
}

// ListItems returns the resolved items of a collection.
func (s *Service) ListItems(ctx context.Context, caller middleware.Identity, id uuid.UUID) ([]*Item, error) {
	if _, err := s.visible(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.items(ctx, caller, id)
}

func (s *Service) visible(ctx context.Context, caller middleware.Identity, id uuid.UUID) (*Collection, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || (!c.IsActive && !authz.IsManager(caller.Role, authz.Collections)) {
		return nil, ErrCollectionNotFound
	}
	return c, nil
}

// items loads the collection items and attaches their image or video rows.
// Items whose target is gone, or inactive for non-managers, are skipped.
func (s *Service) items(ctx context.Context, caller middleware.Identity, id uuid.UUID) ([]*Item, error) {
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}

	var imageIDs, videoIDs []uuid.UUID
	for _, it := range items {
		if it.ItemType == ItemVideo {
			videoIDs = append(videoIDs, it.ItemID)
		} else {
			imageIDs = append(imageIDs, it.ItemID)
		}
	}
	images, err := s.repo.ImagesByID(ctx, imageIDs)
	if err != nil {
		return nil, err
	}
	videos, err := s.repo.VideosByID(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	manager := authz.IsManager(caller.Role, authz.Collections)
	resolved := make([]*Item, 0, len(items))
	for _, it := range items {
		switch it.ItemType {
		case ItemImage:
			img, ok := images[it.ItemID]
			if !ok || (!img.IsActive && !manager) {
				continue
			}
			it.Image = img
		case ItemVideo:
			v, ok := videos[it.ItemID]
			if !ok || (!v.IsActive && !manager) {
				continue
			}
			it.Video = v
		}
		resolved = append(resolved, it)
	}
	return resolved, nil
}

func (s *Service) Create(ctx context.Context, caller middleware.Identity, req *CollectionRequest) (*Collection, error) {
	now := time.Now()
	c := &Collection{
		ID:        uuid.New(),
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if caller.UserID != uuid.Nil {
		uid := caller.UserID
		c.CreatedBy = &uid
	}
	apply(c, req)

	if req.OrderIndex != nil {
		c.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return nil, err
		}
		c.OrderIndex = next
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Insert, table, c, nil)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *CollectionRequest) (*Collection, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCollectionNotFound
	}
	old := *c

	apply(c, req)
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.OrderIndex != nil {
		c.OrderIndex = *req.OrderIndex
	}
	c.UpdatedAt = time.Now()

	ok, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCollectionNotFound
	}
	s.changed(ctx, realtime.Update, table, c, &old)
	return c, nil
}

func apply(c *Collection, req *CollectionRequest) {
	c.Name = req.Name
	c.Description = req.Description
	c.CoverImageURL = req.CoverImageURL
	c.Type = req.Type
	if c.Type == "" {
		c.Type = TypeMixed
	}
}

// Delete removes the collection and, through the foreign key, its items.
// The images and videos themselves stay.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCollectionNotFound
	}
	s.changed(ctx, realtime.Delete, table, nil, map[string]interface{}{"id": id})
	return nil
}

// AddItem appends an image or video. The target must exist, match the
// collection type and not be in the collection yet.
func (s *Service) AddItem(ctx context.Context, collectionID uuid.UUID, req *ItemRequest) (*Item, error) {
	c, err := s.repo.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCollectionNotFound
	}
	if !c.accepts(req.ItemType) {
		return nil, ErrItemTypeMismatch
	}

	exists, err := s.repo.ItemTargetExists(ctx, req.ItemType, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if req.ItemType == ItemVideo {
			return nil, ErrVideoNotFound
		}
		return nil, ErrImageNotFound
	}

	// The unique index still catches a concurrent insert of the same item.
	dup, err := s.repo.ItemExists(ctx, collectionID, req.ItemType, req.ItemID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateItem
	}

	item := &Item{
		ID:           uuid.New(),
		CollectionID: collectionID,
		ItemType:     req.ItemType,
		ItemID:       req.ItemID,
		CreatedAt:    time.Now(),
	}
	if req.OrderIndex != nil {
		item.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.NextItemOrderIndex(ctx, collectionID)
		if err != nil {
			return nil, err
		}
		item.OrderIndex = next
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.Insert, tableItems, item, nil)
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, collectionID, itemID uuid.UUID) error {
	ok, err := s.repo.RemoveItem(ctx, collectionID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	s.changed(ctx, realtime.Delete, tableItems, nil, map[string]interface{}{"id": itemID, "collection_id": collectionID})
	return nil
}

// ReorderItems assigns order_index = position+1 following ids.
func (s *Service) ReorderItems(ctx context.Context, collectionID uuid.UUID, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return ErrReorderIDs
		}
		seen[id] = true
	}
	c, err := s.repo.GetByID(ctx, collectionID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCollectionNotFound
	}
	if err := s.repo.ReorderItems(ctx, collectionID, ids); err != nil {
		return err
	}
	s.changed(ctx, realtime.Update, tableItems, map[string]interface{}{"collection_id": collectionID, "ids": ids}, nil)
	return nil
}

// changed invalidates the list cache, which embeds item counts, and
// publishes the change.
func (s *Service) changed(ctx context.Context, kind realtime.ChangeType, tbl string, record, old interface{}) {
	s.cache.Invalidate(ctx, table)
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: tbl, Record: record, OldRecord: old})
}
