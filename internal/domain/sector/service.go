package sector

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

// Service handles sector business logic
type Service struct {
	repo      Repository
	scopes    *authz.Scopes
	cleaner   *storage.Cleaner
	audit     audit.Recorder
	publisher realtime.Publisher
}

// NewService creates sector service
func NewService(repo Repository, scopes *authz.Scopes, cleaner *storage.Cleaner, recorder audit.Recorder, publisher realtime.Publisher) *Service {
	return &Service{
		repo:      repo,
		scopes:    scopes,
		cleaner:   cleaner,
		audit:     recorder,
		publisher: publisher,
	}
}

// ListSectors returns sectors with their subsectors. With managedOnly set,
// non-admin callers only see the sectors they administer.
func (s *Service) ListSectors(ctx context.Context, caller middleware.Identity, managedOnly bool) ([]*Sector, error) {
	managerID := uuid.Nil
	if managedOnly && caller.Role != authz.RoleAdmin {
		managerID = caller.UserID
	}

	sectors, err := s.repo.ListSectors(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if err := s.attachSubsectors(ctx, sectors); err != nil {
		return nil, err
	}
	return sectors, nil
}

func (s *Service) attachSubsectors(ctx context.Context, sectors []*Sector) error {
	ids := make([]uuid.UUID, len(sectors))
	byID := make(map[uuid.UUID]*Sector, len(sectors))
	for i, sec := range sectors {
		ids[i] = sec.ID
		byID[sec.ID] = sec
		sec.Subsectors = []*Subsector{}
	}

	subsectors, err := s.repo.ListSubsectors(ctx, ids)
	if err != nil {
		return err
	}
	for _, sub := range subsectors {
		if parent, ok := byID[sub.SectorID]; ok {
			parent.Subsectors = append(parent.Subsectors, sub)
		}
	}
	return nil
}

// GetSector returns one sector with its subsectors.
func (s *Service) GetSector(ctx context.Context, id uuid.UUID) (*Sector, error) {
	sec, err := s.repo.GetSector(ctx, id)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, ErrSectorNotFound
	}
	if err := s.attachSubsectors(ctx, []*Sector{sec}); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *Service) CreateSector(ctx context.Context, req *SectorRequest) (*Sector, error) {
	now := time.Now()
	sec := &Sector{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateSector(ctx, sec); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.Insert, "sectors", sec, nil)
	return sec, nil
}

func (s *Service) UpdateSector(ctx context.Context, id uuid.UUID, req *SectorRequest) (*Sector, error) {
	sec, err := s.repo.GetSector(ctx, id)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, ErrSectorNotFound
	}
	old := *sec

	sec.Name = req.Name
	sec.Description = req.Description
	sec.UpdatedAt = time.Now()
	if err := s.repo.UpdateSector(ctx, sec); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.Update, "sectors", sec, &old)
	return sec, nil
}

// DeleteSector removes the sector and, through the cascade, its subsectors
// and content. Stored files of that content are removed afterwards.
func (s *Service) DeleteSector(ctx context.Context, id uuid.UUID) error {
	sec, err := s.repo.GetSector(ctx, id)
	if err != nil {
		return err
	}
	if sec == nil {
		return ErrSectorNotFound
	}

	files, err := s.repo.StoredFiles(ctx, id, uuid.Nil)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSector(ctx, id); err != nil {
		return err
	}

	s.removeFiles(ctx, files)
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionSectorDeleted,
		EntityType: "sector",
		EntityID:   id,
		OldValue:   sec,
	})
	s.publish(ctx, realtime.Delete, "sectors", nil, sec)
	return nil
}

func (s *Service) ListSubsectors(ctx context.Context, sectorID uuid.UUID) ([]*Subsector, error) {
	if _, err := s.GetSector(ctx, sectorID); err != nil {
		return nil, err
	}
	return s.repo.ListSubsectors(ctx, []uuid.UUID{sectorID})
}

func (s *Service) GetSubsector(ctx context.Context, id uuid.UUID) (*Subsector, error) {
	sub, err := s.repo.GetSubsector(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubsectorNotFound
	}
	return sub, nil
}

// CreateSubsector requires the caller to manage the target sector.
func (s *Service) CreateSubsector(ctx context.Context, caller middleware.Identity, req *SubsectorRequest) (*Subsector, error) {
	if err := s.checkSector(ctx, caller, req.SectorID); err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &Subsector{
		ID:          uuid.New(),
		SectorID:    req.SectorID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateSubsector(ctx, sub); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.Insert, "subsectors", sub, nil)
	return sub, nil
}

// UpdateSubsector may move the subsector to another sector the caller
// manages.
func (s *Service) UpdateSubsector(ctx context.Context, caller middleware.Identity, id uuid.UUID, req *SubsectorRequest) (*Subsector, error) {
	sub, err := s.GetSubsector(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SectorID != sub.SectorID {
		if err := s.checkSector(ctx, caller, req.SectorID); err != nil {
			return nil, err
		}
	}
	old := *sub

	sub.SectorID = req.SectorID
	sub.Name = req.Name
	sub.Description = req.Description
	sub.UpdatedAt = time.Now()
	if err := s.repo.UpdateSubsector(ctx, sub); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.Update, "subsectors", sub, &old)
	return sub, nil
}

func (s *Service) DeleteSubsector(ctx context.Context, id uuid.UUID) error {
	sub, err := s.GetSubsector(ctx, id)
	if err != nil {
		return err
	}

	files, err := s.repo.StoredFiles(ctx, uuid.Nil, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSubsector(ctx, id); err != nil {
		return err
	}

	s.removeFiles(ctx, files)
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionSubsectorDeleted,
		EntityType: "subsector",
		EntityID:   id,
		OldValue:   sub,
	})
	s.publish(ctx, realtime.Delete, "subsectors", nil, sub)
	return nil
}

func (s *Service) checkSector(ctx context.Context, caller middleware.Identity, sectorID uuid.UUID) error {
	sec, err := s.repo.GetSector(ctx, sectorID)
	if err != nil {
		return err
	}
	if sec == nil {
		return ErrSectorNotFound
	}
	ok, err := s.scopes.CanManageSector(ctx, caller, sectorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSectorOutOfScope
	}
	return nil
}

func (s *Service) ListSectorAdmins(ctx context.Context, sectorID uuid.UUID) ([]*ScopeAdmin, error) {
	if _, err := s.GetSector(ctx, sectorID); err != nil {
		return nil, err
	}
	return s.repo.ListSectorAdmins(ctx, sectorID)
}

func (s *Service) AssignSectorAdmin(ctx context.Context, sectorID, userID uuid.UUID) error {
	if _, err := s.GetSector(ctx, sectorID); err != nil {
		return err
	}
	if err := s.repo.AddSectorAdmin(ctx, sectorID, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionAdminAssigned,
		EntityType: "sector",
		EntityID:   sectorID,
		NewValue:   map[string]uuid.UUID{"user_id": userID},
	})
	return nil
}

func (s *Service) RevokeSectorAdmin(ctx context.Context, sectorID, userID uuid.UUID) error {
	if err := s.repo.RemoveSectorAdmin(ctx, sectorID, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionAdminRevoked,
		EntityType: "sector",
		EntityID:   sectorID,
		OldValue:   map[string]uuid.UUID{"user_id": userID},
	})
	return nil
}

func (s *Service) ListSubsectorAdmins(ctx context.Context, subsectorID uuid.UUID) ([]*ScopeAdmin, error) {
	if _, err := s.GetSubsector(ctx, subsectorID); err != nil {
		return nil, err
	}
	return s.repo.ListSubsectorAdmins(ctx, subsectorID)
}

func (s *Service) AssignSubsectorAdmin(ctx context.Context, subsectorID, userID uuid.UUID) error {
	if _, err := s.GetSubsector(ctx, subsectorID); err != nil {
		return err
	}
	if err := s.repo.AddSubsectorAdmin(ctx, subsectorID, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionAdminAssigned,
		EntityType: "subsector",
		EntityID:   subsectorID,
		NewValue:   map[string]uuid.UUID{"user_id": userID},
	})
	return nil
}

func (s *Service) RevokeSubsectorAdmin(ctx context.Context, subsectorID, userID uuid.UUID) error {
	if err := s.repo.RemoveSubsectorAdmin(ctx, subsectorID, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionAdminRevoked,
		EntityType: "subsector",
		EntityID:   subsectorID,
		OldValue:   map[string]uuid.UUID{"user_id": userID},
	})
	return nil
}

func (s *Service) removeFiles(ctx context.Context, files []StoredFile) {
	if s.cleaner == nil || len(files) == 0 {
		return
	}
	var objs []storage.Object
	for _, f := range files {
		var paths, urls []string
		if f.Path != nil {
			paths = append(paths, *f.Path)
		}
		if f.URL != nil {
			urls = append(urls, *f.URL)
		}
		objs = append(objs, storage.ObjectsFor(s.cleaner.Store(), f.Bucket, paths, urls)...)
	}
	s.cleaner.Remove(ctx, objs...)
}

func (s *Service) publish(ctx context.Context, kind realtime.ChangeType, table string, record, old interface{}) {
	s.publisher.Publish(ctx, realtime.Change{Type: kind, Table: table, Record: record, OldRecord: old})
}
