package sector

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

type fakeRepo struct {
	sectors    map[uuid.UUID]*Sector
	subsectors map[uuid.UUID]*Subsector
	sectorAdm  map[[2]uuid.UUID]bool
	subAdm     map[[2]uuid.UUID]bool
	files      []StoredFile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sectors:    map[uuid.UUID]*Sector{},
		subsectors: map[uuid.UUID]*Subsector{},
		sectorAdm:  map[[2]uuid.UUID]bool{},
		subAdm:     map[[2]uuid.UUID]bool{},
	}
}

func (f *fakeRepo) ListSectors(_ context.Context, managerID uuid.UUID) ([]*Sector, error) {
	var out []*Sector
	for _, s := range f.sectors {
		if managerID == uuid.Nil || f.sectorAdm[[2]uuid.UUID{s.ID, managerID}] {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSector(_ context.Context, id uuid.UUID) (*Sector, error) {
	s, ok := f.sectors[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) CreateSector(_ context.Context, s *Sector) error {
	f.sectors[s.ID] = s
	return nil
}

func (f *fakeRepo) UpdateSector(_ context.Context, s *Sector) error {
	f.sectors[s.ID] = s
	return nil
}

func (f *fakeRepo) DeleteSector(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sectors[id]; !ok {
		return ErrSectorNotFound
	}
	delete(f.sectors, id)
	for sid, sub := range f.subsectors {
		if sub.SectorID == id {
			delete(f.subsectors, sid)
		}
	}
	return nil
}

func (f *fakeRepo) ListSubsectors(_ context.Context, sectorIDs []uuid.UUID) ([]*Subsector, error) {
	var out []*Subsector
	for _, sub := range f.subsectors {
		for _, id := range sectorIDs {
			if sub.SectorID == id {
				out = append(out, sub)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSubsector(_ context.Context, id uuid.UUID) (*Subsector, error) {
	s, ok := f.subsectors[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) CreateSubsector(_ context.Context, s *Subsector) error {
	f.subsectors[s.ID] = s
	return nil
}

func (f *fakeRepo) UpdateSubsector(_ context.Context, s *Subsector) error {
	f.subsectors[s.ID] = s
	return nil
}

func (f *fakeRepo) DeleteSubsector(_ context.Context, id uuid.UUID) error {
	delete(f.subsectors, id)
	return nil
}

func (f *fakeRepo) StoredFiles(context.Context, uuid.UUID, uuid.UUID) ([]StoredFile, error) {
	return f.files, nil
}

func (f *fakeRepo) ListSectorAdmins(context.Context, uuid.UUID) ([]*ScopeAdmin, error) {
	return nil, nil
}

func (f *fakeRepo) AddSectorAdmin(_ context.Context, sectorID, userID uuid.UUID) error {
	f.sectorAdm[[2]uuid.UUID{sectorID, userID}] = true
	return nil
}

func (f *fakeRepo) RemoveSectorAdmin(_ context.Context, sectorID, userID uuid.UUID) error {
	key := [2]uuid.UUID{sectorID, userID}
	if !f.sectorAdm[key] {
		return ErrAdminNotFound
	}
	delete(f.sectorAdm, key)
	return nil
}

func (f *fakeRepo) ListSubsectorAdmins(context.Context, uuid.UUID) ([]*ScopeAdmin, error) {
	return nil, nil
}

func (f *fakeRepo) AddSubsectorAdmin(_ context.Context, subsectorID, userID uuid.UUID) error {
	f.subAdm[[2]uuid.UUID{subsectorID, userID}] = true
	return nil
}

func (f *fakeRepo) RemoveSubsectorAdmin(_ context.Context, subsectorID, userID uuid.UUID) error {
	delete(f.subAdm, [2]uuid.UUID{subsectorID, userID})
	return nil
}

func (f *fakeRepo) IsSectorAdmin(_ context.Context, userID, sectorID uuid.UUID) (bool, error) {
	return f.sectorAdm[[2]uuid.UUID{sectorID, userID}], nil
}

func (f *fakeRepo) IsSubsectorAdmin(_ context.Context, userID, subsectorID uuid.UUID) (bool, error) {
	return f.subAdm[[2]uuid.UUID{subsectorID, userID}], nil
}

func (f *fakeRepo) SectorOfSubsector(_ context.Context, subsectorID uuid.UUID) (uuid.UUID, error) {
	if s, ok := f.subsectors[subsectorID]; ok {
		return s.SectorID, nil
	}
	return uuid.Nil, nil
}

type failingStore struct {
	removed []string
}

func (s *failingStore) Upload(context.Context, string, string, io.Reader, string) error { return nil }

func (s *failingStore) Remove(_ context.Context, bucket string, keys ...string) error {
	s.removed = append(s.removed, keys...)
	return errors.New("storage unavailable")
}

func (s *failingStore) PublicURL(bucket, key string) string {
	return "https://files.example.com/" + bucket + "/" + key
}

type recordingAudit struct{ entries []audit.Entry }

func (r *recordingAudit) Record(_ context.Context, e audit.Entry) { r.entries = append(r.entries, e) }

func newTestService(repo *fakeRepo, store storage.ObjectStore) (*Service, *recordingAudit, *storage.MemoryQueue) {
	rec := &recordingAudit{}
	queue := storage.NewMemoryQueue()
	cleaner := storage.NewCleaner(store, queue)
	return NewService(repo, authz.NewScopes(repo), cleaner, rec, realtime.Nop{}), rec, queue
}

func seedSector(repo *fakeRepo, name string) *Sector {
	s := &Sector{ID: uuid.New(), Name: name}
	repo.sectors[s.ID] = s
	return s
}

func TestDeleteSectorRemovesRowEvenWhenStorageFails(t *testing.T) {
	repo := newFakeRepo()
	sec := seedSector(repo, "Crédito")
	path := "sector/2026/01/clip.mp4"
	thumb := "https://files.example.com/images/sector/2026/01/thumb.jpg"
	repo.files = []StoredFile{
		{Bucket: storage.BucketVideos, Path: &path},
		{Bucket: storage.BucketImages, URL: &thumb},
	}
	store := &failingStore{}
	svc, rec, queue := newTestService(repo, store)

	require.NoError(t, svc.DeleteSector(context.Background(), sec.ID))

	assert.NotContains(t, repo.sectors, sec.ID)
	assert.ElementsMatch(t, []string{path, "sector/2026/01/thumb.jpg"}, store.removed)
	n, _ := queue.Len(context.Background())
	assert.Equal(t, int64(2), n)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionSectorDeleted, rec.entries[0].Action)
}

func TestDeleteMissingSector(t *testing.T) {
	svc, _, _ := newTestService(newFakeRepo(), &failingStore{})
	err := svc.DeleteSector(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSectorNotFound)
}

func TestCreateSubsectorScope(t *testing.T) {
	repo := newFakeRepo()
	own := seedSector(repo, "Crédito")
	other := seedSector(repo, "Seguros")
	adminID := uuid.New()
	repo.sectorAdm[[2]uuid.UUID{own.ID, adminID}] = true
	svc, _, _ := newTestService(repo, &failingStore{})
	caller := middleware.Identity{UserID: adminID, Role: authz.RoleSectorAdmin}

	sub, err := svc.CreateSubsector(context.Background(), caller, &SubsectorRequest{SectorID: own.ID, Name: "Rural"})
	require.NoError(t, err)
	assert.Equal(t, own.ID, sub.SectorID)

	_, err = svc.CreateSubsector(context.Background(), caller, &SubsectorRequest{SectorID: other.ID, Name: "Auto"})
	assert.ErrorIs(t, err, ErrSectorOutOfScope)

	_, err = svc.CreateSubsector(context.Background(), caller, &SubsectorRequest{SectorID: uuid.New(), Name: "Auto"})
	assert.ErrorIs(t, err, ErrSectorNotFound)
}

func TestListSectorsManagedOnly(t *testing.T) {
	repo := newFakeRepo()
	own := seedSector(repo, "Crédito")
	seedSector(repo, "Seguros")
	adminID := uuid.New()
	repo.sectorAdm[[2]uuid.UUID{own.ID, adminID}] = true
	svc, _, _ := newTestService(repo, &failingStore{})

	sectors, err := svc.ListSectors(context.Background(), middleware.Identity{UserID: adminID, Role: authz.RoleSectorAdmin}, true)
	require.NoError(t, err)
	require.Len(t, sectors, 1)
	assert.Equal(t, own.ID, sectors[0].ID)

	sectors, err = svc.ListSectors(context.Background(), middleware.Identity{UserID: uuid.New(), Role: authz.RoleAdmin}, true)
	require.NoError(t, err)
	assert.Len(t, sectors, 2)
}

func serve(h http.Handler, method, path, body, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: uuid.New(), Role: role}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAdminRoutesRoleGate(t *testing.T) {
	repo := newFakeRepo()
	sec := seedSector(repo, "Crédito")
	svc, _, _ := newTestService(repo, &failingStore{})
	router := NewHandler(svc).AdminRoutes()

	w := serve(router, http.MethodPost, "/", `{"name":"Marketing"}`, authz.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodPost, "/", `{"name":"Marketing"}`, authz.RoleAdmin)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, http.MethodPost, "/", `{"name":""}`, authz.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPut, "/"+sec.ID.String(), `{"name":"Crédito Rural"}`, authz.RoleSectorAdmin)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, http.MethodPut, "/"+sec.ID.String(), `{"name":"Crédito Rural"}`, authz.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
	w = serve(router, http.MethodPut, "/"+sec.ID.String(), `{"name":"Crédito Rural"}`, authz.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Crédito Rural", repo.sectors[sec.ID].Name)

	w = serve(router, http.MethodGet, "/"+sec.ID.String()+"/admins", "", authz.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
