package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/realtime"
)

type fakeRepo struct {
	locations map[uuid.UUID]*WorkLocation
	positions map[uuid.UUID]*Position
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{locations: map[uuid.UUID]*WorkLocation{}, positions: map[uuid.UUID]*Position{}}
}

func (f *fakeRepo) ListWorkLocations(context.Context) ([]*WorkLocation, error) {
	out := []*WorkLocation{}
	for _, wl := range f.locations {
		out = append(out, wl)
	}
	return out, nil
}

func (f *fakeRepo) GetWorkLocation(_ context.Context, id uuid.UUID) (*WorkLocation, error) {
	wl, ok := f.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *wl
	return &cp, nil
}

func (f *fakeRepo) CreateWorkLocation(_ context.Context, wl *WorkLocation) error {
	cp := *wl
	f.locations[wl.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateWorkLocation(_ context.Context, wl *WorkLocation) (bool, error) {
	if _, ok := f.locations[wl.ID]; !ok {
		return false, nil
	}
	cp := *wl
	f.locations[wl.ID] = &cp
	return true, nil
}

func (f *fakeRepo) DeleteWorkLocation(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.locations[id]
	delete(f.locations, id)
	return ok, nil
}

func (f *fakeRepo) ListPositions(context.Context) ([]*Position, error) {
	out := []*Position{}
	for _, p := range f.positions {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) GetPosition(_ context.Context, id uuid.UUID) (*Position, error) {
	p, ok := f.positions[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) CreatePosition(_ context.Context, p *Position) error {
	cp := *p
	f.positions[p.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdatePosition(_ context.Context, p *Position) (bool, error) {
	if _, ok := f.positions[p.ID]; !ok {
		return false, nil
	}
	cp := *p
	f.positions[p.ID] = &cp
	return true, nil
}

func (f *fakeRepo) DeletePosition(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.positions[id]
	delete(f.positions, id)
	return ok, nil
}

func TestReferenceRoutes(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(NewService(repo, nil, realtime.Nop{}))

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		h.Routes(r)
		r.Route("/admin", h.AdminRoutes)
	})

	do := func(method, path, body, role string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: uuid.New(), Role: role}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/api/admin/positions", `{"name":"Analista"}`, authz.RoleUser))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/admin/positions", `{"name":"Analista"}`, authz.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/admin/work-locations", `{"name":"Sede","state":"Paraná"}`, authz.RoleAdmin))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/admin/work-locations", `{"name":"Sede","state":"PR"}`, authz.RoleAdmin))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/positions", "", authz.RoleUser))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/work-locations", "", authz.RoleUser))

	require.Len(t, repo.positions, 1)
	for id := range repo.positions {
		assert.Equal(t, http.StatusOK, do(http.MethodPut, "/api/admin/positions/"+id.String(), `{"name":"Analista Sênior"}`, authz.RoleAdmin))
		assert.Equal(t, "Analista Sênior", repo.positions[id].Name)
		assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/admin/positions/"+id.String(), "", authz.RoleAdmin))
		assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/admin/positions/"+id.String(), "", authz.RoleAdmin))
	}
}
