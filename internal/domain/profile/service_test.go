package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/middleware"
)

type fakeRepo struct {
	profiles map[uuid.UUID]*Profile
}

func newFakeRepo(ps ...*Profile) *fakeRepo {
	f := &fakeRepo{profiles: map[uuid.UUID]*Profile{}}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*Profile, error) {
	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetRole(_ context.Context, id uuid.UUID) (string, error) {
	if p, ok := f.profiles[id]; ok {
		return p.Role, nil
	}
	return "", nil
}

func (f *fakeRepo) Upsert(_ context.Context, p *Profile) error {
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p *Profile) error {
	if _, ok := f.profiles[p.ID]; !ok {
		return ErrProfileNotFound
	}
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	p, ok := f.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.Role = role
	return nil
}

func (f *fakeRepo) List(_ context.Context, flt Filter) ([]*Profile, int, error) {
	var out []*Profile
	for _, p := range f.profiles {
		if flt.Role == "" || p.Role == flt.Role {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func TestLookupRole(t *testing.T) {
	id := uuid.New()
	svc := NewService(newFakeRepo(&Profile{ID: id, Role: "sector_admin"}))

	role, found, err := svc.LookupRole(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sector_admin", role)

	_, found, err = svc.LookupRole(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateMeKeepsRole(t *testing.T) {
	id := uuid.New()
	repo := newFakeRepo(&Profile{ID: id, Email: "ana@cresol.com.br", FullName: "Ana", Role: "user"})
	svc := NewService(repo)

	name := "Ana Souza"
	p, err := svc.UpdateMe(context.Background(), id, &UpdateMeRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", p.FullName)
	assert.Equal(t, "user", repo.profiles[id].Role)
	assert.Equal(t, "ana@cresol.com.br", repo.profiles[id].Email)
}

func TestGetMeWithoutProfile(t *testing.T) {
	h := NewHandler(NewService(newFakeRepo()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: uuid.New(), Role: "user"}))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Profile not found")
}

func TestUpdateMeRejectsBadAvatar(t *testing.T) {
	id := uuid.New()
	h := NewHandler(NewService(newFakeRepo(&Profile{ID: id, Role: "user"})))

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"avatar_url":"not a url"}`))
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: id, Role: "user"}))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "avatar_url")
}
