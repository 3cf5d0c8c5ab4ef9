package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/domain/profile"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/password"
	"github.com/cresol/hub-api/internal/pkg/supabase"
)

type fakeProfiles struct {
	rows      map[uuid.UUID]*profile.Profile
	upsertErr error
}

func newFakeProfiles(ps ...*profile.Profile) *fakeProfiles {
	f := &fakeProfiles{rows: map[uuid.UUID]*profile.Profile{}}
	for _, p := range ps {
		f.rows[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	for _, p := range f.rows {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) GetRole(_ context.Context, id uuid.UUID) (string, error) {
	if p, ok := f.rows[id]; ok {
		return p.Role, nil
	}
	return "", nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *profile.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, p *profile.Profile) error {
	if _, ok := f.rows[p.ID]; !ok {
		return profile.ErrProfileNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	p, ok := f.rows[id]
	if !ok {
		return profile.ErrProfileNotFound
	}
	p.Role = role
	return nil
}

func (f *fakeProfiles) List(_ context.Context, flt profile.Filter) ([]*profile.Profile, int, error) {
	out := []*profile.Profile{}
	for _, p := range f.rows {
		if flt.Role == "" || p.Role == flt.Role {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

type fakeAuth struct {
	createErr error
	updateErr error
	created   []supabase.CreateUserParams
	updated   map[uuid.UUID]supabase.UpdateUserParams
	deleted   []uuid.UUID
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{updated: map[uuid.UUID]supabase.UpdateUserParams{}}
}

func (f *fakeAuth) CreateUser(_ context.Context, p supabase.CreateUserParams) (*supabase.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	return &supabase.User{ID: uuid.New(), Email: p.Email}, nil
}

func (f *fakeAuth) UpdateUserByID(_ context.Context, id uuid.UUID, p supabase.UpdateUserParams) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated[id] = p
	return nil
}

func (f *fakeAuth) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type recorder struct {
	entries []audit.Entry
}

func (r *recorder) Record(_ context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

func asIdentity(id middleware.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
		})
	}
}

var admin = middleware.Identity{UserID: uuid.New(), Role: authz.RoleAdmin}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/create-user", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateUserRequiresCorporateEmail(t *testing.T) {
	auth := newFakeAuth()
	h := NewHandler(NewService(newFakeProfiles(), auth, nil))
	route := h.CreateUserRoute(asIdentity(admin))

	w := post(route, `{"email":"ana@gmail.com","fullName":"Ana Souza"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "e-mail corporativo")
	assert.Empty(t, auth.created)
}

func TestCreateUser(t *testing.T) {
	profiles := newFakeProfiles()
	auth := newFakeAuth()
	rec := &recorder{}
	h := NewHandler(NewService(profiles, auth, rec))
	route := h.CreateUserRoute(asIdentity(admin))

	w := post(route, `{"email":"Ana.Souza@Cresol.com.br","fullName":"Ana Souza","role":"sector_admin","adminToken":"t"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreateUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.GreaterOrEqual(t, len(resp.TempPassword), password.MinLength)

	require.Len(t, auth.created, 1)
	params := auth.created[0]
	assert.Equal(t, "ana.souza@cresol.com.br", params.Email)
	assert.Equal(t, resp.TempPassword, params.Password)
	assert.True(t, params.EmailConfirm)
	assert.Equal(t, "Ana Souza", params.UserMetadata["full_name"])

	p := profiles.rows[resp.UserID]
	require.NotNil(t, p)
	assert.Equal(t, authz.RoleSectorAdmin, p.Role)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionUserCreated, rec.entries[0].Action)
	assert.Equal(t, resp.UserID, rec.entries[0].EntityID)
}

func TestCreateUserForbiddenForNonAdmins(t *testing.T) {
	auth := newFakeAuth()
	h := NewHandler(NewService(newFakeProfiles(), auth, nil))

	for _, role := range []string{authz.RoleUser, authz.RoleSectorAdmin, authz.RoleSubsectorAdmin} {
		route := h.CreateUserRoute(asIdentity(middleware.Identity{UserID: uuid.New(), Role: role}))
		w := post(route, `{"email":"ana@cresol.com.br","fullName":"Ana Souza"}`)
		assert.Equal(t, http.StatusForbidden, w.Code, role)
	}
	assert.Empty(t, auth.created)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	req := &CreateUserRequest{Email: "ana@cresol.com.br", FullName: "Ana Souza"}

	auth := newFakeAuth()
	auth.createErr = supabase.ErrEmailExists
	_, err := NewService(newFakeProfiles(), auth, nil).Create(ctx, req)
	assert.ErrorIs(t, err, profile.ErrEmailTaken)

	existing := &profile.Profile{ID: uuid.New(), Email: "ANA@cresol.com.br", Role: authz.RoleUser}
	auth = newFakeAuth()
	_, err = NewService(newFakeProfiles(existing), auth, nil).Create(ctx, req)
	assert.ErrorIs(t, err, profile.ErrEmailTaken)
	assert.Empty(t, auth.created)

	h := NewHandler(NewService(newFakeProfiles(existing), newFakeAuth(), nil))
	w := post(h.CreateUserRoute(asIdentity(admin)), `{"email":"ana@cresol.com.br","fullName":"Ana Souza"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUserDeletesAuthUserWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	req := &CreateUserRequest{Email: "ana@cresol.com.br", FullName: "Ana Souza"}

	profiles := newFakeProfiles()
	profiles.upsertErr = errors.New("connection reset")
	auth := newFakeAuth()
	_, err := NewService(profiles, auth, nil).Create(ctx, req)
	require.Error(t, err)
	assert.Len(t, auth.deleted, 1)

	profiles.upsertErr = &pq.Error{Code: "23505"}
	auth = newFakeAuth()
	_, err = NewService(profiles, auth, nil).Create(ctx, req)
	assert.ErrorIs(t, err, profile.ErrEmailTaken)
	assert.Len(t, auth.deleted, 1)

	profiles.upsertErr = &pq.Error{Code: "23503"}
	_, err = NewService(profiles, newFakeAuth(), nil).Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestCreateUserAuthOutage(t *testing.T) {
	auth := newFakeAuth()
	auth.createErr = errors.New("supabase network error")
	h := NewHandler(NewService(newFakeProfiles(), auth, nil))

	w := post(h.CreateUserRoute(asIdentity(admin)), `{"email":"ana@cresol.com.br","fullName":"Ana Souza"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	target := &profile.Profile{ID: uuid.New(), Email: "joao@cresol.com.br", Role: authz.RoleUser}
	profiles := newFakeProfiles(target)
	auth := newFakeAuth()
	rec := &recorder{}
	svc := NewService(profiles, auth, rec)

	p, err := svc.ChangeRole(ctx, admin, target.ID, authz.RoleSubsectorAdmin)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleSubsectorAdmin, p.Role)
	assert.Equal(t, authz.RoleSubsectorAdmin, profiles.rows[target.ID].Role)
	assert.Equal(t, authz.RoleSubsectorAdmin, auth.updated[target.ID].AppMetadata["role"])
	require.Len(t, rec.entries, 1)
	assert.Equal(t, audit.ActionUserRoleChanged, rec.entries[0].Action)

	_, err = svc.ChangeRole(ctx, admin, target.ID, authz.RoleSubsectorAdmin)
	require.NoError(t, err)
	assert.Len(t, rec.entries, 1)

	_, err = svc.ChangeRole(ctx, admin, uuid.New(), authz.RoleUser)
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestChangeRoleIgnoresMetadataSyncFailure(t *testing.T) {
	target := &profile.Profile{ID: uuid.New(), Email: "joao@cresol.com.br", Role: authz.RoleUser}
	profiles := newFakeProfiles(target)
	auth := newFakeAuth()
	auth.updateErr = errors.New("auth server down")

	p, err := NewService(profiles, auth, nil).ChangeRole(context.Background(), admin, target.ID, authz.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, p.Role)
	assert.Equal(t, authz.RoleAdmin, profiles.rows[target.ID].Role)
}

func TestAdminCannotDemoteThemself(t *testing.T) {
	self := &profile.Profile{ID: admin.UserID, Email: "admin@cresol.com.br", Role: authz.RoleAdmin}
	profiles := newFakeProfiles(self)
	h := NewHandler(NewService(profiles, newFakeAuth(), nil))
	route := asIdentity(admin)(h.UpdateRoleRoute())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/update-user-role",
		strings.NewReader(`{"userId":"`+admin.UserID.String()+`","role":"user"}`))
	w := httptest.NewRecorder()
	route.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, authz.RoleAdmin, profiles.rows[admin.UserID].Role)

	role := authz.RoleUser
	_, err := NewService(profiles, newFakeAuth(), nil).Update(context.Background(), admin, admin.UserID, &UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, ErrSelfDemotion)
}

func TestAdminUserRoutes(t *testing.T) {
	target := &profile.Profile{ID: uuid.New(), Email: "joao@cresol.com.br", FullName: "João", Role: authz.RoleUser}
	profiles := newFakeProfiles(target)
	rec := &recorder{}
	h := NewHandler(NewService(profiles, newFakeAuth(), rec))

	do := func(id middleware.Identity, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.WithIdentity(req.Context(), id))
		w := httptest.NewRecorder()
		h.Routes().ServeHTTP(w, req)
		return w
	}

	user := middleware.Identity{UserID: target.ID, Role: authz.RoleUser}
	assert.Equal(t, http.StatusForbidden, do(user, http.MethodGet, "/", "").Code)

	w := do(admin, http.MethodGet, "/?page=1&limit=10&role=all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodGet, "/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, do(admin, http.MethodGet, "/"+uuid.NewString(), "").Code)

	w = do(admin, http.MethodPut, "/"+target.ID.String(), `{"full_name":"João Pereira","role":"sector_admin"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "João Pereira", profiles.rows[target.ID].FullName)
	assert.Equal(t, authz.RoleSectorAdmin, profiles.rows[target.ID].Role)
	require.Len(t, rec.entries, 2)
	assert.Equal(t, audit.ActionUserUpdated, rec.entries[0].Action)
	assert.Equal(t, audit.ActionUserRoleChanged, rec.entries[1].Action)

	assert.Equal(t, http.StatusBadRequest, do(admin, http.MethodPut, "/"+target.ID.String(), `{"role":"root"}`).Code)
}
