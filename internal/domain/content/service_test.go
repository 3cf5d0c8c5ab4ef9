package content

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

type fakeRepo struct {
	parents map[uuid.UUID]bool
	news    map[uuid.UUID]*News
	events  map[uuid.UUID]*Event
	videos  map[uuid.UUID]*Video
}

func newFakeRepo(parents ...uuid.UUID) *fakeRepo {
	f := &fakeRepo{
		parents: map[uuid.UUID]bool{},
		news:    map[uuid.UUID]*News{},
		events:  map[uuid.UUID]*Event{},
		videos:  map[uuid.UUID]*Video{},
	}
	for _, p := range parents {
		f.parents[p] = true
	}
	return f
}

func (f *fakeRepo) bases(k Kind, parentID uuid.UUID) []*Base {
	var out []*Base
	switch k {
	case KindNews:
		for _, n := range f.news {
			out = append(out, &n.Base)
		}
	case KindEvents:
		for _, e := range f.events {
			out = append(out, &e.Base)
		}
	case KindVideos:
		for _, v := range f.videos {
			out = append(out, &v.Base)
		}
	}
	var scoped []*Base
	for _, b := range out {
		if b.ParentID == parentID {
			scoped = append(scoped, b)
		}
	}
	return scoped
}

func (f *fakeRepo) unfeature(k Kind, parentID, keep uuid.UUID) {
	for _, b := range f.bases(k, parentID) {
		if b.ID != keep {
			b.IsFeatured = false
		}
	}
}

func (f *fakeRepo) ParentExists(_ context.Context, parentID uuid.UUID) (bool, error) {
	return f.parents[parentID], nil
}

func (f *fakeRepo) ListNews(_ context.Context, parentID uuid.UUID, drafts bool) ([]*News, error) {
	out := []*News{}
	for _, n := range f.news {
		if n.ParentID == parentID && (drafts || n.IsPublished) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetNews(_ context.Context, parentID, id uuid.UUID) (*News, error) {
	n, ok := f.news[id]
	if !ok || n.ParentID != parentID {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeRepo) CreateNews(_ context.Context, n *News) error {
	cp := *n
	f.news[n.ID] = &cp
	if n.IsFeatured {
		f.unfeature(KindNews, n.ParentID, n.ID)
	}
	return nil
}

func (f *fakeRepo) UpdateNews(_ context.Context, n *News) (bool, error) {
	if _, ok := f.news[n.ID]; !ok {
		return false, nil
	}
	cp := *n
	f.news[n.ID] = &cp
	if n.IsFeatured {
		f.unfeature(KindNews, n.ParentID, n.ID)
	}
	return true, nil
}

func (f *fakeRepo) DeleteNews(_ context.Context, parentID, id uuid.UUID) (*News, error) {
	n, ok := f.news[id]
	if !ok || n.ParentID != parentID {
		return nil, nil
	}
	delete(f.news, id)
	return n, nil
}

func (f *fakeRepo) ListEvents(_ context.Context, parentID uuid.UUID, drafts bool) ([]*Event, error) {
	out := []*Event{}
	for _, e := range f.events {
		if e.ParentID == parentID && (drafts || e.IsPublished) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetEvent(_ context.Context, parentID, id uuid.UUID) (*Event, error) {
	e, ok := f.events[id]
	if !ok || e.ParentID != parentID {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *Event) error {
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, e *Event) (bool, error) {
	if _, ok := f.events[e.ID]; !ok {
		return false, nil
	}
	cp := *e
	f.events[e.ID] = &cp
	return true, nil
}

func (f *fakeRepo) DeleteEvent(_ context.Context, parentID, id uuid.UUID) (*Event, error) {
	e, ok := f.events[id]
	if !ok || e.ParentID != parentID {
		return nil, nil
	}
	delete(f.events, id)
	return e, nil
}

func (f *fakeRepo) ListVideos(_ context.Context, parentID uuid.UUID, drafts bool) ([]*Video, error) {
	out := []*Video{}
	for _, v := range f.videos {
		if v.ParentID == parentID && (drafts || v.IsPublished) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetVideo(_ context.Context, parentID, id uuid.UUID) (*Video, error) {
	v, ok := f.videos[id]
	if !ok || v.ParentID != parentID {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeRepo) CreateVideo(_ context.Context, v *Video) error {
	cp := *v
	f.videos[v.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateVideo(_ context.Context, v *Video) (bool, error) {
	if _, ok := f.videos[v.ID]; !ok {
		return false, nil
	}
	cp := *v
	f.videos[v.ID] = &cp
	return true, nil
}

func (f *fakeRepo) DeleteVideo(_ context.Context, parentID, id uuid.UUID) (*Video, error) {
	v, ok := f.videos[id]
	if !ok || v.ParentID != parentID {
		return nil, nil
	}
	delete(f.videos, id)
	return v, nil
}

func (f *fakeRepo) SetFeatured(_ context.Context, k Kind, parentID, id uuid.UUID, featured bool) (bool, error) {
	for _, b := range f.bases(k, parentID) {
		if b.ID != id {
			continue
		}
		b.IsFeatured = featured
		if featured {
			f.unfeature(k, parentID, id)
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeRepo) SetPublished(_ context.Context, k Kind, parentID, id uuid.UUID, published bool) (bool, error) {
	for _, b := range f.bases(k, parentID) {
		if b.ID == id {
			b.IsPublished = published
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) NextOrderIndex(_ context.Context, parentID uuid.UUID) (int, error) {
	max := 0
	for _, v := range f.videos {
		if v.ParentID == parentID && v.OrderIndex > max {
			max = v.OrderIndex
		}
	}
	return max + 1, nil
}

func (f *fakeRepo) Reorder(_ context.Context, parentID uuid.UUID, ids []uuid.UUID) error {
	for i, id := range ids {
		v, ok := f.videos[id]
		if !ok || v.ParentID != parentID {
			return ErrReorderIDs
		}
		v.OrderIndex = i + 1
	}
	return nil
}

type fakeScopeStore struct {
	sectorAdmins map[[2]uuid.UUID]bool
}

func (f *fakeScopeStore) IsSectorAdmin(_ context.Context, userID, sectorID uuid.UUID) (bool, error) {
	return f.sectorAdmins[[2]uuid.UUID{userID, sectorID}], nil
}

func (f *fakeScopeStore) IsSubsectorAdmin(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeScopeStore) SectorOfSubsector(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, nil
}

type failingStore struct{}

func (failingStore) Upload(context.Context, string, string, io.Reader, string) error { return nil }

func (failingStore) Remove(context.Context, string, ...string) error {
	return errors.New("storage unavailable")
}

func (failingStore) PublicURL(bucket, key string) string {
	return "https://files.cresol.test/" + bucket + "/" + key
}

type fixedThumbs string

func (f fixedThumbs) Resolve(context.Context, string) string { return string(f) }

type fixture struct {
	repo     *fakeRepo
	queue    *storage.MemoryQueue
	service  *Service
	sectorID uuid.UUID
	manager  middleware.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sectorID := uuid.New()
	manager := middleware.Identity{UserID: uuid.New(), Role: authz.RoleSectorAdmin}
	repo := newFakeRepo(sectorID)
	queue := storage.NewMemoryQueue()
	scopes := authz.NewScopes(&fakeScopeStore{sectorAdmins: map[[2]uuid.UUID]bool{{manager.UserID, sectorID}: true}})

	svc := NewService(SectorScope, repo, scopes, storage.NewCleaner(failingStore{}, queue), realtime.Nop{}, nil)
	return &fixture{repo: repo, queue: queue, service: svc, sectorID: sectorID, manager: manager}
}

func TestFeaturingLeavesOneFeaturedSibling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateNews(ctx, f.manager, f.sectorID, &NewsRequest{Title: "Primeira", IsFeatured: true})
	require.NoError(t, err)
	second, err := f.service.CreateNews(ctx, f.manager, f.sectorID, &NewsRequest{Title: "Segunda"})
	require.NoError(t, err)

	require.NoError(t, f.service.SetFeatured(ctx, KindNews, f.sectorID, second.ID, true))

	featured := 0
	for _, n := range f.repo.news {
		if n.IsFeatured {
			featured++
			assert.Equal(t, second.ID, n.ID)
		}
	}
	assert.Equal(t, 1, featured)
	assert.False(t, f.repo.news[first.ID].IsFeatured)

	err = f.service.SetFeatured(ctx, KindNews, f.sectorID, uuid.New(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteVideoRemovesRowWhenStorageFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	path := "sectors/aula.mp4"
	thumb := "https://files.cresol.test/images/sectors/aula.jpg"
	v, err := f.service.CreateVideo(ctx, f.manager, f.sectorID, &VideoRequest{
		Title:        "Aula",
		VideoURL:     "https://files.cresol.test/videos/sectors/aula.mp4",
		UploadType:   uploadDirect,
		FilePath:     &path,
		ThumbnailURL: &thumb,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteVideo(ctx, f.sectorID, v.ID))
	assert.Empty(t, f.repo.videos)

	queued, err := f.queue.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, queued)

	assert.ErrorIs(t, f.service.DeleteVideo(ctx, f.sectorID, v.ID), ErrNotFound)
}

func TestCreateVideoThumbnails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.service.CreateVideo(ctx, f.manager, f.sectorID, &VideoRequest{
		Title:    "Campanha",
		VideoURL: "https://www.youtube.com/watch?v=abc123",
	})
	require.NoError(t, err)
	require.NotNil(t, v.ThumbnailURL)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", *v.ThumbnailURL)
	assert.Equal(t, uploadYouTube, v.UploadType)
	assert.Equal(t, 1, v.OrderIndex)

	malformed, err := f.service.CreateVideo(ctx, f.manager, f.sectorID, &VideoRequest{
		Title:    "Sem id",
		VideoURL: "https://www.youtube.com/channel/",
	})
	require.NoError(t, err)
	assert.Nil(t, malformed.ThumbnailURL)
	assert.Equal(t, 2, malformed.OrderIndex)

	probed := NewService(SectorScope, f.repo, authz.NewScopes(&fakeScopeStore{}), nil, realtime.Nop{}, fixedThumbs("https://img.youtube.com/vi/xyz789/hqdefault.jpg"))
	v, err = probed.CreateVideo(ctx, f.manager, f.sectorID, &VideoRequest{Title: "Curta", VideoURL: "https://youtu.be/xyz789"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.youtube.com/vi/xyz789/hqdefault.jpg", *v.ThumbnailURL)
}

func TestEventDatesValidated(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := f.service.CreateEvent(context.Background(), f.manager, f.sectorID, &EventRequest{
		Title:     "Assembleia",
		StartDate: start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, ErrInvalidDates)
	assert.Empty(t, f.repo.events)
}

func TestDraftsOnlyVisibleToManagers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := false

	n, err := f.service.CreateNews(ctx, f.manager, f.sectorID, &NewsRequest{Title: "Rascunho", IsPublished: &draft})
	require.NoError(t, err)

	user := middleware.Identity{UserID: uuid.New(), Role: authz.RoleUser}
	items, err := f.service.ListNews(ctx, user, f.sectorID, true)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.service.GetNews(ctx, user, f.sectorID, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err = f.service.ListNews(ctx, f.manager, f.sectorID, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].SectorID)
	assert.Equal(t, f.sectorID, *items[0].SectorID)

	items, err = f.service.ListNews(ctx, f.manager, f.sectorID, false)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.service.ListNews(ctx, user, uuid.New(), false)
	assert.ErrorIs(t, err, SectorScope.notFound)
}

func TestUpdateTwiceKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.service.CreateNews(ctx, f.manager, f.sectorID, &NewsRequest{Title: "Original"})
	require.NoError(t, err)

	summary := "Resumo"
	req := &NewsRequest{Title: "Atualizada", Summary: &summary, Content: "Texto"}
	_, err = f.service.UpdateNews(ctx, f.sectorID, n.ID, req)
	require.NoError(t, err)
	first := *f.repo.news[n.ID]

	_, err = f.service.UpdateNews(ctx, f.sectorID, n.ID, req)
	require.NoError(t, err)
	second := *f.repo.news[n.ID]

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.IsPublished, second.IsPublished)
	assert.Equal(t, first.CreatedBy, second.CreatedBy)

	_, err = f.service.UpdateNews(ctx, f.sectorID, uuid.New(), req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.service.CreateVideo(ctx, f.manager, f.sectorID, &VideoRequest{Title: "A", VideoURL: "https://youtu.be/aaa"})
	require.NoError(t, err)
	b, err := f.service.CreateVideo(ctx, f.manager, f.sectorID, &VideoRequest{Title: "B", VideoURL: "https://youtu.be/bbb"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.ReorderVideos(ctx, f.sectorID, []uuid.UUID{a.ID, a.ID}), ErrReorderIDs)

	require.NoError(t, f.service.ReorderVideos(ctx, f.sectorID, []uuid.UUID{b.ID, a.ID}))
	assert.Equal(t, 1, f.repo.videos[b.ID].OrderIndex)
	assert.Equal(t, 2, f.repo.videos[a.ID].OrderIndex)
}

func TestAdminRoutesEnforceRoleAndScope(t *testing.T) {
	f := newFixture(t)
	scopes := authz.NewScopes(&fakeScopeStore{sectorAdmins: map[[2]uuid.UUID]bool{{f.manager.UserID, f.sectorID}: true}})
	h := NewHandler(f.service)

	router := chi.NewRouter()
	router.Route("/api/admin/sectors/{id}", h.AdminRoutes(scopes))

	post := func(sectorID uuid.UUID, ident middleware.Identity, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/sectors/"+sectorID.String()+"/news", strings.NewReader(body))
		req = req.WithContext(middleware.WithIdentity(req.Context(), ident))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	valid := `{"title":"Resultado do trimestre","content":"..."}`

	assert.Equal(t, http.StatusForbidden, post(f.sectorID, middleware.Identity{UserID: uuid.New(), Role: authz.RoleUser}, valid))
	assert.Equal(t, http.StatusForbidden, post(f.sectorID, middleware.Identity{UserID: uuid.New(), Role: authz.RoleSectorAdmin}, valid))
	assert.Equal(t, http.StatusCreated, post(f.sectorID, f.manager, valid))
	assert.Equal(t, http.StatusCreated, post(f.sectorID, middleware.Identity{UserID: uuid.New(), Role: authz.RoleAdmin}, valid))
	assert.Equal(t, http.StatusBadRequest, post(f.sectorID, f.manager, `{"content":"sem titulo"}`))
}

func TestFeaturedRouteRequiresFlag(t *testing.T) {
	f := newFixture(t)
	n, err := f.service.CreateNews(context.Background(), f.manager, f.sectorID, &NewsRequest{Title: "Destaque"})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Route("/api/admin/sectors/{id}", NewHandler(f.service).AdminRoutes(authz.NewScopes(&fakeScopeStore{})))

	patch := func(body string) int {
		url := "/api/admin/sectors/" + f.sectorID.String() + "/news/" + n.ID.String() + "/featured"
		req := httptest.NewRequest(http.MethodPatch, url, strings.NewReader(body))
		req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: uuid.New(), Role: authz.RoleAdmin}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, patch(`{}`))
	assert.Equal(t, http.StatusOK, patch(`{"is_featured":true}`))
	assert.True(t, f.repo.news[n.ID].IsFeatured)
}

func TestDraftsNeverReachSubscribers(t *testing.T) {
	f := newFixture(t)
	hub := realtime.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	f.service.publisher = hub

	reader := realtime.NewClient(uuid.New(), []string{"sector_news"})
	hub.Register(reader)
	require.Eventually(t, func() bool { return hub.Connected(reader.UserID) }, time.Second, 5*time.Millisecond)

	next := func() string {
		select {
		case raw := <-reader.Send:
			return string(raw)
		case <-time.After(time.Second):
			t.Fatal("no change event")
			return ""
		}
	}

	ctx := context.Background()
	draft := false
	_, err := f.service.CreateNews(ctx, f.manager, f.sectorID, &NewsRequest{Title: "Segredo rascunho", Content: "corpo", IsPublished: &draft})
	require.NoError(t, err)
	assert.NotContains(t, next(), "Segredo rascunho")

	published := true
	_, err = f.service.CreateNews(ctx, f.manager, f.sectorID, &NewsRequest{Title: "Comunicado", Content: "corpo", IsPublished: &published})
	require.NoError(t, err)
	assert.Contains(t, next(), "Comunicado")
}
