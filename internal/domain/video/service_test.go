package video

import (
	"context"
	"errors"
	"io"
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
	"github.com/cresol/hub-api/internal/pkg/storage"
)

type fakeRepo struct {
	videos      map[uuid.UUID]*Video
	collections map[uuid.UUID][]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{videos: map[uuid.UUID]*Video{}, collections: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakeRepo) List(_ context.Context, activeOnly bool) ([]*Video, error) {
	out := []*Video{}
	for _, v := range f.videos {
		if !activeOnly || v.IsActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, v *Video, collectionID *uuid.UUID) error {
	if collectionID != nil {
		items, ok := f.collections[*collectionID]
		if !ok {
			return ErrCollectionNotFound
		}
		f.collections[*collectionID] = append(items, v.ID)
	}
	cp := *v
	f.videos[v.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, v *Video) (bool, error) {
	if _, ok := f.videos[v.ID]; !ok {
		return false, nil
	}
	cp := *v
	f.videos[v.ID] = &cp
	return true, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) (*Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, nil
	}
	delete(f.videos, id)
	return v, nil
}

func (f *fakeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (bool, error) {
	v, ok := f.videos[id]
	if ok {
		v.IsActive = active
	}
	return ok, nil
}

func (f *fakeRepo) NextOrderIndex(context.Context) (int, error) {
	return len(f.videos) + 1, nil
}

type failingStore struct{}

func (failingStore) Upload(context.Context, string, string, io.Reader, string) error { return nil }
func (failingStore) Remove(context.Context, string, ...string) error {
	return errors.New("storage unavailable")
}
func (failingStore) PublicURL(bucket, key string) string {
	return "https://files.cresol.test/" + bucket + "/" + key
}

func newTestService() (*Service, *fakeRepo, *storage.MemoryQueue) {
	repo := newFakeRepo()
	queue := storage.NewMemoryQueue()
	return NewService(repo, storage.NewCleaner(failingStore{}, queue), nil, realtime.Nop{}, nil), repo, queue
}

var admin = middleware.Identity{UserID: uuid.New(), Role: authz.RoleAdmin}

func TestCreateDerivesYouTubeThumbnail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	v, err := svc.Create(ctx, admin, &VideoRequest{Title: "Integração", VideoURL: "https://www.youtube.com/watch?v=abc123"})
	require.NoError(t, err)
	assert.Equal(t, uploadYouTube, v.UploadType)
	require.NotNil(t, v.ThumbnailURL)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", *v.ThumbnailURL)
	assert.Equal(t, 1, v.OrderIndex)

	v, err = svc.Create(ctx, admin, &VideoRequest{Title: "Sem id", VideoURL: "https://vimeo.com/1234"})
	require.NoError(t, err)
	assert.Nil(t, v.ThumbnailURL)
}

func TestCreateAppendsToCollection(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	collectionID := uuid.New()

	missing := uuid.New()
	_, err := svc.Create(ctx, admin, &VideoRequest{Title: "Treinamento", VideoURL: "https://youtu.be/xyz789", CollectionID: &missing})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.Empty(t, repo.videos)

	repo.collections[collectionID] = nil
	v, err := svc.Create(ctx, admin, &VideoRequest{Title: "Treinamento", VideoURL: "https://youtu.be/xyz789", CollectionID: &collectionID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{v.ID}, repo.collections[collectionID])
}

func TestDeleteDirectVideoQueuesFilesWhenStorageFails(t *testing.T) {
	svc, repo, queue := newTestService()
	ctx := context.Background()
	thumb := "https://files.cresol.test/images/thumbs/a.jpg"

	v, err := svc.Create(ctx, admin, &VideoRequest{
		Title:        "Arquivo",
		VideoURL:     "https://files.cresol.test/videos/2026/a.mp4",
		ThumbnailURL: &thumb,
		UploadType:   uploadDirect,
	})
	require.NoError(t, err)
	require.NotNil(t, v.FilePath)
	assert.Equal(t, "2026/a.mp4", *v.FilePath)

	require.NoError(t, svc.Delete(ctx, v.ID))
	assert.Empty(t, repo.videos)

	queued, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, queued)

	assert.ErrorIs(t, svc.Delete(ctx, v.ID), ErrVideoNotFound)
}

func TestInactiveHiddenFromUsers(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	v, err := svc.Create(ctx, admin, &VideoRequest{Title: "Rascunho", VideoURL: "https://youtu.be/xyz789"})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, v.ID, false))

	user := middleware.Identity{UserID: uuid.New(), Role: authz.RoleUser}
	videos, err := svc.List(ctx, user, false)
	require.NoError(t, err)
	assert.Empty(t, videos)

	_, err = svc.Get(ctx, user, v.ID)
	assert.ErrorIs(t, err, ErrVideoNotFound)

	videos, err = svc.List(ctx, admin, false)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestAdminRoutes(t *testing.T) {
	svc, repo, _ := newTestService()
	uploaded := false
	router := chi.NewRouter()
	router.Mount("/api/admin/videos", NewHandler(svc).AdminRoutes(func(w http.ResponseWriter, r *http.Request) {
		uploaded = true
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(method, path, body, role string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: uuid.New(), Role: role}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	body := `{"title":"Boas-vindas","video_url":"https://youtu.be/xyz789"}`
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/api/admin/videos", body, authz.RoleUser))
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/api/admin/videos/upload", "", authz.RoleSectorAdmin))
	assert.False(t, uploaded)

	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/admin/videos", body, authz.RoleAdmin))
	assert.Len(t, repo.videos, 1)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/admin/videos", `{"title":"x","video_url":"not a url","upload_type":"vimeo"}`, authz.RoleAdmin))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/admin/videos/upload", "", authz.RoleAdmin))
	assert.True(t, uploaded)
}
