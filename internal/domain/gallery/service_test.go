package gallery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/domain/upload"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/imaging"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

type fakeRepo struct {
	images     map[uuid.UUID]*Image
	subImages  map[uuid.UUID]*SubsectorImage
	subsectors map[uuid.UUID]bool
	createErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		images:     map[uuid.UUID]*Image{},
		subImages:  map[uuid.UUID]*SubsectorImage{},
		subsectors: map[uuid.UUID]bool{},
	}
}

func (f *fakeRepo) List(_ context.Context, activeOnly bool) ([]*Image, error) {
	out := []*Image{}
	for _, img := range f.images {
		if !activeOnly || img.IsActive {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Image, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, nil
	}
	cp := *img
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, img *Image) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *img
	f.images[img.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, img *Image) (bool, error) {
	if _, ok := f.images[img.ID]; !ok {
		return false, nil
	}
	cp := *img
	f.images[img.ID] = &cp
	return true, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) (*Image, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, nil
	}
	delete(f.images, id)
	return img, nil
}

func (f *fakeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) (bool, error) {
	img, ok := f.images[id]
	if ok {
		img.IsActive = active
	}
	return ok, nil
}

func (f *fakeRepo) NextOrderIndex(context.Context) (int, error) {
	return len(f.images) + 1, nil
}

func (f *fakeRepo) SubsectorExists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.subsectors[id], nil
}

func (f *fakeRepo) ListBySubsector(_ context.Context, subsectorID uuid.UUID, drafts bool) ([]*SubsectorImage, error) {
	out := []*SubsectorImage{}
	for _, img := range f.subImages {
		if img.SubsectorID == subsectorID && (drafts || img.IsPublished) {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSubsectorImage(_ context.Context, subsectorID, id uuid.UUID) (*SubsectorImage, error) {
	img, ok := f.subImages[id]
	if !ok || img.SubsectorID != subsectorID {
		return nil, nil
	}
	cp := *img
	return &cp, nil
}

func (f *fakeRepo) CreateSubsectorImage(_ context.Context, img *SubsectorImage) error {
	if !f.subsectors[img.SubsectorID] {
		return ErrSubsectorNotFound
	}
	cp := *img
	f.subImages[img.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateSubsectorImage(_ context.Context, img *SubsectorImage) (bool, error) {
	if _, ok := f.subImages[img.ID]; !ok {
		return false, nil
	}
	cp := *img
	f.subImages[img.ID] = &cp
	return true, nil
}

func (f *fakeRepo) DeleteSubsectorImage(_ context.Context, subsectorID, id uuid.UUID) (*SubsectorImage, error) {
	img, ok := f.subImages[id]
	if !ok || img.SubsectorID != subsectorID {
		return nil, nil
	}
	delete(f.subImages, id)
	return img, nil
}

func (f *fakeRepo) SetPublished(_ context.Context, subsectorID, id uuid.UUID, published bool) (bool, error) {
	img, ok := f.subImages[id]
	if !ok || img.SubsectorID != subsectorID {
		return false, nil
	}
	img.IsPublished = published
	return true, nil
}

func (f *fakeRepo) NextSubsectorOrderIndex(context.Context, uuid.UUID) (int, error) {
	return len(f.subImages) + 1, nil
}

type noScopes struct{}

func (noScopes) IsSectorAdmin(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (noScopes) IsSubsectorAdmin(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (noScopes) SectorOfSubsector(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, nil
}

type invalidated []string

func (i *invalidated) Invalidate(_ context.Context, tables ...string) {
	*i = append(*i, tables...)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480))))
	return buf.Bytes()
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	cleaner := storage.NewCleaner(store, storage.NewMemoryQueue())
	uploads := upload.NewService(cleaner, imaging.NewProcessor(imaging.DefaultConfig()))
	repo := newFakeRepo()
	return NewService(repo, authz.NewScopes(noScopes{}), uploads, cleaner, nil, realtime.Nop{}), repo, store
}

var admin = middleware.Identity{UserID: uuid.New(), Role: authz.RoleAdmin}

func exists(store *storage.LocalStore, key string) bool {
	_, err := os.Stat(filepath.Join(store.BasePath(), storage.BucketImages, filepath.FromSlash(key)))
	return err == nil
}

func TestUploadStoresImageAndThumbnail(t *testing.T) {
	svc, repo, store := newTestService(t)
	title := "Confraternização"

	img, err := svc.Upload(context.Background(), admin, &title, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	require.NotNil(t, img.FilePath)
	require.NotNil(t, img.ThumbnailPath)
	assert.True(t, exists(store, *img.FilePath))
	assert.True(t, exists(store, *img.ThumbnailPath))
	assert.Equal(t, store.PublicURL(storage.BucketImages, *img.FilePath), img.ImageURL)
	assert.Equal(t, 1, img.OrderIndex)
	assert.Contains(t, repo.images, img.ID)

	require.NoError(t, svc.Delete(context.Background(), img.ID))
	assert.Empty(t, repo.images)
	assert.False(t, exists(store, *img.FilePath))
	assert.False(t, exists(store, *img.ThumbnailPath))
}

func TestUploadRemovesFilesWhenInsertFails(t *testing.T) {
	svc, repo, store := newTestService(t)
	repo.createErr = errors.New("insert failed")

	_, err := svc.Upload(context.Background(), admin, nil, bytes.NewReader(pngBytes(t)))
	require.Error(t, err)

	var files []string
	require.NoError(t, filepath.Walk(store.BasePath(), func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return err
	}))
	assert.Empty(t, files)
}

func TestListHidesInactiveFromUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inactive := false

	_, err := svc.Create(ctx, admin, &ImageRequest{ImageURL: "https://cdn.cresol.test/a.jpg"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, &ImageRequest{ImageURL: "https://cdn.cresol.test/b.jpg", IsActive: &inactive})
	require.NoError(t, err)

	user := middleware.Identity{UserID: uuid.New(), Role: authz.RoleUser}
	images, err := svc.List(ctx, user, false)
	require.NoError(t, err)
	assert.Len(t, images, 1)

	images, err = svc.List(ctx, admin, false)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestSubsectorImages(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	subsectorID := uuid.New()

	_, err := svc.CreateSubsectorImage(ctx, admin, subsectorID, &ImageRequest{ImageURL: "https://cdn.cresol.test/a.jpg"})
	assert.ErrorIs(t, err, ErrSubsectorNotFound)

	repo.subsectors[subsectorID] = true
	img, err := svc.CreateSubsectorImage(ctx, admin, subsectorID, &ImageRequest{ImageURL: "https://cdn.cresol.test/a.jpg"})
	require.NoError(t, err)
	assert.True(t, img.IsPublished)

	require.NoError(t, svc.SetSubsectorImagePublished(ctx, subsectorID, img.ID, false))
	user := middleware.Identity{UserID: uuid.New(), Role: authz.RoleUser}
	images, err := svc.ListSubsector(ctx, user, subsectorID, true)
	require.NoError(t, err)
	assert.Empty(t, images)

	images, err = svc.ListSubsector(ctx, admin, subsectorID, true)
	require.NoError(t, err)
	assert.Len(t, images, 1)

	assert.ErrorIs(t, svc.DeleteSubsectorImage(ctx, uuid.New(), img.ID), ErrImageNotFound)
	require.NoError(t, svc.DeleteSubsectorImage(ctx, subsectorID, img.ID))
}

func TestDeleteInvalidatesGalleryAndCollections(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var tables invalidated
	svc.stale = &tables

	img := &Image{ID: uuid.New(), ImageURL: "https://cdn.cresol.test/gallery/a.jpg", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), img))

	require.NoError(t, svc.Delete(context.Background(), img.ID))
	assert.Contains(t, tables, tableGallery)
	assert.Contains(t, tables, tableCollections)

	assert.ErrorIs(t, svc.Delete(context.Background(), img.ID), ErrImageNotFound)
}
