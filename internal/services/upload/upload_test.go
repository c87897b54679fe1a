package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
	"github.com/magabrotheeeer/staffdesk/internal/media"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	deleteErr error
	exists    bool
	existsErr error
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loc := "https://s3.test/bucket/" + key
	f.objects[loc] = data
	f.types[loc] = contentType
	return loc, nil
}

func (f *fakeStore) Delete(_ context.Context, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, location)
	delete(f.objects, location)
	return nil
}

func (f *fakeStore) Exists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

type fakeRepo struct {
	mu      sync.Mutex
	created []models.Upload
	uploads []models.Upload
	removed []string
}

func (r *fakeRepo) CreateUpload(_ context.Context, u models.Upload) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, u)
	return "id", nil
}

func (r *fakeRepo) ListOrphanUploads(_ context.Context, before time.Time) ([]models.Upload, error) {
	var out []models.Upload
	for _, u := range r.uploads {
		if !u.InUse && u.CreatedAt.Before(before) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteUpload(_ context.Context, id string) error {
	r.removed = append(r.removed, id)
	return nil
}

type pdfStub struct {
	out []byte
	err error
}

func (p pdfStub) Transform(context.Context, []byte) ([]byte, error) { return p.out, p.err }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newService(repo *fakeRepo, store *fakeStore, pdf pdfStub) *Service {
	return New(sl.Discard(), repo, store, media.NewImageEncoder(80), pdf, Options{Concurrency: 2})
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *httperr.Error
	require.True(t, errors.As(err, &he), "expected http error, got %v", err)
	return he.StatusCode
}

func TestUploadOne_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		file       *models.File
		pdf        pdfStub
		wantPrefix string
		wantType   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "png becomes jpeg",
			file:       &models.File{Name: "a.png", MIMEType: "image/png", Data: pngBytes(t)},
			wantPrefix: "image/",
			wantType:   "image/jpeg",
		},
		{
			name:       "pdf is compressed",
			file:       &models.File{Name: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
			pdf:        pdfStub{out: []byte("%PDF-small")},
			wantPrefix: "document/",
			wantType:   "application/pdf",
		},
		{
			name:       "unsupported type",
			file:       &models.File{Name: "a.txt", MIMEType: "text/plain", Data: []byte("hi")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "File not upload",
		},
		{
			name:       "broken image",
			file:       &models.File{Name: "a.png", MIMEType: "image/png", Data: []byte("nope")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "File not upload",
		},
		{
			name:       "pdf tool failure",
			file:       &models.File{Name: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
			pdf:        pdfStub{err: media.ErrCompress},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Error compressing PDF",
		},
		{
			name:       "pdf timeout",
			file:       &models.File{Name: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
			pdf:        pdfStub{err: media.ErrTimeout},
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    "PDF compression timed out",
		},
		{
			name:       "no file",
			wantStatus: http.StatusNotFound,
			wantMsg:    "File not provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store := &fakeRepo{}, newFakeStore()
			svc := newService(repo, store, tt.pdf)

			loc, err := svc.UploadOne(context.Background(), "user-1", tt.file)

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
				assert.Equal(t, tt.wantMsg, httperr.From(err).Message)
				assert.Empty(t, repo.created)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(loc, "https://s3.test/bucket/"+tt.wantPrefix), loc)
			assert.Equal(t, tt.wantType, store.types[loc])
			require.Len(t, repo.created, 1)
			assert.Equal(t, models.Upload{UserID: "user-1", Location: loc}, repo.created[0])
		})
	}
}

func TestUploadMany_PartialFailure(t *testing.T) {
	repo, store := &fakeRepo{}, newFakeStore()
	svc := newService(repo, store, pdfStub{out: []byte("%PDF-small")})

	files := []models.File{
		{Name: "a.png", MIMEType: "image/png", Data: pngBytes(t)},
		{Name: "b.txt", MIMEType: "text/plain", Data: []byte("x")},
		{Name: "c.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")},
	}

	locs, err := svc.UploadMany(context.Background(), "user-1", files)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Contains(t, locs[0], "/image/")
	assert.Contains(t, locs[1], "/document/")
}

func TestUploadMany_AllFail(t *testing.T) {
	svc := newService(&fakeRepo{}, newFakeStore(), pdfStub{})

	_, err := svc.UploadMany(context.Background(), "user-1", []models.File{
		{Name: "a.txt", MIMEType: "text/plain"},
		{Name: "b.csv", MIMEType: "text/csv"},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, "Files not uploaded", httperr.From(err).Message)
}

func TestUploadMany_Empty(t *testing.T) {
	svc := newService(&fakeRepo{}, newFakeStore(), pdfStub{})

	_, err := svc.UploadMany(context.Background(), "user-1", nil)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "Files not provided", httperr.From(err).Message)
}

func TestDeleteOrphans_RetentionBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	repo := &fakeRepo{uploads: []models.Upload{
		{ID: "old", Location: "loc-old", CreatedAt: now.Add(-24*time.Hour - time.Second)},
		{ID: "fresh", Location: "loc-fresh", CreatedAt: now.Add(-23*time.Hour - 59*time.Minute)},
		{ID: "used", Location: "loc-used", InUse: true, CreatedAt: now.Add(-48 * time.Hour)},
	}}
	store := newFakeStore()
	svc := newService(repo, store, pdfStub{})
	svc.now = func() time.Time { return now }

	n, err := svc.DeleteOrphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"loc-old"}, store.deleted)
	assert.Equal(t, []string{"old"}, repo.removed)
}

func TestDeleteOrphans_StorageFailure(t *testing.T) {
	now := time.Now()
	old := []models.Upload{{ID: "old", Location: "loc-old", CreatedAt: now.Add(-72 * time.Hour)}}

	tests := []struct {
		name        string
		exists      bool
		existsErr   error
		wantDeleted int
	}{
		{name: "object still there", exists: true, wantDeleted: 0},
		{name: "existence unknown", existsErr: errors.New("timeout"), wantDeleted: 0},
		{name: "object already gone", exists: false, wantDeleted: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{uploads: old}
			store := newFakeStore()
			store.deleteErr = errors.New("access denied")
			store.exists, store.existsErr = tt.exists, tt.existsErr
			svc := newService(repo, store, pdfStub{})

			n, err := svc.DeleteOrphans(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, n)
			assert.Len(t, repo.removed, tt.wantDeleted)
		})
	}
}

type failingRepo struct{ fakeRepo }

func (*failingRepo) ListOrphanUploads(context.Context, time.Time) ([]models.Upload, error) {
	return nil, errors.New("connection refused")
}

func TestDeleteOrphans_ListFailure(t *testing.T) {
	svc := New(sl.Discard(), &failingRepo{}, newFakeStore(), media.NewImageEncoder(80), pdfStub{}, Options{})

	n, err := svc.DeleteOrphans(context.Background())
	require.Error(t, err)
	assert.Equal(t, ReapFailed, n)
}
