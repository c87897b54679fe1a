package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

func TestStorage_CreateUpload(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery("INSERT INTO uploads").
		WithArgs("u-1", "https://bucket/uploads/image/a.jpg", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("up-1"))
	mock.ExpectQuery("INSERT INTO uploads").
		WithArgs("u-1", "https://bucket/uploads/image/a.jpg", nil).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uploads_location_key"})

	upload := models.Upload{UserID: "u-1", Location: "https://bucket/uploads/image/a.jpg"}

	id, err := s.CreateUpload(context.Background(), upload)
	require.NoError(t, err)
	assert.Equal(t, "up-1", id)

	_, err = s.CreateUpload(context.Background(), upload)
	assert.ErrorIs(t, err, storage.ErrLocationExists)
}

func TestStorage_ListOrphanUploads(t *testing.T) {
	before := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	created := before.Add(-time.Hour)

	s, mock := newMockStorage(t)
	mock.ExpectQuery("FROM uploads\\s+WHERE in_use = false AND created_at < \\$1").
		WithArgs(before).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "location", "in_use", "where_used", "created_at"}).
			AddRow("up-1", "u-1", "loc-1", false, "", created).
			AddRow("up-2", "", "loc-2", false, "users", created))

	uploads, err := s.ListOrphanUploads(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, []models.Upload{
		{ID: "up-1", UserID: "u-1", Location: "loc-1", CreatedAt: created},
		{ID: "up-2", Location: "loc-2", WhereUsed: "users", CreatedAt: created},
	}, uploads)
}

func TestStorage_DeleteUpload(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec("DELETE FROM uploads WHERE id = \\$1").WithArgs("up-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM uploads WHERE id = \\$1").WithArgs("up-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteUpload(context.Background(), "up-1"))
	assert.ErrorIs(t, s.DeleteUpload(context.Background(), "up-1"), storage.ErrNotFound)
}
