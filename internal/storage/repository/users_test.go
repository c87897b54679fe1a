package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

var userRowColumns = []string{"id", "fullname", "username", "phone", "role", "section", "status",
	"password_hash", "created_at", "updated_at"}

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return &Storage{DB: db}, mock
}

func TestStorage_CreateUser(t *testing.T) {
	user := models.User{
		Fullname:     "Ann Lee",
		Username:     "ann",
		Phone:        "+998901234567",
		Role:         models.RoleManager,
		Status:       models.StatusActive,
		PasswordHash: "hash",
	}

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "success"},
		{
			name:    "duplicate username",
			dbErr:   &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			wantErr: storage.ErrUsernameExists,
		},
		{
			name:    "duplicate phone",
			dbErr:   &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"},
			wantErr: storage.ErrPhoneExists,
		},
		{
			name:    "second ceo",
			dbErr:   &pgconn.PgError{Code: "23505", ConstraintName: "users_single_ceo_idx"},
			wantErr: storage.ErrCEOExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			exp := mock.ExpectQuery("INSERT INTO users").
				WithArgs("Ann Lee", "ann", "+998901234567", "manager", nil, "active", "hash")
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
			}

			id, err := s.CreateUser(context.Background(), user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-1", id)
		})
	}
}

func TestStorage_GetUserByID(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow("u-1", "Ann Lee", "ann", nil, "employee", "sales", "active", "hash", now, now))

		u, err := s.GetUserByID(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, &models.User{
			ID: "u-1", Fullname: "Ann Lee", Username: "ann", Role: models.RoleEmployee,
			Section: "sales", Status: models.StatusActive, PasswordHash: "hash",
			CreatedAt: now, UpdatedAt: now,
		}, u)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id").WithArgs("u-2").WillReturnError(sql.ErrNoRows)

		_, err := s.GetUserByID(context.Background(), "u-2")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id").WithArgs("x").
			WillReturnError(&pgconn.PgError{Code: "22P02"})

		_, err := s.GetUserByID(context.Background(), "x")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s, _ := newMockStorage(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.GetUserByID(ctx, "u-1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStorage_FindConflicts(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery("SELECT(.+)bool_or(.+)FROM users").
		WithArgs("u-1", "ann", "+998901234567").
		WillReturnRows(sqlmock.NewRows([]string{"u", "p"}).AddRow(false, true))

	usernameTaken, phoneTaken, err := s.FindConflicts(context.Background(), "u-1", "ann", "+998901234567")
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.True(t, phoneTaken)
}

func TestStorage_UpdateUser(t *testing.T) {
	t.Run("only provided fields are set", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectExec(`UPDATE users SET fullname = \$1, phone = \$2, updated_at = now\(\) WHERE id = \$3`).
			WithArgs("Ann Lee", "+998901234567", "u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.UpdateUser(context.Background(), "u-1", models.UserPatch{
			Fullname: models.StringPtr("Ann Lee"),
			Phone:    models.StringPtr("+998901234567"),
		})
		require.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateUser(context.Background(), "u-9", models.UserPatch{Fullname: models.StringPtr("X")})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("username taken by concurrent writer", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectExec("UPDATE users SET").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		err := s.UpdateUser(context.Background(), "u-1", models.UserPatch{Username: models.StringPtr("ann")})
		assert.ErrorIs(t, err, storage.ErrUsernameExists)
	})
}

func TestStorage_DeleteUser(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").WithArgs("u-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteUser(context.Background(), "u-1"))
	assert.ErrorIs(t, s.DeleteUser(context.Background(), "u-2"), storage.ErrNotFound)
}

func TestStorage_ListUsers(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role <> \$1 AND \(username ILIKE \$2 OR fullname ILIKE \$2 OR phone ILIKE \$2\) AND role = \$3`).
		WithArgs("ceo", `%50\%%`, "manager").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("ceo", `%50\%%`, "manager", int64(10), int64(10)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-11", "", "m11", "+998900000011", "manager", nil, "active", "h", now, now))

	users, total, err := s.ListUsers(context.Background(), models.UserFilter{
		Search: "50%", Role: models.RoleManager, Page: 2, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, users, 1)
	assert.Equal(t, "m11", users[0].Username)
	assert.Equal(t, "+998900000011", users[0].Phone)
}

func TestStorage_CEOExists(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("ceo").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.CEOExists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMapError(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), storage.ErrNotFound)

	unknown := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
	assert.Equal(t, error(unknown), mapError(unknown))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%ann%`, likePattern("ann"))
	assert.Equal(t, `%a\_b\%c\\%`, likePattern(`a_b%c\`))
}
