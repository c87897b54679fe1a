package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

const userColumns = `id, fullname, username, phone, role, section, status, password_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u              models.User
		phone, section sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Fullname, &u.Username, &phone, &u.Role, &section,
		&u.Status, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.Section = section.String
	return &u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateUser сохраняет пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (string, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO users (fullname, username, phone, role, section, status, password_hash)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id string
	if err := s.DB.QueryRowContext(ctx, query,
		u.Fullname, u.Username, nullable(u.Phone), u.Role, nullable(u.Section), u.Status, u.PasswordHash,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// CEOExists сообщает, зарегистрирован ли пользователь с ролью ceo.
func (s *Storage) CEOExists(ctx context.Context) (bool, error) {
	const op = "storage.CEOExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`
	if err := s.DB.QueryRowContext(ctx, query, models.RoleCEO).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// FindConflicts проверяет, заняты ли username и phone другими пользователями.
// excludeID исключает из проверки самого обновляемого пользователя; пустые
// значения не проверяются.
func (s *Storage) FindConflicts(ctx context.Context, excludeID, username, phone string) (usernameTaken, phoneTaken bool, err error) {
	const op = "storage.FindConflicts"
	if err := checkCtx(ctx, op); err != nil {
		return false, false, err
	}

	query := `SELECT
				COALESCE(bool_or(username = $2), false),
				COALESCE(bool_or(phone = $3), false)
			  FROM users
			  WHERE ($1 = '' OR id::text <> $1)
			    AND (($2 <> '' AND username = $2) OR ($3 <> '' AND phone = $3))`
	if err := s.DB.QueryRowContext(ctx, query, excludeID, username, phone).Scan(&usernameTaken, &phoneTaken); err != nil {
		return false, false, fmt.Errorf("%s: %w", op, err)
	}
	return usernameTaken, phoneTaken, nil
}

// UpdateUser применяет к пользователю только заданные поля патча.
func (s *Storage) UpdateUser(ctx context.Context, id string, p models.UserPatch) error {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if p.Fullname != nil {
		add("fullname", *p.Fullname)
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.Phone != nil {
		add("phone", nullable(*p.Phone))
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.Section != nil {
		add("section", nullable(*p.Section))
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return requireAffected(res, op)
}

// DeleteUser удаляет пользователя.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return requireAffected(res, op)
}

// ListUsers возвращает страницу пользователей (кроме ceo), новые первыми,
// и общее число подходящих под фильтр записей.
func (s *Storage) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	where := []string{"role <> $1"}
	args := []any{models.RoleCEO}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := "$" + strconv.Itoa(len(args))
		where = append(where, "(username ILIKE "+n+" OR fullname ILIKE "+n+" OR phone ILIKE "+n+")")
	}
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, f.Limit, f.Offset())
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0, f.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}
