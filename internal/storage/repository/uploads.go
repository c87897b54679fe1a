package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// CreateUpload записывает метаданные загруженного файла и возвращает ID записи.
func (s *Storage) CreateUpload(ctx context.Context, u models.Upload) (string, error) {
	const op = "storage.CreateUpload"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO uploads (user_id, location, where_used)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var id string
	if err := s.DB.QueryRowContext(ctx, query, nullable(u.UserID), u.Location, nullable(u.WhereUsed)).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// ListOrphanUploads возвращает неиспользуемые загрузки, созданные раньше before.
func (s *Storage) ListOrphanUploads(ctx context.Context, before time.Time) ([]models.Upload, error) {
	const op = "storage.ListOrphanUploads"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, COALESCE(user_id::text, ''), location, in_use, COALESCE(where_used, ''), created_at
			  FROM uploads
			  WHERE in_use = false AND created_at < $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.UserID, &u.Location, &u.InUse, &u.WhereUsed, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uploads, nil
}

// DeleteUpload удаляет запись о загрузке.
func (s *Storage) DeleteUpload(ctx context.Context, id string) error {
	const op = "storage.DeleteUpload"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return requireAffected(res, op)
}
