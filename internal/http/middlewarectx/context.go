// Package middlewarectx содержит шаги HTTP-конвейера: аутентификацию, проверку
// ролей, валидацию, ограничение частоты запросов и приём файлов.
//
// Шаги не пишут ответ сами: они возвращают ошибку httperr, которую
// pipeline передаёт терминальному обработчику. Результаты шагов
// (пользователь, провалидированный запрос, файлы) кладутся в контекст
// типизированными значениями и читаются функциями этого пакета.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/staffdesk/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	CurrentUser Key = "user"
	// UploadedFiles — ключ для файлов, принятых из multipart-формы.
	UploadedFiles Key = "files"
)

type payloadKey[T any] struct{}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, CurrentUser, u)
}

// UserFrom возвращает пользователя, положенного Authenticate.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(CurrentUser).(*models.User)
	return u, ok && u != nil
}

// WithPayload кладёт провалидированный запрос в контекст.
func WithPayload[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, payloadKey[T]{}, v)
}

// Payload возвращает запрос типа T, положенный Validate.
func Payload[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(payloadKey[T]{}).(T)
	return v, ok
}

// WithFiles кладёт принятые файлы в контекст.
func WithFiles(ctx context.Context, files []models.File) context.Context {
	return context.WithValue(ctx, UploadedFiles, files)
}

// FilesFrom возвращает файлы, принятые Uploads.
func FilesFrom(ctx context.Context) []models.File {
	files, _ := ctx.Value(UploadedFiles).([]models.File)
	return files
}
