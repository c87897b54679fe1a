// Package upload принимает файлы пользователей, нормализует их и кладёт
// в объектное хранилище, а также удаляет неиспользуемые загрузки.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
	"github.com/magabrotheeeer/staffdesk/internal/media"
	"github.com/magabrotheeeer/staffdesk/internal/metrics"
	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

// ReapFailed — число удалённых записей, о котором сообщает неудачный запуск очистки.
const ReapFailed = -1

const (
	kindImage    = "image"
	kindDocument = "document"
	kindUnknown  = "unsupported"
)

// Transformer преобразует содержимое файла.
type Transformer interface {
	Transform(ctx context.Context, data []byte) ([]byte, error)
}

// ObjectStore — объектное хранилище файлов.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, location string) error
	Exists(ctx context.Context, location string) (bool, error)
}

// Repository хранит метаданные загрузок.
type Repository interface {
	CreateUpload(ctx context.Context, u models.Upload) (string, error)
	ListOrphanUploads(ctx context.Context, before time.Time) ([]models.Upload, error)
	DeleteUpload(ctx context.Context, id string) error
}

// Options — настройки сервиса загрузок.
type Options struct {
	Retention   time.Duration // Возраст, после которого неиспользуемая загрузка удаляется
	Concurrency int           // Сколько файлов пакета обрабатывается одновременно
}

// Service обрабатывает загрузки.
type Service struct {
	log         *slog.Logger
	repo        Repository
	store       ObjectStore
	images      Transformer
	documents   Transformer
	retention   time.Duration
	concurrency int
	now         func() time.Time
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository, store ObjectStore, images, documents Transformer, opts Options) *Service {
	if opts.Retention <= 0 {
		opts.Retention = 24 * time.Hour
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Service{
		log:         log,
		repo:        repo,
		store:       store,
		images:      images,
		documents:   documents,
		retention:   opts.Retention,
		concurrency: opts.Concurrency,
		now:         time.Now,
	}
}

type result struct {
	key         string
	contentType string
	data        []byte
}

// process выбирает преобразование по MIME-типу. nil без ошибки означает,
// что файл не удалось превратить в загружаемый объект.
func (s *Service) process(ctx context.Context, f models.File) (*result, string, error) {
	switch {
	case strings.HasPrefix(f.MIMEType, "image/"):
		data, err := s.images.Transform(ctx, f.Data)
		if errors.Is(err, media.ErrDecode) {
			s.log.Warn("image cannot be decoded", slog.String("name", f.Name), sl.Err(err))
			return nil, kindImage, nil
		}
		if err != nil {
			return nil, kindImage, err
		}
		return &result{
			key:         kindImage + "/" + uuid.NewString() + media.ImageExt,
			contentType: media.ImageContentType,
			data:        data,
		}, kindImage, nil

	case f.MIMEType == media.PDFContentType:
		data, err := s.documents.Transform(ctx, f.Data)
		if errors.Is(err, media.ErrTimeout) {
			return nil, kindDocument, fmt.Errorf("%w: %w", httperr.GatewayTimeout("PDF compression timed out"), err)
		}
		if err != nil {
			return nil, kindDocument, fmt.Errorf("%w: %w", httperr.Internal("Error compressing PDF"), err)
		}
		return &result{
			key:         kindDocument + "/" + uuid.NewString() + media.PDFExt,
			contentType: media.PDFContentType,
			data:        data,
		}, kindDocument, nil
	}

	return nil, kindUnknown, nil
}

// UploadOne обрабатывает один файл, сохраняет его и возвращает адрес.
func (s *Service) UploadOne(ctx context.Context, userID string, f *models.File) (location string, err error) {
	const op = "services.upload.UploadOne"

	if f == nil {
		return "", httperr.NotFound("File not provided")
	}

	kind := kindUnknown
	defer func() {
		res := "success"
		if err != nil {
			res = "error"
		}
		metrics.ObserveUpload(kind, res)
	}()

	res, kind, err := s.process(ctx, *f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if res == nil {
		return "", httperr.BadRequest("File not upload")
	}

	location, err = s.store.Upload(ctx, res.key, res.data, res.contentType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if location == "" {
		return "", httperr.BadRequest("File not upload")
	}

	if _, err := s.repo.CreateUpload(ctx, models.Upload{UserID: userID, Location: location}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("file uploaded", slog.String("kind", kind), slog.String("location", location))
	return location, nil
}

// UploadMany обрабатывает файлы параллельно. Неудачные файлы пропускаются,
// порядок остальных совпадает с порядком на входе.
func (s *Service) UploadMany(ctx context.Context, userID string, files []models.File) ([]string, error) {
	if len(files) == 0 {
		return nil, httperr.NotFound("Files not provided")
	}

	slots := make([]string, len(files))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range files {
		g.Go(func() error {
			location, err := s.UploadOne(ctx, userID, &files[i])
			if err != nil {
				s.log.Warn("file skipped", slog.String("name", files[i].Name), sl.Err(err))
				return nil
			}
			slots[i] = location
			return nil
		})
	}
	_ = g.Wait()

	locations := make([]string, 0, len(slots))
	for _, l := range slots {
		if l != "" {
			locations = append(locations, l)
		}
	}
	if len(locations) == 0 {
		return nil, httperr.BadRequest("Files not uploaded")
	}
	return locations, nil
}

// DeleteOrphans удаляет неиспользуемые загрузки старше срока хранения.
// Запись удаляется только после удаления объекта или если объекта уже нет.
// Возвращает число удалённых записей.
func (s *Service) DeleteOrphans(ctx context.Context) (int, error) {
	const op = "services.upload.DeleteOrphans"

	orphans, err := s.repo.ListOrphanUploads(ctx, s.now().Add(-s.retention))
	if err != nil {
		return ReapFailed, fmt.Errorf("%s: %w", op, err)
	}

	deleted := 0
	for _, u := range orphans {
		if err := ctx.Err(); err != nil {
			return deleted, fmt.Errorf("%s: %w", op, err)
		}

		log := s.log.With(slog.String("upload_id", u.ID), slog.String("location", u.Location))

		if err := s.store.Delete(ctx, u.Location); err != nil {
			exists, exErr := s.store.Exists(ctx, u.Location)
			if exErr != nil || exists {
				log.Warn("object not deleted, keeping record", sl.Err(err))
				continue
			}
		}

		if err := s.repo.DeleteUpload(ctx, u.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Warn("upload record not deleted", sl.Err(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
