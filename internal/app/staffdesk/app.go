// Package staffdesk собирает HTTP-приложение: хранилище, сервисы, маршруты
// и фоновую очистку загрузок.
package staffdesk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/afero"

	"github.com/magabrotheeeer/staffdesk/internal/config"
	"github.com/magabrotheeeer/staffdesk/internal/lib/jwt"
	"github.com/magabrotheeeer/staffdesk/internal/lib/ratelimit"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
	"github.com/magabrotheeeer/staffdesk/internal/lib/validation"
	"github.com/magabrotheeeer/staffdesk/internal/media"
	"github.com/magabrotheeeer/staffdesk/internal/migrations"
	"github.com/magabrotheeeer/staffdesk/internal/objectstore"
	authservice "github.com/magabrotheeeer/staffdesk/internal/services/auth"
	"github.com/magabrotheeeer/staffdesk/internal/services/scheduler"
	uploadservice "github.com/magabrotheeeer/staffdesk/internal/services/upload"
	userservice "github.com/magabrotheeeer/staffdesk/internal/services/user"
	"github.com/magabrotheeeer/staffdesk/internal/storage/repository"
)

const (
	dbAttempts      = 10
	dbRetryDelay    = 3 * time.Second
	limiterCleanup  = time.Minute
	defaultShutdown = 15 * time.Second
)

// App — HTTP-сервер с фоновыми задачами.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	limiter   *ratelimit.Limiter
	scheduler *scheduler.Scheduler
	shutdown  time.Duration
}

func waitForDB(ctx context.Context, dsn string, logger *slog.Logger) (*repository.Storage, error) {
	var lastErr error
	for attempt := 1; attempt <= dbAttempts; attempt++ {
		db, err := repository.New(ctx, dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database not ready", slog.Int("attempt", attempt), sl.Err(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}
	return nil, fmt.Errorf("database not ready after retries: %w", lastErr)
}

// New создает приложение: подключает базу, накатывает миграции, поднимает
// клиента объектного хранилища и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := waitForDB(ctx, cfg.StorageConnectionString, logger)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:     cfg.Endpoint,
		Region:       cfg.Region,
		Bucket:       cfg.Bucket,
		AccessKey:    cfg.AccessKey,
		SecretKey:    cfg.SecretKey,
		Folder:       cfg.Folder,
		UsePathStyle: cfg.UsePathStyle,
		PublicURL:    cfg.PublicURL,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	uploads := uploadservice.New(logger, db, store,
		media.NewImageEncoder(cfg.ImageQuality),
		media.NewPDFCompressor(afero.NewOsFs(), cfg.ScratchDir, cfg.Ghostscript, cfg.PDFTimeout, nil),
		uploadservice.Options{Retention: cfg.Retention, Concurrency: cfg.Upload.Concurrency},
	)

	loc, err := cfg.Reaper.Location()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reaper timezone: %w", err)
	}
	reaper := scheduler.New(logger, uploads, loc, cfg.Reaper.Timeout)
	if err = reaper.Schedule(cfg.Schedule); err != nil {
		_ = db.Close()
		return nil, err
	}

	limiter := ratelimit.New(ratelimit.PerProcess(cfg.RateLimit.Max, runtime.NumCPU()), cfg.RateLimit.Window())

	router := chi.NewRouter()
	registry, err := RegisterRoutes(router, Deps{
		Log:        logger,
		Auth:       authservice.New(logger, db, tokens, cfg.RegKey),
		Users:      userservice.New(logger, db),
		Uploads:    uploads,
		Tokens:     tokens,
		UserStore:  db,
		Limiter:    limiter,
		Validator:  validation.New(),
		TrustProxy: cfg.TrustProxy,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("routes registered", slog.Int("modules", len(registry.Modules())))

	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdown
	}

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		limiter:   limiter,
		scheduler: reaper,
		shutdown:  shutdown,
	}, nil
}

// Run запускает сервер и фоновые задачи и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	go a.limiter.Cleanup(ctx, limiterCleanup)
	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.shutdown)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	a.scheduler.Stop()
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close database", sl.Err(cerr))
	}
	return err
}
