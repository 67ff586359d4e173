// Package useraccountservice собирает приложение: хранилище, миграции,
// Redis, сервисы, маршруты и HTTP-сервер.
package useraccountservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/user-account-service/internal/cache"
	"github.com/magabrotheeeer/user-account-service/internal/config"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/pages"
	"github.com/magabrotheeeer/user-account-service/internal/migrations"
	authservice "github.com/magabrotheeeer/user-account-service/internal/services/auth"
	userservice "github.com/magabrotheeeer/user-account-service/internal/services/user"
	"github.com/magabrotheeeer/user-account-service/internal/session"
	"github.com/magabrotheeeer/user-account-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создает приложение: подключает PostgreSQL, применяет миграции,
// устанавливает соединение с Redis и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	sessions := session.New(cacheRedis.Db, cfg.Session)
	auth := authservice.NewAuthService(db, logger)
	users := userservice.NewUserService(db, cacheRedis, logger)

	pagesHandler, err := pages.New(logger)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, auth, users, sessions, pagesHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до ошибки или отмены контекста.
// При отмене сервер завершается gracefully с таймаутом.
func (a *App) Run(ctx context.Context) error {
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

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
