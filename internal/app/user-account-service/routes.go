// Package useraccountservice предоставляет маршруты для основного приложения.
package useraccountservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/pages"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/user-account-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/user-account-service/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/user-account-service/internal/services/auth"
	userservice "github.com/magabrotheeeer/user-account-service/internal/services/user"
	"github.com/magabrotheeeer/user-account-service/internal/session"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, auth *authservice.AuthService, users *userservice.UserService, sessions *session.Store, pagesHandler *pages.Handler) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	// Принципал восстанавливается из сессии на каждом запросе,
	// требование аутентификации накладывается точечно ниже.
	r.Use(middlewarectx.SessionMiddleware(sessions, auth, logger))

	// Страницы
	r.Get("/", pagesHandler.Index)
	r.Get("/login", pagesHandler.Login)
	r.Post("/login", login.New(logger, auth, sessions).ServeHTTP)
	r.Get("/register", pagesHandler.Register)
	r.Post("/register", register.New(logger, auth, sessions).ServeHTTP)

	// Личный кабинет доступен только аутентифицированным
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireUser(logger))
		r.Get("/dashboard", pagesHandler.Dashboard)
	})

	// JSON API аутентификации
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", register.New(logger, auth, sessions).ServeHTTP)
		r.Post("/login", login.NewAPI(logger, auth, sessions).ServeHTTP)
		r.Post("/logout", logout.New(logger, sessions).ServeHTTP)
	})

	// CRUD учётных записей
	r.Route("/users", func(r chi.Router) {
		r.Post("/", create.New(logger, users).ServeHTTP)
		r.Get("/", list.New(logger, users).ServeHTTP)
		r.Get("/{id}", read.New(logger, users).ServeHTTP)
		r.Put("/{id}", update.New(logger, users).ServeHTTP)
		r.Delete("/{id}", remove.New(logger, users).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
