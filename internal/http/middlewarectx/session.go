// Package middlewarectx содержит HTTP middleware для восстановления
// принципала из серверной сессии.
//
// SessionMiddleware читает cookie сессии, находит по ней идентификатор
// пользователя в хранилище сессий и регидрирует полную запись пользователя
// в контекст запроса. Анонимные запросы проходят дальше без принципала;
// требование аутентификации накладывается отдельным RequireUser.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-account-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-account-service/internal/models"
	authservice "github.com/magabrotheeeer/user-account-service/internal/services/auth"
	"github.com/magabrotheeeer/user-account-service/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// CurrentUser — ключ для записи пользователя в контексте
	CurrentUser Key = "user"
	// SessionID — ключ для идентификатора текущей сессии в контексте
	SessionID Key = "session_id"
)

// SessionStore описывает интерфейс серверного хранилища сессий.
type SessionStore interface {
	GetUserID(ctx context.Context, sessionID string) (int, error)
	Destroy(ctx context.Context, sessionID string) error
	ReadCookie(r *http.Request) string
	ClearCookie(w http.ResponseWriter)
}

// PrincipalResolver восстанавливает запись пользователя по идентификатору
// принципала из сессии.
type PrincipalResolver interface {
	DeserializeUser(ctx context.Context, id int) (*models.User, error)
}

// UserFromContext возвращает аутентифицированного пользователя запроса.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok && user != nil
}

// SessionIDFromContext возвращает идентификатор текущей сессии запроса.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionID).(string)
	return sessionID, ok && sessionID != ""
}

// SessionMiddleware возвращает middleware, восстанавливающее принципала
// из cookie сессии.
//
// Просроченная или осиротевшая сессия (пользователь удален) уничтожается,
// cookie сбрасывается, запрос продолжается как анонимный.
func SessionMiddleware(store SessionStore, resolver PrincipalResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			sessionID := store.ReadCookie(r)
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userID, err := store.GetUserID(r.Context(), sessionID)
			if err != nil {
				if !errors.Is(err, session.ErrSessionNotFound) {
					log.Error("failed to look up session", sl.Err(err))
				}
				store.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.DeserializeUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, authservice.ErrUserNotFound) {
					_ = store.Destroy(r.Context(), sessionID)
				} else {
					log.Error("failed to rehydrate principal", sl.Err(err))
				}
				store.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUser, user)
			ctx = context.WithValue(ctx, SessionID, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser возвращает middleware, перенаправляющее анонимные запросы
// на страницу входа.
func RequireUser(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
