// Package logout реализует HTTP-обработчик завершения сессии.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-account-service/internal/http/response"
	"github.com/magabrotheeeer/user-account-service/internal/lib/sl"
)

// SessionManager уничтожает серверную сессию и сбрасывает cookie.
type SessionManager interface {
	Destroy(ctx context.Context, sessionID string) error
	ClearCookie(w http.ResponseWriter)
}

// Handler обрабатывает запросы на выход из системы.
type Handler struct {
	log      *slog.Logger
	sessions SessionManager
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions SessionManager) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
	}
}

// ServeHTTP уничтожает текущую сессию и перенаправляет на анонимную
// стартовую страницу. Выход без активной сессии не является ошибкой.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if sessionID, ok := middlewarectx.SessionIDFromContext(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), sessionID); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		log.Info("session destroyed")
	}
	h.sessions.ClearCookie(w)

	http.Redirect(w, r, "/", http.StatusFound)
}
