// Package session реализует серверное хранилище сессий поверх Redis.
//
// Сессия связывает непрозрачный идентификатор, выдаваемый клиенту в cookie,
// с идентификатором аутентифицированного пользователя. Время жизни сессии
// управляется хранилищем и продлевается при каждом успешном обращении.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/user-account-service/internal/config"
)

// ErrSessionNotFound возвращается, когда сессия отсутствует или истекла.
var ErrSessionNotFound = errors.New("session not found")

// Store хранит сессии в Redis под ключами вида session:<uuid>.
type Store struct {
	db         *redis.Client
	cookieName string
	ttl        time.Duration
}

// New создает хранилище сессий на уже установленном клиенте Redis.
func New(db *redis.Client, cfg config.Session) *Store {
	return &Store{
		db:         db,
		cookieName: cfg.CookieName,
		ttl:        cfg.SessionTTL,
	}
}

// Create выдает новый идентификатор сессии для пользователя userID.
func (s *Store) Create(ctx context.Context, userID int) (string, error) {
	const op = "session.Create"
	sessionID := uuid.NewString()
	if err := s.db.Set(ctx, sessionKey(sessionID), strconv.Itoa(userID), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sessionID, nil
}

// GetUserID возвращает идентификатор пользователя по сессии
// и продлевает ее время жизни.
func (s *Store) GetUserID(ctx context.Context, sessionID string) (int, error) {
	const op = "session.GetUserID"
	val, err := s.db.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Expire(ctx, sessionKey(sessionID), s.ttl).Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return userID, nil
}

// Destroy удаляет сессию. Удаление несуществующей сессии не является ошибкой.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	const op = "session.Destroy"
	if err := s.db.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// WriteCookie устанавливает HttpOnly cookie с идентификатором сессии.
func (s *Store) WriteCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie сбрасывает cookie сессии на клиенте.
func (s *Store) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie извлекает идентификатор сессии из запроса.
// Возвращает пустую строку, если cookie отсутствует.
func (s *Store) ReadCookie(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
