// Package login реализует HTTP-обработчик для запросов аутентификации пользователей.
//
// В нём определяется структура Request для входных данных, выполняется декодирование JSON,
// проверка и валидация полей, а также делегирование проверки учетных данных сервису
// аутентификации. При успехе устанавливается серверная сессия; причина отказа
// (нет пользователя / неверный пароль) наружу не различается.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-account-service/internal/http/response"
	"github.com/magabrotheeeer/user-account-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-account-service/internal/models"
	authservice "github.com/magabrotheeeer/user-account-service/internal/services/auth"
)

// Request — структура входных данных для авторизации.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	SerializeUser(user *models.User) int
}

// SessionManager устанавливает серверную сессию для аутентифицированного
// пользователя.
type SessionManager interface {
	Create(ctx context.Context, userID int) (string, error)
	WriteCookie(w http.ResponseWriter, sessionID string)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис проверки учетных данных
	sessions SessionManager      // Хранилище серверных сессий
	validate *validator.Validate // Валидатор для проверки входных данных

	// respondJSON переключает ответ при успехе: JSON с записью пользователя
	// для маунта /auth, редирект на /dashboard для страницы входа.
	respondJSON bool
}

// New создает Handler страницы входа: успех отвечает редиректом на /dashboard.
func New(log *slog.Logger, service Service, sessions SessionManager) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// NewAPI создает Handler для маунта /auth: успех отвечает JSON с пользователем.
func NewAPI(log *slog.Logger, service Service, sessions SessionManager) *Handler {
	h := New(log, service, sessions)
	h.respondJSON = true
	return h
}

// decodeRequest принимает учетные данные как JSON-тело, так и HTML-форму
// страницы входа.
func decodeRequest(r *http.Request) (Request, error) {
	var req Request
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		return req, nil
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по имени и паролю, устанавливает cookie сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, err := decodeRequest(r)
	if err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// причина различается только в логах, клиент получает общий ответ
		switch {
		case errors.Is(err, authservice.ErrUserNotFound):
			log.Info("login rejected: user not found", slog.String("username", req.Username))
		case errors.Is(err, authservice.ErrPasswordMismatch):
			log.Info("login rejected: password mismatch", slog.String("username", req.Username))
		default:
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		render.JSON(w, r, map[string]any{
			"success": false,
			"message": "Invalid username or password",
		})
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), h.service.SerializeUser(user))
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	h.sessions.WriteCookie(w, sessionID)

	log.Info("login success", slog.String("username", req.Username))
	if h.respondJSON {
		render.JSON(w, r, map[string]any{
			"success": true,
			"user":    user,
		})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
