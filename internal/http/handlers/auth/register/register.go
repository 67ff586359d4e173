// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Создает учётную запись (пароль хэшируется на бизнес-уровне), сразу
// устанавливает серверную сессию для нового пользователя и возвращает
// JSON с созданной записью. Хэш пароля в ответ не попадает.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-account-service/internal/http/response"
	"github.com/magabrotheeeer/user-account-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-account-service/internal/models"
)

// Request — входные данные для регистрации
type Request struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Email     string `json:"email" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, username, password, email, firstName, lastName string) (*models.User, error)
	SerializeUser(user *models.User) int
}

// SessionManager устанавливает серверную сессию для нового пользователя.
type SessionManager interface {
	Create(ctx context.Context, userID int) (string, error)
	WriteCookie(w http.ResponseWriter, sessionID string)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionManager
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions SessionManager) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// decodeRequest принимает данные регистрации как JSON-тело, так и HTML-форму
// страницы регистрации.
func decodeRequest(r *http.Request) (Request, error) {
	var req Request
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		req.Email = r.PostFormValue("email")
		req.FirstName = r.PostFormValue("first_name")
		req.LastName = r.PostFormValue("last_name")
		return req, nil
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает учётную запись, устанавливает cookie сессии и возвращает запись пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 200 {object} map[string]any "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	user, err := h.service.Register(r.Context(), req.Username, req.Password,
		req.Email, req.FirstName, req.LastName)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
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

	log.Info("user registered", slog.String("username", user.Username), slog.Int("id", user.ID))
	render.JSON(w, r, map[string]any{
		"success": true,
		"user":    user,
	})
}
