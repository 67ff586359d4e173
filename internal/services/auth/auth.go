// Package services содержит логику бизнес-уровня для аутентификации пользователей
// и сериализации принципала сессии.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/user-account-service/internal/lib/password"
	"github.com/magabrotheeeer/user-account-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-account-service/internal/models"
	"github.com/magabrotheeeer/user-account-service/internal/storage/repository"
)

// Типизированные причины отказа аутентификации. Наружу обе причины
// сворачиваются в общий ответ, различие используется только в логах.
var (
	// ErrUserNotFound — пользователь с таким username не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordMismatch — пароль не соответствует сохраненному хэшу.
	ErrPasswordMismatch = errors.New("password mismatch")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID возвращает пользователя по идентификатору.
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

// AuthService отвечает за проверку учетных данных, регистрацию
// и восстановление принципала сессии.
type AuthService struct {
	users UserRepository
	log   *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, log *slog.Logger) *AuthService {
	return &AuthService{
		users: users,
		log:   log,
	}
}

// Authenticate проверяет пару username/password по сохраненным учетным данным.
//
// Возвращает полную запись пользователя при успехе. Причина отказа различима
// через errors.Is: ErrUserNotFound, ErrPasswordMismatch. Прочие ошибки —
// сбои хранилища, они логируются в месте возникновения.
func (s *AuthService) Authenticate(ctx context.Context, username, rawPassword string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("failed to look up user", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrPasswordMismatch
	}
	return user, nil
}

// Register создает нового пользователя с хэшированием пароля
// и возвращает созданную запись.
func (s *AuthService) Register(ctx context.Context, username, rawPassword, email, firstName, lastName string) (*models.User, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: hashed,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		s.log.Error("failed to create user", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id
	return &user, nil
}

// SerializeUser сводит аутентифицированного пользователя к минимальному
// долговременному идентификатору для хранения в сессии. Сериализация
// намеренно с потерями: в сессию уходит только id, никогда — хэш пароля.
func (s *AuthService) SerializeUser(user *models.User) int {
	return user.ID
}

// DeserializeUser восстанавливает запись пользователя по идентификатору
// принципала из сессии. Вызывается на каждом аутентифицированном запросе.
func (s *AuthService) DeserializeUser(ctx context.Context, id int) (*models.User, error) {
	const op = "services.auth.DeserializeUser"

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("failed to rehydrate user", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
