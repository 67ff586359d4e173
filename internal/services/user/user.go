// Package services содержит бизнес-логику CRUD-операций над учётными
// записями пользователей, включая кеширование чтения по id.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/user-account-service/internal/lib/password"
	"github.com/magabrotheeeer/user-account-service/internal/models"
	"github.com/magabrotheeeer/user-account-service/internal/storage/repository"
)

// ErrUserNotFound — запрошенный пользователь отсутствует.
var ErrUserNotFound = errors.New("user not found")

// ErrNoFieldsProvided — патч обновления не содержит ни одного поля.
// Возвращается до обращения к хранилищу.
var ErrNoFieldsProvided = errors.New("no fields provided for update")

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser добавляет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int, error)
	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	// ListUsers возвращает всех пользователей по возрастанию id.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// UpdateUser применяет патч и возвращает число обновленных строк.
	UpdateUser(ctx context.Context, id int, patch models.UserPatch) (int, error)
	// DeleteUser удаляет пользователя и возвращает число удаленных строк.
	DeleteUser(ctx context.Context, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// UserService реализует бизнес-логику работы с учётными записями.
type UserService struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, cache Cache, log *slog.Logger) *UserService {
	return &UserService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает всех пользователей, отсортированных по id по возрастанию.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// GetByID возвращает пользователя по id, используя кеш или репозиторий.
func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	var result *models.User
	cacheKey := fmt.Sprintf("user:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Create сохраняет нового пользователя, хэшируя переданный пароль,
// и возвращает созданную запись.
func (s *UserService) Create(ctx context.Context, user models.User, rawPassword string) (*models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hashed

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	s.log.Info("created new user", slog.Int("id", id))

	cacheKey := fmt.Sprintf("user:%d", id)
	if err := s.cache.Set(cacheKey, &user, time.Hour); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return &user, nil
}

// Update применяет частичное обновление к записи пользователя.
//
// Пустой патч отклоняется до обращения к хранилищу, явный null в
// обязательном поле — ошибкой валидации с именем поля. Переданный пароль
// хэшируется перед записью. Ноль обновленных строк успехом не считается
// ошибкой и отражается в возвращаемом счетчике.
func (s *UserService) Update(ctx context.Context, id int, patch models.UserPatch) (int, error) {
	if patch.IsEmpty() {
		return 0, ErrNoFieldsProvided
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	if patch.Password.Set && patch.Password.Valid {
		hashed, err := password.GetHash(patch.Password.Value)
		if err != nil {
			return 0, err
		}
		patch.Password.Value = hashed
	}

	count, err := s.repo.UpdateUser(ctx, id, patch)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated user in storage", slog.Int("id", id), slog.Int("count", count))

	cacheKey := fmt.Sprintf("user:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// Remove удаляет пользователя по id и инвалидирует кеш.
// Удаление несуществующего id возвращает нулевой счетчик без ошибки.
func (s *UserService) Remove(ctx context.Context, id int) (int, error) {
	cacheKey := fmt.Sprintf("user:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return 0, err
	}
	return count, nil
}
