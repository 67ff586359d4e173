package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/user-account-service/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с заданным id и возвращает его
func (f *TestDataFactory) CreateUser(t *testing.T, id int, username, passwordHash, email string) models.User {
	t.Helper()
	user := models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
	}
	_, err := f.storage.DB.Exec(`INSERT INTO users (id, username, password, email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.PasswordHash, user.Email, user.FirstName, user.LastName)
	require.NoError(t, err)
	return user
}

// VerifyUserColumn проверяет значение одной колонки пользователя в БД
func (f *TestDataFactory) VerifyUserColumn(t *testing.T, id int, column, expected string) {
	t.Helper()
	var got string
	err := f.storage.DB.QueryRow("SELECT "+column+" FROM users WHERE id = $1", id).Scan(&got)
	require.NoError(t, err)
	require.Equal(t, expected, got)
}

// CountUsers возвращает количество пользователей в таблице
func (f *TestDataFactory) CountUsers(t *testing.T) int {
	t.Helper()
	var count int
	err := f.storage.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	require.NoError(t, err)
	return count
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			if err = storage.DB.Ping(); err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = storage.DB.Exec(`
        DROP TABLE IF EXISTS users CASCADE;

        CREATE TABLE users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            email TEXT NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            phone_number TEXT,
            address TEXT,
            city TEXT,
            country TEXT,
            zip_code TEXT
        );`)
	require.NoError(t, err, "failed to create schema")

	cleanup := func() {
		_ = storage.DB.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return storage, cleanup
}
