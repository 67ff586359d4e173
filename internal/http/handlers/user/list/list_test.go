package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/user-account-service/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListHandler_Success(t *testing.T) {
	users := []*models.User{
		{ID: 1, Username: "alice", PasswordHash: "hash-a"},
		{ID: 2, Username: "bob", PasswordHash: "hash-b"},
	}

	mockService := new(MockService)
	mockService.On("List", mock.Anything).Return(users, nil).Once()

	handler := New(newNoopLogger(), mockService)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"list_count":2`)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "hash-a")
}

func TestListHandler_Empty(t *testing.T) {
	mockService := new(MockService)
	mockService.On("List", mock.Anything).Return([]*models.User{}, nil).Once()

	handler := New(newNoopLogger(), mockService)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"list_count":0`)
	assert.Contains(t, rec.Body.String(), `"users":[]`)
}

func TestListHandler_ServiceError(t *testing.T) {
	mockService := new(MockService)
	mockService.On("List", mock.Anything).Return(nil, errors.New("db error")).Once()

	handler := New(newNoopLogger(), mockService)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not list users")
	assert.NotContains(t, rec.Body.String(), "db error")
}
