package update

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/user-account-service/internal/models"
	userservice "github.com/magabrotheeeer/user-account-service/internal/services/user"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id int, patch models.UserPatch) (int, error) {
	args := m.Called(ctx, id, patch)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUpdateHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		requestBody    string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное обновление одного поля",
			url:         "/users/1",
			requestBody: `{"city":"Paris"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, mock.MatchedBy(func(patch models.UserPatch) bool {
					return patch.City.Set && patch.City.Valid && patch.City.Value == "Paris" &&
						!patch.Username.Set
				})).Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"updated_count":1`,
		},
		{
			name:        "пустой патч отклоняется",
			url:         "/users/1",
			requestBody: `{}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, mock.Anything).
					Return(0, userservice.ErrNoFieldsProvided)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `no valid fields provided for update`,
		},
		{
			name:        "null в обязательном поле",
			url:         "/users/1",
			requestBody: `{"username":null}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, mock.Anything).
					Return(0, &models.NullFieldError{Field: "username"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field username should not be null`,
		},
		{
			name:           "некорректный JSON",
			url:            "/users/1",
			requestBody:    `not a json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode request`,
		},
		{
			name:           "некорректный id в url",
			url:            "/users/abc",
			requestBody:    `{"city":"Paris"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name:        "обновление несуществующего id отдается успехом",
			url:         "/users/999",
			requestBody: `{"city":"Paris"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 999, mock.Anything).Return(0, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"updated_count":0`,
		},
		{
			name:        "ошибка сервиса",
			url:         "/users/1",
			requestBody: `{"city":"Paris"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, mock.Anything).
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not update user`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			router := chi.NewRouter()
			router.Put("/users/{id}", handler.ServeHTTP)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}
