package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-account-service/internal/models"
	authservice "github.com/magabrotheeeer/user-account-service/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AuthServiceMock) SerializeUser(user *models.User) int {
	return user.ID
}

type SessionManagerMock struct {
	mock.Mock
}

func (m *SessionManagerMock) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *SessionManagerMock) WriteCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sessionID, HttpOnly: true})
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func doLogin(t *testing.T, handler *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	var bodyBytes []byte
	var err error
	switch v := body.(type) {
	case string:
		bodyBytes = []byte(v)
	default:
		bodyBytes, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler_SuccessRedirects(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}

	authMock := new(AuthServiceMock)
	authMock.On("Authenticate", mock.Anything, "alice", "hunter2").Return(user, nil).Once()

	sessionsMock := new(SessionManagerMock)
	sessionsMock.On("Create", mock.Anything, 1).Return("sess1", nil).Once()

	handler := New(newNoopLogger(), authMock, sessionsMock)

	rec := doLogin(t, handler, Request{Username: "alice", Password: "hunter2"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sess1", cookies[0].Value)

	authMock.AssertExpectations(t)
	sessionsMock.AssertExpectations(t)
}

func TestLoginHandler_APIRespondsJSON(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice", PasswordHash: "secret-hash"}

	authMock := new(AuthServiceMock)
	authMock.On("Authenticate", mock.Anything, "alice", "hunter2").Return(user, nil).Once()

	sessionsMock := new(SessionManagerMock)
	sessionsMock.On("Create", mock.Anything, 1).Return("sess1", nil).Once()

	handler := NewAPI(newNoopLogger(), authMock, sessionsMock)

	rec := doLogin(t, handler, Request{Username: "alice", Password: "hunter2"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, true, got["success"])

	userData, ok := got["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", userData["username"])
	// хэш пароля не должен попадать в ответ
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name    string
		authErr error
	}{
		{name: "unknown user", authErr: authservice.ErrUserNotFound},
		{name: "wrong password", authErr: authservice.ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			authMock.On("Authenticate", mock.Anything, "alice", "wrong").
				Return(nil, tt.authErr).Once()

			sessionsMock := new(SessionManagerMock)

			handler := New(newNoopLogger(), authMock, sessionsMock)

			rec := doLogin(t, handler, Request{Username: "alice", Password: "wrong"})

			assert.Equal(t, http.StatusOK, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, false, got["success"])
			assert.Equal(t, "Invalid username or password", got["message"])

			// сессия не устанавливается
			sessionsMock.AssertNotCalled(t, "Create")
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLoginHandler_FormEncoded(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}

	authMock := new(AuthServiceMock)
	authMock.On("Authenticate", mock.Anything, "alice", "hunter2").Return(user, nil).Once()

	sessionsMock := new(SessionManagerMock)
	sessionsMock.On("Create", mock.Anything, 1).Return("sess1", nil).Once()

	handler := New(newNoopLogger(), authMock, sessionsMock)

	form := url.Values{"username": {"alice"}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLoginHandler_StoreError(t *testing.T) {
	authMock := new(AuthServiceMock)
	authMock.On("Authenticate", mock.Anything, "alice", "hunter2").
		Return(nil, errors.New("connection refused")).Once()

	handler := New(newNoopLogger(), authMock, new(SessionManagerMock))

	rec := doLogin(t, handler, Request{Username: "alice", Password: "hunter2"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	// текст ошибки драйвера не утекает клиенту
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLoginHandler_InvalidJSON(t *testing.T) {
	handler := New(newNoopLogger(), new(AuthServiceMock), new(SessionManagerMock))

	rec := doLogin(t, handler, "not a json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestLoginHandler_ValidationError(t *testing.T) {
	handler := New(newNoopLogger(), new(AuthServiceMock), new(SessionManagerMock))

	rec := doLogin(t, handler, Request{Username: "alice"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "field Password is a required field")
}
