package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-account-service/internal/models"
	authservice "github.com/magabrotheeeer/user-account-service/internal/services/auth"
	"github.com/magabrotheeeer/user-account-service/internal/session"
)

type SessionStoreMock struct {
	mock.Mock
}

func (m *SessionStoreMock) GetUserID(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *SessionStoreMock) Destroy(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *SessionStoreMock) ReadCookie(r *http.Request) string {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (m *SessionStoreMock) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "", MaxAge: -1})
}

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) DeserializeUser(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func runMiddleware(t *testing.T, store *SessionStoreMock, resolver *ResolverMock, cookie string) (*models.User, bool, *httptest.ResponseRecorder) {
	t.Helper()

	var gotUser *models.User
	var found bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser, found = UserFromContext(r.Context())
	})

	handler := SessionMiddleware(store, resolver, newNoopLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: cookie})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return gotUser, found, rec
}

func TestSessionMiddleware_AuthenticatedRequest(t *testing.T) {
	store := new(SessionStoreMock)
	store.On("GetUserID", mock.Anything, "sess1").Return(7, nil).Once()

	user := &models.User{ID: 7, Username: "alice"}
	resolver := new(ResolverMock)
	resolver.On("DeserializeUser", mock.Anything, 7).Return(user, nil).Once()

	gotUser, found, _ := runMiddleware(t, store, resolver, "sess1")

	require.True(t, found)
	assert.Equal(t, user, gotUser)
	store.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestSessionMiddleware_NoCookieIsAnonymous(t *testing.T) {
	store := new(SessionStoreMock)
	resolver := new(ResolverMock)

	_, found, _ := runMiddleware(t, store, resolver, "")

	assert.False(t, found)
	store.AssertNotCalled(t, "GetUserID")
}

func TestSessionMiddleware_ExpiredSessionIsAnonymous(t *testing.T) {
	store := new(SessionStoreMock)
	store.On("GetUserID", mock.Anything, "dead").
		Return(0, session.ErrSessionNotFound).Once()
	resolver := new(ResolverMock)

	_, found, rec := runMiddleware(t, store, resolver, "dead")

	assert.False(t, found)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionMiddleware_OrphanedSessionDestroyed(t *testing.T) {
	store := new(SessionStoreMock)
	store.On("GetUserID", mock.Anything, "orphan").Return(13, nil).Once()
	store.On("Destroy", mock.Anything, "orphan").Return(nil).Once()

	resolver := new(ResolverMock)
	resolver.On("DeserializeUser", mock.Anything, 13).
		Return(nil, authservice.ErrUserNotFound).Once()

	_, found, _ := runMiddleware(t, store, resolver, "orphan")

	assert.False(t, found)
	store.AssertExpectations(t)
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireUser(newNoopLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireUser_PassesAuthenticated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireUser(newNoopLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	ctx := context.WithValue(req.Context(), CurrentUser, &models.User{ID: 1})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
}
