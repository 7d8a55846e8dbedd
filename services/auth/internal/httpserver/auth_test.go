package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/authclient"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
	"github.com/Skotchmaster/storefront/services/auth/internal/transport"
)

var testSecret = []byte("test-jwt-secret")

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	db, err := pkgdb.Open(ctx, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(ctx))
	svc := &service.AuthService{Repo: r, JWTSecret: testSecret}
	require.NoError(t, svc.EnsureUser(ctx, transport.Credentials{
		Email: "demo@example.com", Password: "demo1234", FirstName: "Demo", LastName: "User",
	}))

	e := echo.New()
	Register(e, &Deps{AuthHandler: &AuthHTTP{Svc: svc}, JWTSecret: testSecret})
	return e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func accessCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokens.AccessCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_SetsCookieAndMeResolvesUser(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"demo@example.com","password":"demo1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"demo@example.com"`)

	cookie := accessCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = doJSON(e, http.MethodGet, "/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Demo"`)
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "wrong password", body: `{"email":"demo@example.com","password":"nope"}`, code: http.StatusUnauthorized},
		{name: "unknown user", body: `{"email":"ghost@example.com","password":"demo1234"}`, code: http.StatusUnauthorized},
		{name: "bad email", body: `{"email":"demo","password":"demo1234"}`, code: http.StatusBadRequest},
		{name: "malformed", body: `{`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Nil(t, accessCookie(rec))
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(e, http.MethodPost, "/register", `{"email":"new@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/register", `{"email":"new@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, "/login", `{"email":"new@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe_RequiresCookie(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_ExpiresCookie(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(e, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := accessCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.MaxAge < 0 || cookie.Expires.Before(time.Now()))
}

func TestAuthClientAgainstService(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(newTestEcho(t))
	t.Cleanup(srv.Close)

	client := authclient.NewClient(srv.URL + "/login")
	require.NoError(t, client.Login(context.Background(), "demo@example.com", "demo1234"))

	err := client.Login(context.Background(), "demo@example.com", "bad")
	require.ErrorIs(t, err, authclient.ErrLoginRejected)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid email or password")
}
