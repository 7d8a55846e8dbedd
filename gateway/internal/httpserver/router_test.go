package httpserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var testSecret = []byte("gateway-secret")

// pathEcho answers every request with "<name> <method> <path>".
func pathEcho(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, name+" "+r.Method+" "+r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsEcho(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"notification","title":"hi","message":"there"}`))
		_, _, _ = conn.ReadMessage()
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "push "+r.Method+" "+r.URL.Path)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, authURL, catalogURL, pushURL string) *httptest.Server {
	t.Helper()
	e := echo.New()
	require.NoError(t, Register(e, &Deps{
		AuthURL:    authURL,
		CatalogURL: catalogURL,
		PushURL:    pushURL,
		CSRFConfig: csrf.DefaultConfig(),
		JWTSecret:  testSecret,
	}))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRouting_PublicRoutes(t *testing.T) {
	t.Parallel()
	gw := newGateway(t, pathEcho(t, "auth").URL, pathEcho(t, "catalog").URL, wsEcho(t).URL)

	resp, err := http.Post(gw.URL+"/graphql", "application/json", strings.NewReader(`{"query":"{ products { id } }"}`))
	require.NoError(t, err)
	assert.Equal(t, "catalog POST /graphql", body(t, resp))

	resp, err = http.Post(gw.URL+"/auth/login", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "auth POST /login", body(t, resp))

	resp, err = http.Get(gw.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouting_WebsocketIsTunnelled(t *testing.T) {
	t.Parallel()
	gw := newGateway(t, pathEcho(t, "auth").URL, pathEcho(t, "catalog").URL, wsEcho(t).URL)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(gw.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notification","title":"hi","message":"there"}`, string(data))
}

func TestRouting_ProtectedRoutes(t *testing.T) {
	t.Parallel()
	gw := newGateway(t, pathEcho(t, "auth").URL, pathEcho(t, "catalog").URL, wsEcho(t).URL)

	token, err := tokens.NewAccessToken("user-1", "demo@example.com", time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	access := &http.Cookie{Name: tokens.AccessCookieName, Value: token}

	// anonymous
	req, _ := http.NewRequest(http.MethodPatch, gw.URL+"/admin/products/1/price", strings.NewReader(`{"price":5}`))
	req.Header.Set("Origin", gw.URL)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// fetch a csrf token
	req, _ = http.NewRequest(http.MethodGet, gw.URL+"/csrf", nil)
	req.AddCookie(access)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	csrfToken := resp.Header.Get("X-CSRF-Token")
	require.NotEmpty(t, csrfToken)

	send := func(method, path string, withAccess bool) *http.Response {
		req, _ := http.NewRequest(method, gw.URL+path, strings.NewReader(`{"price":5}`))
		req.Header.Set("Origin", gw.URL)
		req.Header.Set("X-CSRF-Token", csrfToken)
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: csrfToken})
		if withAccess {
			req.AddCookie(access)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp = send(http.MethodPatch, "/admin/products/1/price", false)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(http.MethodPatch, "/admin/products/1/price", true)
	assert.Equal(t, "catalog PATCH /admin/products/1/price", body(t, resp))

	resp = send(http.MethodPost, "/push/publish", true)
	assert.Equal(t, "push POST /publish", body(t, resp))
}

func TestRouting_UpstreamDown(t *testing.T) {
	t.Parallel()
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	gw := newGateway(t, deadURL, deadURL, deadURL)
	resp, err := http.Post(gw.URL+"/graphql", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body(t, resp), "upstream unavailable")
}

func TestRegister_BadURL(t *testing.T) {
	t.Parallel()
	err := Register(echo.New(), &Deps{AuthURL: "://bad", CatalogURL: "http://x", PushURL: "http://x"})
	require.Error(t, err)
}
