package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/catalog"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/graphql"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/seed"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
)

var testSecret = []byte("test-jwt-secret")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	db, err := pkgdb.Open(ctx, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(ctx))
	require.NoError(t, r.Seed(ctx, seed.Builtin()))

	e := echo.New()
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		JWTSecret:      testSecret,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestGraphQL_DrivesCatalogLoader(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	loader := catalog.New(graphql.NewClient(srv.URL + "/graphql"))
	limit, offset := 20, 0
	loader.FetchProducts(context.Background(), catalog.FetchOptions{Limit: &limit, Offset: &offset})

	require.Empty(t, loader.State().Error)
	assert.Len(t, loader.Products(), 20)

	p, err := loader.FetchProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Cotton Jacket", p.Title)

	_, err = loader.FetchProduct(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, "Product with ID 999 not found", loader.State().Error)

	categories, err := loader.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestGraphQL_ErrorsUseStatus200(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	for _, body := range []string{`not json`, `{"query":"query Nope { x }"}`, `{}`} {
		resp, err := http.Post(srv.URL+"/graphql", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		var out graphql.Response
		require.NoError(t, decodeJSON(resp, &out))
		assert.Equal(t, http.StatusOK, resp.StatusCode, body)
		require.Len(t, out.Errors, 1, body)
		assert.NotEmpty(t, out.Errors[0].Message)
	}
}

func TestPatchPrice(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	patch := func(id, body, token string) int {
		req, err := http.NewRequest(http.MethodPatch, srv.URL+"/admin/products/"+id+"/price", bytes.NewBufferString(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.AddCookie(&http.Cookie{Name: tokens.AccessCookieName, Value: token})
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	tok, err := tokens.NewAccessToken("u1", "demo@example.com", time.Now().Add(time.Minute), testSecret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, patch("1", `{"price":15}`, ""))
	assert.Equal(t, http.StatusBadRequest, patch("x", `{"price":15}`, tok))
	assert.Equal(t, http.StatusBadRequest, patch("1", `{}`, tok))
	assert.Equal(t, http.StatusBadRequest, patch("1", `{"price":-2}`, tok))
	assert.Equal(t, http.StatusNotFound, patch("999", `{"price":15}`, tok))
	assert.Equal(t, http.StatusOK, patch("1", `{"price":15}`, tok))

	loader := catalog.New(graphql.NewClient(srv.URL + "/graphql"))
	p, err := loader.FetchProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 15.0, p.Price)
}
