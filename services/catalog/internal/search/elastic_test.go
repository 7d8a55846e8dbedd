package search

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

// fakeCluster answers the handful of endpoints the catalog uses and keeps
// indexed documents in memory.
type fakeCluster struct {
	mu         sync.Mutex
	docs       map[string]models.Product
	lastSearch map[string]any
	failSearch bool
}

func newFakeCluster(t *testing.T) (*fakeCluster, *httptest.Server) {
	t.Helper()
	fc := &fakeCluster{docs: map[string]models.Product{}}
	srv := httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(srv.Close)
	return fc, srv
}

func (fc *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"name":"fake","cluster_name":"test","version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)

	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		fc.mu.Lock()
		defer fc.mu.Unlock()
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			var meta struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			if err := json.Unmarshal(sc.Bytes(), &meta); err != nil || !sc.Scan() {
				http.Error(w, `{"error":"bad bulk"}`, http.StatusBadRequest)
				return
			}
			var p models.Product
			if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
				http.Error(w, `{"error":"bad doc"}`, http.StatusBadRequest)
				return
			}
			fc.docs[meta.Index.ID] = p
		}
		_, _ = io.WriteString(w, `{"took":1,"errors":false,"items":[]}`)

	case strings.HasSuffix(r.URL.Path, "/_search"):
		fc.mu.Lock()
		defer fc.mu.Unlock()
		if fc.failSearch {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":"unavailable"}`)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fc.lastSearch = body

		query := strings.ToLower(body["query"].(map[string]any)["multi_match"].(map[string]any)["query"].(string))
		type hit struct {
			Source models.Product `json:"_source"`
		}
		hits := []hit{}
		for _, p := range fc.docs {
			if strings.Contains(strings.ToLower(p.Title), query) {
				hits = append(hits, hit{Source: p})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})

	default:
		http.NotFound(w, r)
	}
}

func TestNewElastic_DefaultIndex(t *testing.T) {
	t.Parallel()
	_, srv := newFakeCluster(t)

	es, err := NewElastic(context.Background(), Config{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultIndex, es.Index)
}

func TestNewElastic_ClusterError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"security_exception"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewElastic(context.Background(), Config{URL: srv.URL, User: "elastic", Password: "wrong"})
	require.ErrorIs(t, err, ErrSearch)
}

func TestIndexAndSearch(t *testing.T) {
	t.Parallel()
	fc, srv := newFakeCluster(t)
	ctx := context.Background()

	es, err := NewElastic(ctx, Config{URL: srv.URL, Index: "catalog"})
	require.NoError(t, err)

	require.NoError(t, es.IndexProducts(ctx,
		models.Product{ID: 1, Title: "Foldsack Backpack", Price: 109.95},
		models.Product{ID: 7, Title: "Princess Ring", Price: 9.99},
	))
	require.NoError(t, es.IndexProducts(ctx, models.Product{ID: 1, Title: "Foldsack Backpack", Price: 15}))

	got, err := es.SearchProducts(ctx, "backpack", 0, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 15.0, got[0].Price)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.Len(t, fc.docs, 2)
	assert.EqualValues(t, 5, fc.lastSearch["size"])
	assert.EqualValues(t, 0, fc.lastSearch["from"])
	fields := fc.lastSearch["query"].(map[string]any)["multi_match"].(map[string]any)["fields"]
	assert.Equal(t, []any{"title^2", "description"}, fields)
}

func TestSearchProducts_NoLimitOmitsSize(t *testing.T) {
	t.Parallel()
	fc, srv := newFakeCluster(t)
	ctx := context.Background()

	es, err := NewElastic(ctx, Config{URL: srv.URL})
	require.NoError(t, err)

	got, err := es.SearchProducts(ctx, "anything", 3, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.NotContains(t, fc.lastSearch, "size")
	assert.EqualValues(t, 3, fc.lastSearch["from"])
}

func TestSearchProducts_ClusterError(t *testing.T) {
	t.Parallel()
	fc, srv := newFakeCluster(t)
	ctx := context.Background()

	es, err := NewElastic(ctx, Config{URL: srv.URL})
	require.NoError(t, err)

	fc.mu.Lock()
	fc.failSearch = true
	fc.mu.Unlock()

	_, err = es.SearchProducts(ctx, "ring", 0, 0)
	require.ErrorIs(t, err, ErrSearch)
}

func TestIndexProducts_Empty(t *testing.T) {
	t.Parallel()
	es := &Elastic{}
	assert.NoError(t, es.IndexProducts(context.Background()))
}
