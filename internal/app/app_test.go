package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/feed/feedtest"
	"github.com/Skotchmaster/storefront/internal/feed/kafkafeed"
	"github.com/Skotchmaster/storefront/internal/feed/wsfeed"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/config"
)

type stubAuth struct{ err error }

func (s stubAuth) Login(context.Context, string, string) error { return s.err }

type cannedQuerier string

func (c cannedQuerier) Query(_ context.Context, _ string, _ map[string]any, out any) error {
	return json.Unmarshal([]byte(c), out)
}

const catalogJSON = `{"products":[
	{"id":1,"title":"Backpack","price":109.95,"category":"bags"},
	{"id":2,"title":"T-Shirt","price":22.3,"category":"men's clothing"}
]}`

func newTestApp(t *testing.T, s storage.Storage, auth Authenticator) (*App, *feedtest.Transport) {
	t.Helper()
	tr := feedtest.NewTransport()
	a := NewWithDeps(context.Background(), Deps{
		Storage:   s,
		Querier:   cannedQuerier(catalogJSON),
		Transport: tr,
		Auth:      auth,
	})
	t.Cleanup(func() { _ = a.Close() })
	return a, tr
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		a, _ := newTestApp(t, storage.NewMemory(), stubAuth{})

		require.NoError(t, a.Login(context.Background(), "test@example.com", "Password123"))
		u := a.Session.User()
		assert.True(t, u.IsAuthenticated)
		assert.Equal(t, "test@example.com", u.Email)
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		rejected := errors.New("login failed with status 500")
		a, _ := newTestApp(t, storage.NewMemory(), stubAuth{err: rejected})

		err := a.Login(context.Background(), "test@example.com", "Password123")
		require.ErrorIs(t, err, rejected)
		assert.False(t, a.Session.IsAuthenticated())
	})
}

func TestStateSurvivesRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	shared := storage.NewMemory()

	first, _ := newTestApp(t, shared, stubAuth{})
	require.NoError(t, first.Login(ctx, "demo@example.com", "x"))
	first.Catalog.FetchProducts(ctx, catalog.FetchOptions{})
	p, ok := first.Catalog.Product(1)
	require.True(t, ok)
	first.Cart.AddToCart(ctx, p)
	first.Cart.AddToCart(ctx, p)

	second, _ := newTestApp(t, shared, stubAuth{})
	assert.Equal(t, 2, second.Cart.Quantity(1))
	assert.Equal(t, "demo@example.com", second.Session.User().Email)

	second.Logout(ctx)
	third, _ := newTestApp(t, shared, stubAuth{})
	assert.False(t, third.Session.IsAuthenticated())
	assert.Equal(t, 2, third.Cart.Quantity(1))
}

func TestPriceUpdateRepricesCart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, tr := newTestApp(t, storage.NewMemory(), stubAuth{})
	a.Start(ctx, catalog.FetchOptions{})

	p, ok := a.Catalog.Product(1)
	require.True(t, ok)
	a.Cart.AddToCart(ctx, p)
	a.Cart.AddToCart(ctx, p)
	require.InDelta(t, 2*109.95, a.Cart.TotalPrice(), 1e-9)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, err := tr.NextConn(waitCtx)
	require.NoError(t, err)

	require.NoError(t, conn.PushJSON(models.PriceUpdateMessage{
		Type: models.MessagePriceUpdate, ProductID: 1, NewPrice: 15, Timestamp: "t",
	}))
	require.Eventually(t, func() bool { return len(a.Feed.Notifications()) == 1 }, 2*time.Second, 5*time.Millisecond)

	updated, _ := a.Catalog.Product(1)
	assert.Equal(t, 15.0, updated.Price)
	assert.InDelta(t, 30.0, a.Cart.TotalPrice(), 1e-9)
	assert.Equal(t, 2, a.Cart.TotalItems())
}

func TestNewTransport(t *testing.T) {
	t.Parallel()

	tr, err := NewTransport(config.Config{PushTransport: "websocket", PushURL: "ws://localhost:8080/ws"})
	require.NoError(t, err)
	assert.IsType(t, &wsfeed.Transport{}, tr)

	tr, err = NewTransport(config.Config{PushTransport: "kafka", KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "product_events"})
	require.NoError(t, err)
	assert.IsType(t, &kafkafeed.Transport{}, tr)

	_, err = NewTransport(config.Config{PushTransport: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrUnknownTransport)
}

func TestNew_FromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		StorageDSN:           "file::memory:",
		GraphQLURL:           "http://127.0.0.1:1/graphql",
		AuthURL:              "http://127.0.0.1:1/auth/login",
		PushURL:              "ws://127.0.0.1:1/ws",
		PushTransport:        "websocket",
		ReconnectDelay:       time.Millisecond,
		MaxReconnectAttempts: 1,
	}
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	a.Cart.AddToCart(context.Background(), models.Product{ID: 3, Price: 1})
	var entries []models.CartEntry
	found, err := storage.LoadJSON(context.Background(), a.Storage, "cart", &entries)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, entries, 1)
}
