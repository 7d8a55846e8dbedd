// Package app builds every store once and hands them out by reference.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/feed"
	"github.com/Skotchmaster/storefront/internal/feed/kafkafeed"
	"github.com/Skotchmaster/storefront/internal/feed/wsfeed"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/authclient"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/graphql"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var ErrUnknownTransport = errors.New("unknown push transport")

// Authenticator checks credentials against the auth endpoint.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
}

type Deps struct {
	Storage   storage.Storage
	Querier   graphql.Querier
	Transport feed.Transport
	Auth      Authenticator
	FeedOpts  []feed.Option
}

type App struct {
	Storage storage.Storage
	Cart    *cart.Store
	Session *session.Store
	Catalog *catalog.Loader
	Feed    *feed.Feed

	auth        Authenticator
	closer      io.Closer
	unsubPrices func()
}

// New wires the client from configuration.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	store, closer, err := storage.Open(ctx, cfg.StorageDSN, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	transport, err := NewTransport(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	a := NewWithDeps(ctx, Deps{
		Storage:   store,
		Querier:   graphql.NewClient(cfg.GraphQLURL),
		Transport: transport,
		Auth:      authclient.NewClient(cfg.AuthURL),
		FeedOpts: []feed.Option{
			feed.WithReconnectDelay(cfg.ReconnectDelay),
			feed.WithMaxReconnectAttempts(cfg.MaxReconnectAttempts),
		},
	})
	a.closer = closer
	return a, nil
}

// NewTransport picks the push transport named by PUSH_TRANSPORT.
func NewTransport(cfg config.Config) (feed.Transport, error) {
	switch strings.ToLower(cfg.PushTransport) {
	case "", "websocket", "ws":
		return wsfeed.New(cfg.PushURL), nil
	case "kafka":
		return kafkafeed.New(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.PushTransport)
	}
}

// NewWithDeps builds the stores around the given collaborators. Cart entries
// follow catalog price changes for as long as the app is open.
func NewWithDeps(ctx context.Context, d Deps) *App {
	products := catalog.New(d.Querier)
	a := &App{
		Storage: d.Storage,
		Cart:    cart.New(ctx, d.Storage),
		Session: session.New(ctx, d.Storage),
		Catalog: products,
		Feed:    feed.New(d.Transport, products, d.FeedOpts...),
		auth:    d.Auth,
	}
	a.unsubPrices = products.Subscribe(func(p []models.Product) {
		a.Cart.SyncPrices(ctx, p)
	})
	return a
}

// Login authenticates remotely and, on success, marks the session
// authenticated under the given email.
func (a *App) Login(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("op", "login")
	if err := a.auth.Login(ctx, email, password); err != nil {
		l.Warn("login_failed", "error", err)
		return err
	}
	a.Session.Login(ctx, models.UserPatch{Email: &email})
	l.Info("login_successful")
	return nil
}

func (a *App) Logout(ctx context.Context) {
	a.Session.Logout(ctx)
}

// Start loads the first catalog page and opens the push feed.
func (a *App) Start(ctx context.Context, opts catalog.FetchOptions) {
	a.Catalog.FetchProducts(ctx, opts)
	a.Feed.Connect(ctx)
}

func (a *App) Close() error {
	a.Feed.Disconnect()
	a.unsubPrices()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
