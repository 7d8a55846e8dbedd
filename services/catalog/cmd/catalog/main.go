package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"

	"github.com/Skotchmaster/storefront/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/catalog/internal/publisher"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/search"
	"github.com/Skotchmaster/storefront/services/catalog/internal/seed"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
)

func main() {
	config.LoadDotEnv("services/catalog/.env")
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	r := &repo.GormRepo{DB: db}
	if err := r.Migrate(initCtx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	if n, err := r.Count(initCtx); err == nil && n == 0 {
		products, err := seed.Load(initCtx, cfg.ProductsSourceURL)
		if err != nil {
			logger.Warn("seed_source_error", "error", err, "reason", "falling back to builtin products")
			products = seed.Builtin()
		}
		if err := r.Seed(initCtx, products); err != nil {
			cancel()
			log.Fatalf("db seed: %v", err)
		}
		logger.Info("catalog_seeded", "count", len(products))
	}

	svc := &service.CatalogService{
		Repo:      r,
		Publisher: publisher.NewHubPublisher(cfg.PushHubURL),
	}
	if cfg.ElasticURL != "" {
		es, err := search.NewElastic(initCtx, search.Config{
			URL:      cfg.ElasticURL,
			User:     cfg.ElasticUser,
			Password: cfg.ElasticPassword,
			Index:    cfg.ElasticIndex,
		})
		if err != nil {
			logger.Warn("es_unavailable", "error", err, "reason", "falling back to sql search")
		} else if err := indexCatalog(initCtx, r, es); err != nil {
			logger.Warn("es_index_error", "error", err, "reason", "falling back to sql search")
		} else {
			svc.Searcher = es
		}
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		JWTSecret:      cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.EnvIntDefault("SERVER_PORT", 8081)),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("catalog_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("catalog_stopped")
}

func indexCatalog(ctx context.Context, r *repo.GormRepo, es *search.Elastic) error {
	products, err := r.ListProducts(ctx, 0, 0)
	if err != nil {
		return err
	}
	return es.IndexProducts(ctx, products...)
}
