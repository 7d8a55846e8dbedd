package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/gateway/internal/config"
	"github.com/Skotchmaster/storefront/gateway/internal/httpserver"
	"github.com/Skotchmaster/storefront/gateway/internal/middleware"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

func main() {
	pkgconfig.LoadDotEnv("gateway/.env")
	cfg := config.Load()
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", "gateway")
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadHeaderTimeout = 3 * time.Second
	for _, m := range middleware.Common(logger, cfg.AllowedOrigins) {
		e.Use(m)
	}

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:    cfg.AuthServiceURL,
		CatalogURL: cfg.CatalogURL,
		PushURL:    cfg.PushHubURL,
		CSRFConfig: csrf.DefaultConfig(),
		JWTSecret:  cfg.JWTSecret,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		logger.Info("gateway_listening", "addr", cfg.ListenAddr,
			"catalog", cfg.CatalogURL, "auth", cfg.AuthServiceURL, "push", cfg.PushHubURL)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	logger.Info("gateway_stopped")
}
