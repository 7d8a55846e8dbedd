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

	"github.com/Skotchmaster/storefront/internal/app"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/models"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

const firstPageSize = 20

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	a, err := app.New(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("app init: %v", err)
	}

	a.Cart.Subscribe(func(items []models.CartEntry) {
		logger.Debug("cart_changed", "entries", len(items))
	})
	a.Session.Subscribe(func(u models.User) {
		logger.Info("session_changed", "authenticated", u.IsAuthenticated)
	})
	a.Feed.SubscribeNotifications(func(n []models.Notification) {
		if len(n) > 0 {
			logger.Info("notification", "type", n[0].Type, "message", n[0].Message)
		}
	})

	runCtx, stopRun := context.WithCancel(ctx)
	limit, offset := firstPageSize, 0
	a.Start(runCtx, catalog.FetchOptions{Limit: &limit, Offset: &offset})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler:      &handlers.CatalogHandler{Catalog: a.Catalog},
		CartHandler:         &handlers.CartHandler{Cart: a.Cart, Catalog: a.Catalog},
		SessionHandler:      &handlers.SessionHandler{Session: a.Session, Login: a.Login},
		NotificationHandler: &handlers.NotificationHandler{Feed: a.Feed},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ClientPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("storefront_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	stopRun()
	if err := a.Close(); err != nil {
		logger.Error("storage_close_error", "error", err)
	}
	logger.Info("shutdown_complete")
}
