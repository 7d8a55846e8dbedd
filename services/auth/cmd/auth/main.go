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

	"github.com/Skotchmaster/storefront/services/auth/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
	"github.com/Skotchmaster/storefront/services/auth/internal/transport"
)

func main() {
	config.LoadDotEnv("services/auth/.env")
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", "auth")
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(initCtx, config.EnvDefault("AUTH_DATABASE_URL", "file:auth.db"))
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	r := &repo.GormRepo{DB: db}
	if err := r.Migrate(initCtx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	svc := &service.AuthService{Repo: r, JWTSecret: cfg.JWTSecret}
	if err := svc.EnsureUser(initCtx, transport.Credentials{
		Email:     cfg.DemoEmail,
		Password:  cfg.DemoPassword,
		FirstName: "Demo",
		LastName:  "User",
	}); err != nil {
		cancel()
		log.Fatalf("demo user: %v", err)
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		JWTSecret:   cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.EnvIntDefault("SERVER_PORT", 8082)),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("auth_listening", "addr", srv.Addr, "demo_email", cfg.DemoEmail)
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
	logger.Info("auth_stopped")
}
