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

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"

	"github.com/Skotchmaster/storefront/services/push/internal/emitter"
	"github.com/Skotchmaster/storefront/services/push/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/push/internal/hub"
	"github.com/Skotchmaster/storefront/services/push/internal/service"
)

func main() {
	config.LoadDotEnv("services/push/.env")
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", "push")
	slog.SetDefault(logger)
	ctx, cancel := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer cancel()

	h := hub.New()
	svc := &service.PushService{Hub: h}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		producer = p
		svc.Producer = p
		logger.Info("push_kafka_enabled", "topic", p.Topic())
	}

	em := emitter.New(svc.Publish)
	em.FirstDelay = cfg.PushFirstUpdateDelay
	em.MinInterval = cfg.PushMinUpdateInterval
	em.MaxInterval = cfg.PushMaxUpdateInterval
	go em.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		PushHandler: httpserver.NewPushHTTP(svc, h),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.EnvIntDefault("SERVER_PORT", 8083)),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("push_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	h.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	logger.Info("push_stopped")
}
