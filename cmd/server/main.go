package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/config"
	"github.com/Skotchmaster/lab_management/internal/es"
	"github.com/Skotchmaster/lab_management/internal/handlers"
	"github.com/Skotchmaster/lab_management/internal/httpserver"
	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/mykafka"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Validator = handlers.NewValidator()
	e.Use(middleware.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
		events = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	reagents := &handlers.ReagentHandler{Repo: gormRepo, Events: events}
	if cfg.ElasticURL != "" {
		esClient, err := es.NewClient(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		reagents.ES = esClient
	} else {
		logger.Warn("ELASTICSEARCH_URL not set, reagent search disabled")
	}

	tokenSvc := &service.TokenService{
		Repo:          gormRepo,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	authSvc := &service.AuthService{Repo: gormRepo, Tokens: tokenSvc, Events: events}
	bookingSvc := &service.BookingService{Repo: gormRepo, Events: events}

	httpserver.Register(e, &httpserver.Deps{
		Auth:      &middleware.AuthMiddleware{Tokens: tokenSvc},
		AuthH:     &handlers.AuthHandler{Svc: authSvc, Repo: gormRepo},
		Users:     &handlers.UserHandler{Repo: gormRepo},
		Equipment: &handlers.EquipmentHandler{Repo: gormRepo},
		Bookings:  &handlers.BookingHandler{Svc: bookingSvc, Repo: gormRepo},
		Reagents:  reagents,
		Orders:    &handlers.OrderHandler{Repo: gormRepo, Events: events},
		Projects:  &handlers.ProjectHandler{Repo: gormRepo},
		Protocols: &handlers.ProtocolHandler{Repo: gormRepo},
		Dashboard: &handlers.DashboardHandler{Repo: gormRepo},
	})

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := gormRepo.DeleteExpiredRefreshTokens(sweepCtx, time.Now()); err != nil {
				logger.Warn("refresh token sweep failed", "error", err)
			} else if n > 0 {
				logger.Info("swept expired refresh tokens", "count", n)
			}
			sweepCancel()
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
}
