package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/config"
	"github.com/danabekov/techstore/internal/es"
	"github.com/danabekov/techstore/internal/handlers"
	"github.com/danabekov/techstore/internal/logging"
	"github.com/danabekov/techstore/internal/mail"
	"github.com/danabekov/techstore/internal/middleware"
	"github.com/danabekov/techstore/internal/mykafka"
	"github.com/danabekov/techstore/internal/repo"
	"github.com/danabekov/techstore/internal/service"
	"github.com/danabekov/techstore/internal/tokens"
	httpserver "github.com/danabekov/techstore/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	var producer *mykafka.Producer
	if cfg.KafkaAddress != "" {
		producer = mykafka.NewProducer([]string{cfg.KafkaAddress})
	}

	var esClient *es.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch error: %v", err)
		}
	}

	issuer := tokens.NewIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL, cfg.ResetTTL)
	store := repo.New(db)

	authSvc := &service.AuthService{
		Repo:         store,
		Tokens:       issuer,
		Mailer:       mail.NewSMTPSender(cfg),
		ResetURLBase: cfg.ResetURLBase,
	}
	catalogSvc := &service.CatalogService{Repo: store}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = handlers.NewValidator()

	httpserver.Register(e, &httpserver.Deps{
		Issuer:          issuer,
		AuthHandler:     &handlers.AuthHandler{Auth: authSvc, Repo: store, Producer: producer},
		CategoryHandler: &handlers.CategoryHandler{Catalog: catalogSvc, Producer: producer},
		ProductHandler:  &handlers.ProductHandler{Catalog: catalogSvc, Producer: producer, ES: esClient},
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
