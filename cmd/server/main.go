package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/library/internal/app"
	"github.com/Skotchmaster/library/internal/config"
	"github.com/Skotchmaster/library/internal/db"
	"github.com/Skotchmaster/library/internal/events"
	"github.com/Skotchmaster/library/internal/httpserver"
	"github.com/Skotchmaster/library/internal/logging"
	authmw "github.com/Skotchmaster/library/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/library/internal/middleware/logging"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/search"
	"github.com/Skotchmaster/library/internal/service"
	"github.com/Skotchmaster/library/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustOneOf(cfg.TokenStore, "TOKEN_STORE", config.TokenStoreSQL, config.TokenStoreRedis)

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	store, closeStore, err := app.TokenStore(initCtx, cfg, gdb)
	if err != nil {
		log.Fatalf("token store init error: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
	}

	var indexer service.Indexer = search.Nop{}
	var searchHandler *httpserver.SearchHTTP
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		idx := search.NewIndex(es, cfg.ESIndex)
		indexer = idx
		searchHandler = &httpserver.SearchHTTP{Index: idx}
	}

	gormRepo := &repo.GormRepo{DB: gdb}
	tok := tokens.NewService(store)

	authSvc := service.NewAuthService(gormRepo, tok, publisher)
	authSvc.AccessTTL = cfg.AccessTokenTTL
	authSvc.RefreshTTL = cfg.RefreshTokenTTL

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: gormRepo, Events: publisher, Index: indexer}},
		SearchHandler:  searchHandler,
		Bearer:         &authmw.Bearer{Tokens: tok, Users: gormRepo},
		Ready:          pinger(gdb),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr, "token_store", cfg.TokenStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := closeStore(); err != nil {
		logger.Error("token_store_close_error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	logger.Info("shutdown_complete")
}

func pinger(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
