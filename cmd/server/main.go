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

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/user-directory-service/internal/config"
	"github.com/maxviazov/user-directory-service/internal/handler"
	"github.com/maxviazov/user-directory-service/internal/logger"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/internal/repository/postgres"
	"github.com/maxviazov/user-directory-service/internal/service"
	"github.com/maxviazov/user-directory-service/pkg/paginate"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	configPath := os.Getenv("APP_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}
	// handlers log through the global zerolog logger
	zlog.Logger = appLogger
	appLogger.Info().Msg("✅ Logger initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Postgres connection failed")
	}
	defer db.Close()

	pager := paginate.New(
		paginate.WithMaxPerPage(cfg.Pagination.MaxPerPage),
		paginate.WithPrevNext(cfg.Pagination.PrevNextLinks),
	)
	userSvc := service.NewUserService(
		postgres.NewUserRepository(db.Pool()),
		postgres.NewTxManager(db.Pool()),
		pager,
		model.UserTransformer{},
		appLogger,
	)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewEngine(appLogger, cfg.HTTP.CORSOrigins)
	handler.Register(router, postgres.NewPinger(db.Pool()), userSvc, cfg.Pagination.DefaultPerPage)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", srv.Addr).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
