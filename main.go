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

	"employee-management/internal/cache"
	"employee-management/internal/config"
	"employee-management/internal/db"
	"employee-management/internal/handlers"
	"employee-management/internal/middleware"
	"employee-management/internal/repository"
	"employee-management/internal/router"
	"employee-management/internal/service"
	"employee-management/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Server.Development() {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	// the schema must be in place before the first request
	result, err := db.Bootstrap(ctx, pool)
	if err != nil {
		logger.Fatal("bootstrap schema", zap.Error(err))
	}
	if result.Changed() {
		logger.Info("schema updated",
			zap.Bool("created_table", result.CreatedTable),
			zap.Strings("added_columns", result.AddedColumns))
	}

	gate := upload.NewGate(afero.NewOsFs(), cfg.Upload.Dir)
	if err := gate.EnsureDir(); err != nil {
		logger.Fatal("prepare upload dir", zap.Error(err))
	}

	var lists service.ListCache
	if cfg.Redis.Enabled() {
		rc := cache.NewRedisCache(cfg.Redis)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, list cache errors will be ignored", zap.Error(err))
		}
		lists = rc
		logger.Info("list cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}

	svc := service.NewEmployeeService(repository.NewEmployeeRepository(pool), lists, logger)
	eh := handlers.NewEmployeeHandler(svc, gate, logger, cfg.Server.Development())

	if !cfg.Server.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Setup(r, eh, gate.HTTPFileSystem())

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
