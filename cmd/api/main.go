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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gearlog/internal/config"
	"gearlog/internal/database"
	"gearlog/internal/events"
	"gearlog/internal/middleware"
	"gearlog/internal/modules/feed"
	jwtsvc "gearlog/internal/pkg/jwt"
	"gearlog/internal/pkg/logger"
	"gearlog/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New(cfg.ServiceName, cfg.LogLevel)
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := database.DefaultOptions()
	opts.MaxOpenConns = cfg.DBMaxOpenConns
	opts.MaxIdleConns = cfg.DBMaxIdleConns

	db, err := database.Connect(cfg.DatabaseURL, opts, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	hub := feed.NewHub(zlog)
	defer hub.Close()

	deps := server.Deps{
		DB:          db,
		JWT:         jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Hub:         hub,
		Metrics:     middleware.NewMetrics(cfg.ServiceName),
		CORSOrigins: cfg.CORSOrigins,
		Log:         zlog,
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, zlog)
		if err != nil {
			zlog.Warn("RabbitMQ unavailable, change events stay local", zap.Error(err))
		} else {
			defer func() { _ = publisher.Close() }()
			deps.Broker = publisher
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		zlog.Info("starting HTTP server", zap.String("address", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}

	zlog.Info("server stopped")
}
