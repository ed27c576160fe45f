package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dom/mafia-chicago/internal/api"
	"github.com/dom/mafia-chicago/internal/cache"
	"github.com/dom/mafia-chicago/internal/config"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/dom/mafia-chicago/internal/repository/memory"
	"github.com/dom/mafia-chicago/internal/repository/postgres"
	"github.com/dom/mafia-chicago/internal/service"
	"github.com/dom/mafia-chicago/internal/websocket"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	if cfg.Environment == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	var repos *repository.Repositories
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewConnection(cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		repos = postgres.NewRepositories(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		repos = memory.NewRepositories()
	}

	var snapshots *cache.SnapshotCache
	if cfg.RedisAddr != "" {
		snapshots, err = cache.NewSnapshotCache(cfg.RedisAddr, cfg.RedisDB, cfg.SnapshotTTL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		logger.WithField("addr", cfg.RedisAddr).Info("snapshot cache enabled")
	}

	services := service.NewServices(repos)

	hub := websocket.NewHub(services, snapshots, logger)
	go hub.Run()

	router := api.NewRouter(services, hub, cfg, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	hub.Stop()
	logger.Info("server stopped")
}
