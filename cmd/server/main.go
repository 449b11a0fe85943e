package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/api"
	"github.com/Khaldybek/habit-tracker/internal/auth"
	"github.com/Khaldybek/habit-tracker/internal/config"
	"github.com/Khaldybek/habit-tracker/internal/scheduler"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	repos, fileStorage, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	sched := scheduler.New(repos.Habits, repos.Notifications, logger)
	if err := sched.Start(context.Background()); err != nil {
		logger.Fatalf("failed to start reminder scheduler: %v", err)
	}

	app := &api.Application{Log: logger, Repos: repos, Scheduler: sched}

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.AuthToken, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.RegisterRoutes(r, app, auth.AuthMiddleware(provider, cfg))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Infof("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if fileStorage != nil {
		if err := fileStorage.Close(); err != nil {
			logger.Errorf("storage close: %v", err)
		}
	}
}

func buildRepositories(cfg *config.Config, logger internal.Logger) (*storage.Repositories, *storage.FileStorage, error) {
	if cfg.DBType == "postgres" {
		repos, err := storage.NewPostgresRepositories(cfg.DBDSN, logger)
		return repos, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FileHabits), 0o755); err != nil {
		return nil, nil, err
	}
	return storage.NewFileRepositories(cfg.FileHabits, cfg.FileCheckIns, cfg.FileNotifications, logger)
}
