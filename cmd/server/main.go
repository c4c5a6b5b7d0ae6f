package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/api"
	"github.com/GBZC2708/procard-api/internal/config"
	"github.com/GBZC2708/procard-api/internal/service"
	"github.com/GBZC2708/procard-api/internal/steps"
	"github.com/GBZC2708/procard-api/internal/storage"
)

type app struct {
	logger    internal.Logger
	cfg       *config.Config
	store     storage.Store
	dashboard *service.DashboardCache
}

func (a *app) Logger() internal.Logger            { return a.logger }
func (a *app) Config() *config.Config             { return a.cfg }
func (a *app) Store() storage.Store               { return a.store }
func (a *app) Dashboard() *service.DashboardCache { return a.dashboard }

func main() {
	cfg := config.Load()
	logger := internal.NewLogger(cfg.Env, cfg.LogLevel)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DBType == "file" {
		if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil {
			logger.Fatalf("failed to create data dir: %v", err)
		}
	}

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	dashboard := service.NewDashboardCache(store)

	tracker := steps.NewTracker(steps.SystemClock(), func(ctx context.Context, username string, day int64, total int) error {
		_, err := service.SaveSteps(ctx, store, username, day, total)
		return err
	}, cfg.DefaultUser)

	a := &app{logger: logger, cfg: cfg, store: store, dashboard: dashboard}
	router := api.NewRouter(a)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		logger.Infof("server listening on %s (backend=%s)", cfg.HTTPAddr, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}

	tracker.Close()
	dashboard.Close()
	if err := store.Close(); err != nil {
		logger.Errorf("storage close: %v", err)
	}
}
