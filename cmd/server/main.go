package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yusufkecer/body-measurements-backend/internal/api"
	"github.com/yusufkecer/body-measurements-backend/internal/config"
	"github.com/yusufkecer/body-measurements-backend/internal/db"
	"github.com/yusufkecer/body-measurements-backend/internal/handler"
	"github.com/yusufkecer/body-measurements-backend/internal/logger"
	"github.com/yusufkecer/body-measurements-backend/internal/repository"
	"github.com/yusufkecer/body-measurements-backend/internal/service"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("database connection failed: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		logger.Error("migrations failed: %v", err)
		os.Exit(1)
	}

	accountRepo := repository.NewAccountRepository(database)
	measurementRepo := repository.NewMeasurementRepository(database)

	measurementService := service.NewMeasurementService(measurementRepo)

	router := api.NewRouter(cfg, api.Handlers{
		Auth:         handler.NewAuthHandler(cfg.JWTSecret, accountRepo),
		Measurements: handler.NewMeasurementHandler(measurementService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
