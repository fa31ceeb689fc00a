package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/swjin-lab/purchases-tracker/internal/common"
	"github.com/swjin-lab/purchases-tracker/internal/export"
	"github.com/swjin-lab/purchases-tracker/internal/ocr"
	"github.com/swjin-lab/purchases-tracker/internal/repository"
	"github.com/swjin-lab/purchases-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database failed", "error", err)
		}
	}()

	if err := repository.Migrate(ctx, db, logger); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	if err := repository.HealthCheck(ctx, db, cfg.Database.DialTimeout); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health OK")

	var detector ocr.TextDetector
	if cfg.OCR.VisionAPIKey != "" {
		client, err := ocr.NewClient(ctx, cfg.OCR.VisionAPIKey, logger)
		if err != nil {
			logger.Error("creating vision client failed", "error", err)
			os.Exit(1)
		}
		detector = client
	} else {
		logger.Warn("VISION_API_KEY not set, receipt scanning disabled")
	}

	srv := server.New(
		repository.NewUserRepository(db, logger),
		repository.NewPurchaseRepository(db, logger),
		detector,
		export.NewService(logger),
		cfg.Server,
		logger,
	)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
