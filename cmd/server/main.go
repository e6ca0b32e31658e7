package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agroecology/cropvision/internal/api"
	"github.com/agroecology/cropvision/internal/buildconfig"
	"github.com/agroecology/cropvision/internal/config"
	"github.com/agroecology/cropvision/internal/vision"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(config.LogLevel()); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	app := api.NewApp(api.Options{
		KnowledgeBasePath: config.KnowledgeBasePath(),
		ExpertsPath:       config.ExpertsPath(),
		SoilDataPath:      config.SoilDataPath(),
		Vision: vision.Config{
			Provider:     config.VisionProvider(),
			APIKey:       config.PlantIDAPIKey(),
			BaseURL:      config.PlantIDBaseURL(),
			MaxPerMinute: config.PlantIDMaxPerMinute(),
			MaxPerDay:    config.PlantIDMaxPerDay(),
		},
		ClassifierProvider:     config.ClassifierProvider(),
		ClassifierURL:          config.ClassifierURL(),
		ClassifierAPIKey:       config.ClassifierAPIKey(),
		APIKey:                 config.APIKey(),
		RateLimitRPS:           config.RateLimitRPS(),
		RateLimitBurst:         config.RateLimitBurst(),
		IdentifyTimeout:        config.IdentifyTimeout(),
		MaxImageBytes:          config.MaxImageBytes(),
		CompatibilityCacheSize: config.CompatibilityCacheSize(),
	}, logger)
	defer app.Close()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.IdentifyTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
