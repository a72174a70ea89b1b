package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utakatalp/worldcup-predictor/internal/api"
	"github.com/utakatalp/worldcup-predictor/internal/config"
	"github.com/utakatalp/worldcup-predictor/internal/league"
	"github.com/utakatalp/worldcup-predictor/internal/logging"
	"github.com/utakatalp/worldcup-predictor/internal/predictor"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	// 1) load artifacts once; failures leave the API up in degraded mode
	rt := predictor.Bootstrap(context.Background(), cfg, logger)
	svc := rt.Service(league.NewResolver(cfg.Aliases), logger)

	// 2) serve
	handler := api.NewHandler(svc, logger).Router(api.Options{AllowedOrigins: cfg.AllowedOrigins})
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Listen).Info("predictor API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// 3) wait for a signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.WithError(err).Fatal("server failed")
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("forced shutdown")
		return
	}
	logger.Info("server stopped")
}
