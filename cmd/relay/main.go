// Package main wires together the relay service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/api"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/classify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/clock/system"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/config"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/enrich"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/extract"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/logging"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/notify"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/pipeline"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/proxy"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/router"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/sites"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := proxy.Load(cfg.Proxy.File)
	if err != nil {
		logger.Fatal("proxy pool load failed", zap.Error(err))
	}
	if pool.Len() == 0 {
		logger.Warn("no proxies loaded; enrichment fetches go direct",
			zap.String("file", cfg.Proxy.File))
	} else {
		logger.Info("proxy pool loaded", zap.Int("proxies", pool.Len()))
	}

	registry := sites.Default()
	clock := system.New()
	enricher := enrich.New(enrich.Config{
		UserAgent: cfg.Enrich.UserAgent,
		Timeout:   cfg.EnrichTimeout(),
	}, pool, logger.Named("enrich"))
	deliverer := router.New(cfg.Discord.Webhooks, nil, logger.Named("router"))

	handler := pipeline.New(
		cfg.Mappings,
		classify.New(),
		extract.DefaultSet(clock),
		registry,
		enricher,
		notify.New(clock),
		deliverer,
		logger.Named("pipeline"),
	)

	apiServer := api.NewServer(handler, cfg, pool.Len(), logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("relay listening",
			zap.Int("port", cfg.Server.Port),
			zap.Int("mappings", len(cfg.Mappings)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("relay stopped")
}
