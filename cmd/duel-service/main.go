package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/duel-wager/internal/duel/app"
	httpapi "github.com/radieske/duel-wager/internal/duel/http"
	"github.com/radieske/duel-wager/internal/shared/config"
	"github.com/radieske/duel-wager/internal/shared/logger"
	"github.com/radieske/duel-wager/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// banco, Redis, Kafka e engine
	a, err := app.Build(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// /metrics e /healthz em porta dedicada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, a.Health)
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	var wsHandler http.HandlerFunc
	if a.Hub != nil {
		wsHandler = a.Hub.HandleWS
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpapi.NewServer(log, a.Engine, wsHandler).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// feed ao vivo: Redis pub/sub -> hub WebSocket
		return a.RunFeed(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", zap.Error(err))
		return
	}
	log.Info("service stopped")
}
