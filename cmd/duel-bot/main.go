package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"

	"github.com/radieske/duel-wager/internal/duel/app"
	"github.com/radieske/duel-wager/internal/duel/bot"
	"github.com/radieske/duel-wager/internal/duel/notifier"
	"github.com/radieske/duel-wager/internal/shared/config"
	"github.com/radieske/duel-wager/internal/shared/kafka"
	"github.com/radieske/duel-wager/internal/shared/logger"
	"github.com/radieske/duel-wager/internal/shared/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		log.Fatal("telegram bot init", zap.Error(err))
	}
	bot.NewCommands(a.Engine, log, cfg.WebAppURL).Register(b)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, a.Health)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("bot polling", zap.String("username", b.Me.Username))
		b.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		b.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	// Sem Kafka não há resultados para notificar
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		reader := kafka.NewReader(brokers, cfg.TopicMatchResolved, "duel-notifier")
		defer reader.Close()
		n := notifier.New(reader, b, log, cfg.HouseUserID)
		g.Go(func() error {
			log.Info("notifier consuming", zap.String("topic", cfg.TopicMatchResolved))
			return n.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("bot stopped with error", zap.Error(err))
		return
	}
	log.Info("bot stopped")
}
