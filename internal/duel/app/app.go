package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/duel-wager/internal/duel"
	"github.com/radieske/duel-wager/internal/duel/producer"
	"github.com/radieske/duel-wager/internal/duel/ratelimit"
	"github.com/radieske/duel-wager/internal/duel/repo"
	"github.com/radieske/duel-wager/internal/duel/ws"
	"github.com/radieske/duel-wager/internal/shared/cache"
	"github.com/radieske/duel-wager/internal/shared/config"
	"github.com/radieske/duel-wager/internal/shared/db"
	"github.com/radieske/duel-wager/internal/shared/kafka"
	"github.com/radieske/duel-wager/internal/shared/metrics"
)

// App agrupa as dependências de um processo que roda o engine:
// banco, Redis e Kafka opcionais, métricas e o próprio engine.
type App struct {
	Engine *duel.Engine
	Store  *repo.Store
	Redis  *redis.Client // nil sem REDIS_ADDR
	Hub    *ws.Hub       // nil sem REDIS_ADDR

	cfg     config.Config
	log     *zap.Logger
	db      *sql.DB
	writers []*kafkago.Writer
}

// Build conecta as dependências configuradas e monta o engine
func Build(ctx context.Context, cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{cfg: cfg, log: log}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	items, err := a.Store.Items(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog, err := duel.NewCatalog(items)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		guard duel.RateGuard = duel.NewMemoryGuard(cfg.MatchCooldown, nil)
		pubs  duel.Publishers
	)

	if cfg.RedisAddr != "" {
		if a.Redis, err = cache.ConnectRedis(ctx, cfg.RedisAddr); err != nil {
			a.Close()
			return nil, err
		}
		guard = ratelimit.NewRedisGuard(a.Redis, cfg.MatchCooldown)
		pubs = append(pubs, producer.NewRedisBroadcaster(a.Redis, cfg.RedisPubSubChannel))
		a.Hub = ws.NewHub(func(*http.Request) bool { return true }, log)
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		placed := kafka.NewWriter(brokers, cfg.TopicBetPlaced)
		resolved := kafka.NewWriter(brokers, cfg.TopicMatchResolved)
		a.writers = append(a.writers, placed, resolved)
		pubs = append(pubs, producer.NewKafkaPublisher(placed, resolved))
		log.Info("kafka writers ready",
			zap.Strings("brokers", brokers),
			zap.String("betPlaced", cfg.TopicBetPlaced),
			zap.String("matchResolved", cfg.TopicMatchResolved),
		)
	}

	seed := cfg.RandSeed
	if seed == 0 {
		if seed, err = duel.NewSeed(); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Engine = duel.NewEngine(duel.Options{
		Store:         a.Store,
		Catalog:       catalog,
		Guard:         guard,
		Rand:          duel.NewSource(seed),
		Log:           log,
		Publisher:     pubs,
		Observer:      metrics.NewDuelMetrics(reg),
		StarterBonus:  cfg.StarterBonus,
		CommissionBps: cfg.CommissionBps,
		HouseUserID:   cfg.HouseUserID,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	var err error
	switch a.cfg.DBDriver {
	case "sqlite":
		if a.db, err = db.OpenSQLite(a.cfg.SQLitePath); err != nil {
			return err
		}
		a.Store = repo.NewSQLite(a.db)
	default:
		if a.db, err = db.ConnectPostgres(a.cfg.PostgresDSN); err != nil {
			return err
		}
		a.Store = repo.NewPostgres(a.db)
	}
	if err := a.Store.Migrate(ctx, duel.DefaultItems()); err != nil {
		a.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	a.log.Info("database ready", zap.String("driver", a.Store.Dialect()))
	return nil
}

// Health valida as dependências críticas para o /healthz
func (a *App) Health(ctx context.Context) error {
	if err := a.Store.Ping(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// RunFeed repassa o canal Redis para o hub WebSocket; sem Redis só espera ctx
func (a *App) RunFeed(ctx context.Context) error {
	if a.Redis == nil || a.Hub == nil {
		<-ctx.Done()
		return nil
	}
	return ws.RunRedisSubscriber(ctx, a.Redis, a.cfg.RedisPubSubChannel, a.Hub, a.log)
}

// Close libera writers, Redis e banco, nessa ordem
func (a *App) Close() {
	for _, w := range a.writers {
		if err := w.Close(); err != nil {
			a.log.Warn("close kafka writer", zap.String("topic", w.Topic), zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
