package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "duel:cooldown:"

// RedisGuard é o RateGuard compartilhado entre réplicas. SET NX PX grava a
// marca e verifica a janela numa única operação atômica do Redis.
type RedisGuard struct {
	r      redis.UniversalClient
	window time.Duration
}

func NewRedisGuard(r redis.UniversalClient, window time.Duration) *RedisGuard {
	return &RedisGuard{r: r, window: window}
}

func (g *RedisGuard) Allow(ctx context.Context, userID int64) (bool, error) {
	if g.window <= 0 {
		return true, nil
	}
	ok, err := g.r.SetNX(ctx, key(userID), time.Now().UnixMilli(), g.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, userID int64) error {
	if err := g.r.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func key(userID int64) string { return keyPrefix + strconv.FormatInt(userID, 10) }
