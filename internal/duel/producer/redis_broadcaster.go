package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

const (
	UpdateBetPlaced     = "bet_placed"
	UpdateMatchResolved = "match_resolved"
)

// RedisBroadcaster publica MatchUpdate no canal lido pelo feed WS
type RedisBroadcaster struct {
	r       redis.UniversalClient
	channel string
}

func NewRedisBroadcaster(r redis.UniversalClient, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	return b.publish(ctx, events.MatchUpdate{Type: UpdateBetPlaced, MatchID: e.MatchID, Payload: e})
}

func (b *RedisBroadcaster) PublishMatchResolved(ctx context.Context, e events.MatchResolved) error {
	return b.publish(ctx, events.MatchUpdate{Type: UpdateMatchResolved, MatchID: e.MatchID, Payload: e})
}

func (b *RedisBroadcaster) publish(ctx context.Context, u events.MatchUpdate) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
