package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

// RunRedisSubscriber lê MatchUpdate do canal Redis e repassa ao hub até ctx acabar
func RunRedisSubscriber(ctx context.Context, r redis.UniversalClient, channel string, hub *Hub, log *zap.Logger) error {
	sub := r.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var upd events.MatchUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
				log.Warn("ws subscriber unmarshal", zap.Error(err))
				continue
			}
			hub.Broadcast(upd)
		}
	}
}
