package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos de partida, um writer por tópico.
// A chave é o id da partida para manter a ordem por partida.
type KafkaPublisher struct {
	BetPlaced     MessageWriter
	MatchResolved MessageWriter
}

func NewKafkaPublisher(betPlaced, matchResolved MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{BetPlaced: betPlaced, MatchResolved: matchResolved}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	return write(ctx, p.BetPlaced, e.MatchID, e)
}

func (p *KafkaPublisher) PublishMatchResolved(ctx context.Context, e events.MatchResolved) error {
	return write(ctx, p.MatchResolved, e.MatchID, e)
}

func write(ctx context.Context, w MessageWriter, matchID int64, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(strconv.FormatInt(matchID, 10)), Value: b}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}
