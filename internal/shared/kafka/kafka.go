package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // mesma chave (partida) cai na mesma partição
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewReader(brokers []string, topic string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// MessageReader é o subconjunto de *kafka.Reader usado pelos consumidores
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func ReadNext(ctx context.Context, r MessageReader) (key []byte, value []byte, err error) {
	m, err := r.ReadMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read kafka message: %w", err)
	}
	return m.Key, m.Value, nil
}
