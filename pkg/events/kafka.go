package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// RequiredAcks is "none", "one" or "all". Default "one".
	RequiredAcks string
	Async        bool
}

// Kafka writes JSON events to a single topic.
type Kafka struct {
	w *kafka.Writer
}

var _ Publisher = (*Kafka)(nil)

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           requiredAcks(cfg.RequiredAcks),
		Async:                  cfg.Async,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{w: w}, nil
}

func requiredAcks(s string) kafka.RequiredAcks {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

// Publish keys the message so all events for one user land on one partition.
func (k *Kafka) Publish(ctx context.Context, key string, event any) error {
	value, err := encode(event)
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

func (k *Kafka) Close() error { return k.w.Close() }

func encode(event any) ([]byte, error) {
	if b, ok := event.([]byte); ok {
		return b, nil
	}
	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}
