package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prediction_relay/backend/go/internal/config"
	"prediction_relay/backend/go/pkg/models"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives prediction events when the config names none.
const DefaultTopic = "prediction_events"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PredictionEvent is the JSON value published for every stored prediction.
type PredictionEvent struct {
	Type   string                  `json:"type"`
	Record models.PredictionRecord `json:"record"`
}

// PredictionPublisher sends stored prediction records to Kafka.
type PredictionPublisher struct {
	writer MessageWriter
}

// NewPredictionPublisher creates a publisher writing to cfg.Topic on cfg.Brokers.
func NewPredictionPublisher(cfg config.KafkaConfig) (*PredictionPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no Kafka brokers configured")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewPredictionPublisherWithWriter(writer), nil
}

// NewPredictionPublisherWithWriter wraps an existing writer.
func NewPredictionPublisherWithWriter(w MessageWriter) *PredictionPublisher {
	return &PredictionPublisher{writer: w}
}

// Publish serialises record as a "prediction.created" event keyed by record id.
func (p *PredictionPublisher) Publish(ctx context.Context, record *models.PredictionRecord) error {
	value, err := json.Marshal(PredictionEvent{Type: "prediction.created", Record: *record})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.ID),
		Value: value,
		Time:  record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *PredictionPublisher) Close() error {
	return p.writer.Close()
}
