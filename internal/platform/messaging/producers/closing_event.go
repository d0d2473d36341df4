package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/parkops/backoffice/internal/config"
	"github.com/segmentio/kafka-go"
)

// ClosingEventProducer publishes cash-session closing events to the
// accounting topic. Downstream systems consume these to book the register
// totals; the outbox poller is the only caller.
type ClosingEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewClosingEventProducer creates the producer and ensures the topic exists
func NewClosingEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ClosingEventProducer, error) {
	if cfg.ClosingTopic == "" {
		return nil, fmt.Errorf("kafka closing topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for closing-event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ClosingTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure closing topic %s exists: %w", cfg.ClosingTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ClosingTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &ClosingEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ClosingTopic,
	}, nil
}

func (p *ClosingEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal closing event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish closing event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish closing event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published closing event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ClosingEventProducer) Close() error {
	p.logger.Info("Closing cash-session event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
