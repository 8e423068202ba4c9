// Package audit streams per-source sync results onto Kafka so external
// consumers can follow ingestion outcomes without polling the API.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/regpulse/regpulse/backend/internal/models"
)

// Publisher writes sync results to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewPublisher connects a writer to the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})
	return &Publisher{writer: writer, log: logger}
}

// Publish emits one result, keyed by source so per-source ordering
// holds within a partition.
func (p *Publisher) Publish(ctx context.Context, result models.SyncResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal sync result: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(result.SourceID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "source_id", Value: []byte(result.SourceID)},
			{Key: "status", Value: []byte(result.Status)},
			{Key: "timestamp", Value: []byte(result.SyncedAt.UTC().Format(time.RFC3339))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write sync result to kafka: %w", err)
	}

	p.log.Debug("sync result published",
		slog.String("source", result.SourceID),
		slog.String("status", string(result.Status)))
	return nil
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
