// Package sink exports persisted audit events to Kafka for downstream
// compliance tooling. The export is best effort and fully decoupled from the
// recorder: a broker outage costs exported copies, never stored events.
package sink

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"machsafe/internal/audit/models"
	"machsafe/internal/platform/config"
)

type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka builds a Kafka-backed sink. Returns nil if no brokers are
// configured, which callers treat as "sink disabled".
func NewKafka(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, err
	}

	return &KafkaSink{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish produces one event asynchronously. Delivery failures are logged
// and discarded.
func (s *KafkaSink) Publish(ctx context.Context, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to marshal audit event for export",
				"event_id", event.ID,
				"error", err,
			)
		}
		return
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.TenantID.String()),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "audit event export failed",
				"event_id", event.ID,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) error {
	if err := s.client.Flush(ctx); err != nil {
		return err
	}
	s.client.Close()
	return nil
}
