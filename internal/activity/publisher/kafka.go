// Package publisher mirrors activity entries onto a Kafka topic.
package publisher

import (
	"context"
	"encoding/json"
	"log/slog"

	"casevault/internal/activity/models"
	"casevault/internal/platform/metrics"
)

// Producer is satisfied by *kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte, onDone func(error))
}

type Kafka struct {
	producer Producer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewKafka(producer Producer, m *metrics.Metrics, logger *slog.Logger) *Kafka {
	return &Kafka{producer: producer, metrics: m, logger: logger}
}

// Publish enqueues one record per entry keyed by user id, so a user's
// entries stay ordered within a partition.
func (k *Kafka) Publish(ctx context.Context, entries ...models.Entry) {
	for _, e := range entries {
		value, err := json.Marshal(e)
		if err != nil {
			k.logger.WarnContext(ctx, "failed to encode activity entry", "activity_id", e.ID.String(), "error", err)
			k.observe("encode_error")
			continue
		}
		// Records outlive the request.
		k.producer.Publish(context.WithoutCancel(ctx), e.UserID, value, func(err error) {
			if err != nil {
				k.observe("error")
				return
			}
			k.observe("ok")
		})
	}
}

func (k *Kafka) observe(outcome string) {
	if k.metrics != nil {
		k.metrics.ActivityPublished.WithLabelValues(outcome).Inc()
	}
}
