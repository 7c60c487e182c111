package consumer

import (
	"context"
	"time"

	"pubcli/internal/pub"
	"pubcli/internal/pub/metrics"
)

// MetricsConsumer wraps a pub.Consumer with metrics collection
type MetricsConsumer struct {
	consumer pub.Consumer
	registry *metrics.Registry
}

// NewMetricsConsumer creates a new instrumented consumer
func NewMetricsConsumer(consumer pub.Consumer, registry *metrics.Registry) pub.Consumer {
	return &MetricsConsumer{
		consumer: consumer,
		registry: registry,
	}
}

// Pull implements pub.Consumer.Pull with metrics collection
func (c *MetricsConsumer) Pull(ctx context.Context, sub string) (int, error) {
	done := c.registry.PullStarted()
	defer done()

	start := time.Now()

	acked, err := c.consumer.Pull(ctx, sub)
	duration := time.Since(start)

	c.registry.RecordConsumerPull(sub, acked, duration, err)

	return acked, err
}
