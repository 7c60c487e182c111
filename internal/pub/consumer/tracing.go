package consumer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"pubcli/internal/pub"
	"pubcli/internal/pub/tracing"
)

// TracedConsumer wraps a pub.Consumer with distributed tracing
// Layer order: TracedConsumer -> MetricsConsumer -> Consumer (real thing)
type TracedConsumer struct {
	consumer pub.Consumer
	tracer   *tracing.Tracer
}

// NewTracedConsumer creates a new traced consumer that wraps a metrics consumer
func NewTracedConsumer(consumer pub.Consumer, tracer *tracing.Tracer) pub.Consumer {
	return &TracedConsumer{
		consumer: consumer,
		tracer:   tracer,
	}
}

// Pull implements pub.Consumer.Pull with distributed tracing. The remote
// pull and acknowledge spans become children of the cycle span.
func (c *TracedConsumer) Pull(ctx context.Context, sub string) (int, error) {
	ctx, span := c.tracer.StartSpan(ctx, "consumer.pull")
	span.SetAttributes(c.tracer.SubscriptionAttributes(sub)...)

	acked, err := c.consumer.Pull(ctx, sub)

	span.SetAttributes(attribute.Int("pubcli.messages_acked", acked))
	c.tracer.End(ctx, span, err)

	return acked, err
}
