package producer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pubcli/internal/pub"
	"pubcli/internal/pub/tracing"
)

// TracedProducer wraps a pub.Producer with distributed tracing
// Layer order: TracedProducer -> MetricsProducer -> Producer (real thing)
type TracedProducer struct {
	producer pub.Producer
	tracer   *tracing.Tracer
}

// NewTracedProducer creates a new traced producer that wraps a metrics producer
func NewTracedProducer(producer pub.Producer, tracer *tracing.Tracer) pub.Producer {
	return &TracedProducer{
		producer: producer,
		tracer:   tracer,
	}
}

// PublishBatch implements pub.Producer.PublishBatch with distributed tracing
func (p *TracedProducer) PublishBatch(ctx context.Context, topic string, events ...pub.Event) ([]string, error) {
	ctx, span := p.tracer.StartSpan(ctx, "producer.publish_batch", trace.WithSpanKind(trace.SpanKindProducer))
	span.SetAttributes(p.tracer.TopicAttributes(topic)...)
	span.SetAttributes(attribute.Int("messaging.batch.message_count", len(events)))

	ids, err := p.producer.PublishBatch(ctx, topic, events...)

	p.tracer.End(ctx, span, err)

	return ids, err
}
