package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pubcli/internal/pub"
	"pubcli/internal/pub/tracing"
)

// TracedService wraps a pub.Service with distributed tracing
// Layer order: TracedService -> MetricsService -> Service (real thing)
type TracedService struct {
	service pub.Service
	tracer  *tracing.Tracer
}

// NewTracedService creates a new traced service that wraps a metrics service
func NewTracedService(service pub.Service, tracer *tracing.Tracer) pub.Service {
	return &TracedService{
		service: service,
		tracer:  tracer,
	}
}

func (s *TracedService) start(ctx context.Context, operation, resource string) (context.Context, trace.Span) {
	ctx, span := s.tracer.StartSpan(ctx, "pubsub."+operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(s.tracer.RemoteAttributes(operation, resource)...)
	return ctx, span
}

// CreateTopic implements pub.Service.CreateTopic with distributed tracing
func (s *TracedService) CreateTopic(ctx context.Context, topic string) error {
	ctx, span := s.start(ctx, "create_topic", topic)
	err := s.service.CreateTopic(ctx, topic)
	s.tracer.End(ctx, span, err)
	return err
}

// DeleteTopic implements pub.Service.DeleteTopic with distributed tracing
func (s *TracedService) DeleteTopic(ctx context.Context, topic string) error {
	ctx, span := s.start(ctx, "delete_topic", topic)
	err := s.service.DeleteTopic(ctx, topic)
	s.tracer.End(ctx, span, err)
	return err
}

// ListTopics implements pub.Service.ListTopics with distributed tracing
func (s *TracedService) ListTopics(ctx context.Context, project string) ([]string, error) {
	ctx, span := s.start(ctx, "list_topics", project)
	names, err := s.service.ListTopics(ctx, project)
	span.SetAttributes(attribute.Int("pubcli.results", len(names)))
	s.tracer.End(ctx, span, err)
	return names, err
}

// Publish implements pub.Service.Publish with distributed tracing
func (s *TracedService) Publish(ctx context.Context, topic string, events ...pub.Event) ([]string, error) {
	ctx, span := s.start(ctx, "publish", topic)
	span.SetAttributes(attribute.Int("messaging.batch.message_count", len(events)))
	ids, err := s.service.Publish(ctx, topic, events...)
	s.tracer.End(ctx, span, err)
	return ids, err
}

// CreateSubscription implements pub.Service.CreateSubscription with distributed tracing
func (s *TracedService) CreateSubscription(ctx context.Context, sub, topic string) error {
	ctx, span := s.start(ctx, "create_subscription", sub)
	span.SetAttributes(s.tracer.TopicAttributes(topic)...)
	err := s.service.CreateSubscription(ctx, sub, topic)
	s.tracer.End(ctx, span, err)
	return err
}

// DeleteSubscription implements pub.Service.DeleteSubscription with distributed tracing
func (s *TracedService) DeleteSubscription(ctx context.Context, sub string) error {
	ctx, span := s.start(ctx, "delete_subscription", sub)
	err := s.service.DeleteSubscription(ctx, sub)
	s.tracer.End(ctx, span, err)
	return err
}

// ListSubscriptions implements pub.Service.ListSubscriptions with distributed tracing
func (s *TracedService) ListSubscriptions(ctx context.Context, project string) ([]string, error) {
	ctx, span := s.start(ctx, "list_subscriptions", project)
	names, err := s.service.ListSubscriptions(ctx, project)
	span.SetAttributes(attribute.Int("pubcli.results", len(names)))
	s.tracer.End(ctx, span, err)
	return names, err
}

// Pull implements pub.Service.Pull with distributed tracing
func (s *TracedService) Pull(ctx context.Context, sub string, max int) ([]pub.Message, error) {
	ctx, span := s.start(ctx, "pull", sub)
	msgs, err := s.service.Pull(ctx, sub, max)
	span.SetAttributes(
		attribute.Int("pubcli.max_messages", max),
		attribute.Int("messaging.batch.message_count", len(msgs)),
	)
	s.tracer.End(ctx, span, err)
	return msgs, err
}

// Acknowledge implements pub.Service.Acknowledge with distributed tracing
func (s *TracedService) Acknowledge(ctx context.Context, sub string, ackIDs []string) error {
	ctx, span := s.start(ctx, "acknowledge", sub)
	span.SetAttributes(attribute.Int("messaging.batch.message_count", len(ackIDs)))
	err := s.service.Acknowledge(ctx, sub, ackIDs)
	s.tracer.End(ctx, span, err)
	return err
}
