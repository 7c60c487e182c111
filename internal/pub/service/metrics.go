package service

import (
	"context"
	"time"

	"pubcli/internal/pub"
	"pubcli/internal/pub/metrics"
)

// MetricsService wraps a pub.Service with metrics collection
type MetricsService struct {
	service  pub.Service
	registry *metrics.Registry
}

// NewMetricsService creates a new instrumented service
func NewMetricsService(service pub.Service, registry *metrics.Registry) pub.Service {
	return &MetricsService{
		service:  service,
		registry: registry,
	}
}

func (s *MetricsService) record(operation string, start time.Time, err error) {
	s.registry.RecordRemoteOperation(operation, time.Since(start), err)
}

// CreateTopic implements pub.Service.CreateTopic with metrics collection
func (s *MetricsService) CreateTopic(ctx context.Context, topic string) error {
	start := time.Now()
	err := s.service.CreateTopic(ctx, topic)
	s.record("create_topic", start, err)
	return err
}

// DeleteTopic implements pub.Service.DeleteTopic with metrics collection
func (s *MetricsService) DeleteTopic(ctx context.Context, topic string) error {
	start := time.Now()
	err := s.service.DeleteTopic(ctx, topic)
	s.record("delete_topic", start, err)
	return err
}

// ListTopics implements pub.Service.ListTopics with metrics collection
func (s *MetricsService) ListTopics(ctx context.Context, project string) ([]string, error) {
	start := time.Now()
	names, err := s.service.ListTopics(ctx, project)
	s.record("list_topics", start, err)
	return names, err
}

// Publish implements pub.Service.Publish with metrics collection
func (s *MetricsService) Publish(ctx context.Context, topic string, events ...pub.Event) ([]string, error) {
	start := time.Now()
	ids, err := s.service.Publish(ctx, topic, events...)
	s.record("publish", start, err)
	return ids, err
}

// CreateSubscription implements pub.Service.CreateSubscription with metrics collection
func (s *MetricsService) CreateSubscription(ctx context.Context, sub, topic string) error {
	start := time.Now()
	err := s.service.CreateSubscription(ctx, sub, topic)
	s.record("create_subscription", start, err)
	return err
}

// DeleteSubscription implements pub.Service.DeleteSubscription with metrics collection
func (s *MetricsService) DeleteSubscription(ctx context.Context, sub string) error {
	start := time.Now()
	err := s.service.DeleteSubscription(ctx, sub)
	s.record("delete_subscription", start, err)
	return err
}

// ListSubscriptions implements pub.Service.ListSubscriptions with metrics collection
func (s *MetricsService) ListSubscriptions(ctx context.Context, project string) ([]string, error) {
	start := time.Now()
	names, err := s.service.ListSubscriptions(ctx, project)
	s.record("list_subscriptions", start, err)
	return names, err
}

// Pull implements pub.Service.Pull with metrics collection
func (s *MetricsService) Pull(ctx context.Context, sub string, max int) ([]pub.Message, error) {
	start := time.Now()
	msgs, err := s.service.Pull(ctx, sub, max)
	s.record("pull", start, err)
	return msgs, err
}

// Acknowledge implements pub.Service.Acknowledge with metrics collection
func (s *MetricsService) Acknowledge(ctx context.Context, sub string, ackIDs []string) error {
	start := time.Now()
	err := s.service.Acknowledge(ctx, sub, ackIDs)
	s.record("acknowledge", start, err)
	s.registry.RecordAck(sub, err)
	return err
}
