// Package service implements pub.Service on top of the generated Cloud
// Pub/Sub gRPC clients.
package service

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/apiv1"
	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"pubcli/internal/pub"
	"pubcli/internal/validator"
)

// Options selects how the service clients authenticate and where they connect.
type Options struct {
	// CredentialsFile is a service account JSON key. Empty means application
	// default credentials.
	CredentialsFile string
	// Endpoint is the host:port of an emulator. When set, clients connect in
	// plaintext and without authentication; CredentialsFile is ignored.
	Endpoint string
}

func (o Options) clientOptions() []option.ClientOption {
	if o.Endpoint != "" {
		return []option.ClientOption{
			option.WithEndpoint(o.Endpoint),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		}
	}
	if o.CredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(o.CredentialsFile)}
	}
	return nil
}

// Service is the concrete implementation of the pub.Service interface.
type Service struct {
	publisher  *pubsub.PublisherClient
	subscriber *pubsub.SubscriberClient
}

// Dial creates the publisher and subscriber clients described by o.
func Dial(ctx context.Context, o Options) (*Service, error) {
	opts := o.clientOptions()

	publisher, err := pubsub.NewPublisherClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher client: %w", err)
	}

	subscriber, err := pubsub.NewSubscriberClient(ctx, opts...)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create subscriber client: %w", err)
	}

	return New(publisher, subscriber)
}

// New wraps already constructed clients.
func New(publisher *pubsub.PublisherClient, subscriber *pubsub.SubscriberClient) (*Service, error) {
	s := Service{
		publisher:  publisher,
		subscriber: subscriber,
	}

	if err := validator.Validate("service", s.publisher, s.subscriber); err != nil {
		return nil, fmt.Errorf("failed to validate service clients: %w", err)
	}

	return &s, nil
}

// Close closes both underlying connections.
func (s *Service) Close() error {
	return errors.Join(s.publisher.Close(), s.subscriber.Close())
}

// CreateTopic implements pub.Service.CreateTopic.
func (s *Service) CreateTopic(ctx context.Context, topic string) error {
	_, err := s.publisher.CreateTopic(ctx, &pubsubpb.Topic{Name: topic})
	return pub.RemoteError("create topic", topic, err)
}

// DeleteTopic implements pub.Service.DeleteTopic.
func (s *Service) DeleteTopic(ctx context.Context, topic string) error {
	err := s.publisher.DeleteTopic(ctx, &pubsubpb.DeleteTopicRequest{Topic: topic})
	return pub.RemoteError("delete topic", topic, err)
}

// ListTopics implements pub.Service.ListTopics, following every page.
func (s *Service) ListTopics(ctx context.Context, project string) ([]string, error) {
	project = pub.ProjectName(project)
	it := s.publisher.ListTopics(ctx, &pubsubpb.ListTopicsRequest{Project: project})

	var names []string
	for {
		t, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, pub.RemoteError("list topics", project, err)
		}
		names = append(names, t.GetName())
	}
}

// Publish implements pub.Service.Publish.
func (s *Service) Publish(ctx context.Context, topic string, events ...pub.Event) ([]string, error) {
	msgs := make([]*pubsubpb.PubsubMessage, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, &pubsubpb.PubsubMessage{
			Data:       e.Data,
			Attributes: e.Attributes,
		})
	}

	res, err := s.publisher.Publish(ctx, &pubsubpb.PublishRequest{
		Topic:    topic,
		Messages: msgs,
	})
	if err != nil {
		return nil, pub.RemoteError("publish", topic, err)
	}

	return res.GetMessageIds(), nil
}

// CreateSubscription implements pub.Service.CreateSubscription.
func (s *Service) CreateSubscription(ctx context.Context, sub, topic string) error {
	_, err := s.subscriber.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:  sub,
		Topic: topic,
	})
	return pub.RemoteError("create subscription", sub, err)
}

// DeleteSubscription implements pub.Service.DeleteSubscription.
func (s *Service) DeleteSubscription(ctx context.Context, sub string) error {
	err := s.subscriber.DeleteSubscription(ctx, &pubsubpb.DeleteSubscriptionRequest{Subscription: sub})
	return pub.RemoteError("delete subscription", sub, err)
}

// ListSubscriptions implements pub.Service.ListSubscriptions, following every page.
func (s *Service) ListSubscriptions(ctx context.Context, project string) ([]string, error) {
	project = pub.ProjectName(project)
	it := s.subscriber.ListSubscriptions(ctx, &pubsubpb.ListSubscriptionsRequest{Project: project})

	var names []string
	for {
		sub, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, pub.RemoteError("list subscriptions", project, err)
		}
		names = append(names, sub.GetName())
	}
}

// Pull implements pub.Service.Pull as a long poll bounded to max messages.
func (s *Service) Pull(ctx context.Context, sub string, max int) ([]pub.Message, error) {
	res, err := s.subscriber.Pull(ctx, &pubsubpb.PullRequest{
		Subscription: sub,
		MaxMessages:  int32(max),
	})
	if err != nil {
		return nil, pub.RemoteError("pull", sub, err)
	}

	received := res.GetReceivedMessages()
	msgs := make([]pub.Message, 0, len(received))
	for _, rm := range received {
		m := pub.Message{
			AckID:      rm.GetAckId(),
			ID:         rm.GetMessage().GetMessageId(),
			Data:       rm.GetMessage().GetData(),
			Attributes: rm.GetMessage().GetAttributes(),
		}
		if ts := rm.GetMessage().GetPublishTime(); ts != nil {
			m.PublishTime = ts.AsTime()
		}
		msgs = append(msgs, m)
	}

	return msgs, nil
}

// Acknowledge implements pub.Service.Acknowledge in a single request.
func (s *Service) Acknowledge(ctx context.Context, sub string, ackIDs []string) error {
	err := s.subscriber.Acknowledge(ctx, &pubsubpb.AcknowledgeRequest{
		Subscription: sub,
		AckIds:       ackIDs,
	})
	return pub.RemoteError("acknowledge", sub, err)
}
