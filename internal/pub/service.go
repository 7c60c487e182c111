package pub

import "context"

// Service defines the remote Pub/Sub operations the client drives.
// All topic and subscription arguments are fully qualified resource names
// (see TopicName and SubscriptionName). Implementations wrap every failure in
// a *RemoteServiceError.
type Service interface {
	// CreateTopic creates a topic.
	// Returns an error if the topic already exists or the call fails.
	CreateTopic(ctx context.Context, topic string) error

	// DeleteTopic deletes a topic. Subscriptions attached to it are detached
	// by the service, not deleted.
	DeleteTopic(ctx context.Context, topic string) error

	// ListTopics returns the fully qualified names of every topic in project.
	ListTopics(ctx context.Context, project string) ([]string, error)

	// Publish sends events to a topic in one request.
	// Returns the message IDs assigned by the service, in event order.
	Publish(ctx context.Context, topic string, events ...Event) ([]string, error)

	// CreateSubscription creates a pull subscription attached to topic.
	CreateSubscription(ctx context.Context, sub, topic string) error

	// DeleteSubscription deletes a subscription. Unacknowledged messages are
	// dropped by the service.
	DeleteSubscription(ctx context.Context, sub string) error

	// ListSubscriptions returns the fully qualified names of every
	// subscription in project.
	ListSubscriptions(ctx context.Context, project string) ([]string, error)

	// Pull requests at most max messages from a subscription. The call is a
	// long poll: it may block until messages are available or the service
	// gives up waiting, in which case it returns an empty slice and no error.
	Pull(ctx context.Context, sub string, max int) ([]Message, error)

	// Acknowledge marks the messages identified by ackIDs as processed so
	// they are not redelivered.
	Acknowledge(ctx context.Context, sub string, ackIDs []string) error
}
