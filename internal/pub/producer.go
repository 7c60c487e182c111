package pub

import "context"

// Producer defines the interface for publishing messages to topics.
type Producer interface {
	// PublishBatch publishes a batch of events to a topic and returns the
	// server assigned message IDs in the same order.
	PublishBatch(ctx context.Context, topic string, events ...Event) ([]string, error)
}
