package pub

import "context"

// Consumer defines the interface for consuming messages from subscriptions.
type Consumer interface {
	// Pull runs a single request, process and acknowledge cycle against sub
	// and returns the number of messages acknowledged.
	Pull(ctx context.Context, sub string) (int, error)
}
