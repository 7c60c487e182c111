package consumer

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pubcli/internal/pub"
)

// Continue decides after each completed cycle whether another one runs.
// cycle counts completed cycles starting at 1.
type Continue func(cycle int) bool

// Once stops after the first cycle.
func Once(int) bool { return false }

// Forever never stops; only a failure or cancellation ends the loop.
func Forever(int) bool { return true }

// Cycles stops after n cycles.
func Cycles(n int) Continue {
	return func(cycle int) bool { return cycle < n }
}

// ContinueFor maps the loop flag to a Continue.
func ContinueFor(loop bool) Continue {
	if loop {
		return Forever
	}
	return Once
}

// Loop runs pull cycles against sub until cont reports false. Any cycle error
// aborts the loop, whatever cont says. Cancelling ctx (the process being
// interrupted) stops the loop and returns nil, also when it interrupts a
// request in flight. A remote failure that is not caused by the cancellation
// is still returned.
func Loop(ctx context.Context, c pub.Consumer, sub string, cont Continue) error {
	for cycle := 1; ; cycle++ {
		if _, err := c.Pull(ctx, sub); err != nil {
			if ctx.Err() != nil && canceled(err) {
				return nil
			}
			return fmt.Errorf("pull cycle %d: %w", cycle, err)
		}

		if !cont(cycle) {
			return nil
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// canceled reports whether err comes from a cancelled request rather than a
// failure reported by the service.
func canceled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	return status.Code(err) == codes.Canceled
}
