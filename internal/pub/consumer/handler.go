package consumer

import (
	"context"
	"fmt"
	"io"

	"pubcli/internal/pub"
	"pubcli/internal/pub/metrics"
)

// Printer returns a Handler that writes each payload as one line to w.
func Printer(w io.Writer) Handler {
	return func(_ context.Context, msg pub.Message) error {
		if _, err := fmt.Fprintln(w, string(msg.Data)); err != nil {
			return fmt.Errorf("failed to write payload: %w", err)
		}
		return nil
	}
}

// NewMetricsHandler wraps h so every outcome is counted in registry.
func NewMetricsHandler(h Handler, registry *metrics.Registry) Handler {
	return func(ctx context.Context, msg pub.Message) error {
		err := h(ctx, msg)
		registry.RecordMessageProcessed(err)
		return err
	}
}
