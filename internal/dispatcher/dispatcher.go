// Package dispatcher routes a parsed command line to the operation it names.
package dispatcher

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"pubcli/internal/irc"
	"pubcli/internal/pub"
	"pubcli/internal/pub/consumer"
	"pubcli/internal/validator"
)

// Config is the process-wide configuration the operations need. It is fixed
// for the lifetime of a Dispatcher.
type Config struct {
	// Loop makes pull_messages repeat until interrupted or a remote failure.
	Loop bool
	// Continue overrides the loop decision derived from Loop.
	Continue consumer.Continue
	// Out receives command output: listings, created names, pulled payloads.
	Out io.Writer
}

// Relay runs the IRC to topic bridge used by connect_irc.
type Relay interface {
	Run(ctx context.Context, cfg irc.Config) (int, error)
}

type Dispatcher struct {
	config   Config
	service  pub.Service
	consumer pub.Consumer
	producer pub.Producer
	relay    Relay
	logger   *zap.Logger
}

func New(
	config Config,
	service pub.Service,
	consumer pub.Consumer,
	producer pub.Producer,
	relay Relay,
	logger *zap.Logger,
) (*Dispatcher, error) {
	d := Dispatcher{
		config:   config,
		service:  service,
		consumer: consumer,
		producer: producer,
		relay:    relay,
		logger:   logger,
	}

	if err := validator.Validate(
		"dispatcher",
		d.config.Out,
		d.service,
		d.consumer,
		d.producer,
		d.relay,
		d.logger,
	); err != nil {
		return nil, fmt.Errorf("failed to validate dispatcher deps: %w", err)
	}

	return &d, nil
}

// Dispatch runs the operation named by args[1] for the project in args[0].
// Unknown names yield ErrInvalidOperation and too few arguments
// ErrInsufficientArguments, both before any remote call. Remote failures are
// returned as they are.
func (d *Dispatcher) Dispatch(ctx context.Context, args []string) error {
	op, err := Parse(args)
	if err != nil {
		return err
	}

	h, ok := handlers[op]
	if !ok {
		return fmt.Errorf("%w: %s has no handler", pub.ErrInvalidOperation, op)
	}

	d.logger.Debug("dispatching", zap.Stringer("operation", op), zap.String("project", args[0]))

	return h(ctx, d, args)
}

// Parse checks args without touching the service: the operation name must be
// known and the operation's own arguments present.
func Parse(args []string) (Operation, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%w: expected PROJECT OPERATION, got %d arguments", pub.ErrInsufficientArguments, len(args))
	}

	op, ok := ParseOperation(args[1])
	if !ok {
		return 0, fmt.Errorf("%w: %q", pub.ErrInvalidOperation, args[1])
	}
	return op, checkArgs(op, args)
}

func (d *Dispatcher) continueFunc() consumer.Continue {
	if d.config.Continue != nil {
		return d.config.Continue
	}
	return consumer.ContinueFor(d.config.Loop)
}

func (d *Dispatcher) println(s string) error {
	if _, err := fmt.Fprintln(d.config.Out, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
