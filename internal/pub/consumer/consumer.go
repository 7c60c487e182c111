package consumer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pubcli/internal/pub"
	"pubcli/internal/validator"
)

// Handler applies a message's effect. A non-nil error leaves the message
// unacknowledged so the service redelivers it.
type Handler func(ctx context.Context, msg pub.Message) error

type Consumer struct {
	service   pub.Service
	handler   Handler
	logger    *zap.Logger
	batchSize int
}

func NewConsumer(service pub.Service, handler Handler, logger *zap.Logger, batchSize int) (*Consumer, error) {
	c := Consumer{
		service:   service,
		handler:   handler,
		logger:    logger,
		batchSize: batchSize,
	}

	if err := validator.Validate("consumer", c.service, c.handler, c.logger, c.batchSize); err != nil {
		return nil, fmt.Errorf("failed to validate consumer deps: %w", err)
	}

	return &c, nil
}

// Pull implements pub.Consumer.Pull: one request, process and acknowledge
// cycle. Messages are handled in the order received; a handler failure skips
// the message without aborting the batch. Successful messages are
// acknowledged together in a single request.
func (c *Consumer) Pull(ctx context.Context, sub string) (int, error) {
	logger := c.logger.With(zap.String("sub", sub))
	logger.Debug("attempting to pull messages", zap.Int("max", c.batchSize))

	msgs, err := c.service.Pull(ctx, sub, c.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to pull messages: %w", err)
	}

	logger.Debug("pulled messages", zap.Int("count", len(msgs)))

	ackIDs := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if err := c.process(ctx, msg); err != nil {
			logger.Warn("leaving message unacknowledged", zap.String("messageId", msg.ID), zap.Error(err))
			continue
		}
		ackIDs = append(ackIDs, msg.AckID)
	}

	if len(ackIDs) == 0 {
		return 0, nil
	}

	// handlers already ran, ack even if ctx was cancelled meanwhile
	if err := c.service.Acknowledge(context.WithoutCancel(ctx), sub, ackIDs); err != nil {
		const errMsg = "failed to ack messages"
		logger.Error(errMsg, zap.Int("count", len(ackIDs)), zap.Error(err))
		return 0, fmt.Errorf(errMsg+": %w", err)
	}

	logger.Debug("acknowledged", zap.Int("count", len(ackIDs)))

	return len(ackIDs), nil
}

func (c *Consumer) process(ctx context.Context, msg pub.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		if err != nil {
			var pe *pub.ProcessingError
			if !errors.As(err, &pe) {
				err = &pub.ProcessingError{MessageID: msg.ID, Err: err}
			}
		}
	}()

	return c.handler(ctx, msg)
}
