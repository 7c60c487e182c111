package producer

import (
	"context"
	"fmt"

	"pubcli/internal/pub"
	"pubcli/internal/validator"
)

type Producer struct {
	service pub.Service
}

func NewProducer(service pub.Service) (*Producer, error) {
	p := Producer{
		service: service,
	}

	if err := validator.Validate("producer", p.service); err != nil {
		return nil, fmt.Errorf("failed to validate producer service: %w", err)
	}

	return &p, nil
}

// PublishBatch implements pub.Producer.PublishBatch. An empty batch sends
// nothing.
func (p *Producer) PublishBatch(ctx context.Context, topic string, events ...pub.Event) ([]string, error) {
	if len(events) == 0 {
		return nil, nil
	}

	ids, err := p.service.Publish(ctx, topic, events...)
	if err != nil {
		return nil, fmt.Errorf("failed to publish %d events to %s: %w", len(events), topic, err)
	}

	if len(ids) != len(events) {
		return ids, pub.RemoteError("publish", topic,
			fmt.Errorf("service returned %d message ids for %d events", len(ids), len(events)))
	}

	return ids, nil
}
