package producer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pubcli/internal/pub"
	"pubcli/internal/pub/metrics"
	"pubcli/internal/pub/pubtest"
	"pubcli/internal/pub/tracing"
)

const topic = "projects/P/topics/T"

func newProducer(t *testing.T, s pub.Service) pub.Producer {
	t.Helper()
	p, err := NewProducer(s)
	if err != nil {
		t.Fatal(err)
	}
	return NewTracedProducer(NewMetricsProducer(p, metrics.NewRegistry()), tracing.NewNoopTracer())
}

func TestPublishBatch(t *testing.T) {
	fake := pubtest.NewService()
	p := newProducer(t, fake)

	events := []pub.Event{pub.TextEvent("a"), pub.TextEvent("b")}
	ids, err := p.PublishBatch(context.Background(), topic, events...)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"m1", "m2"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(events, fake.Published[topic]); diff != "" {
		t.Errorf("published mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishEmptyBatch(t *testing.T) {
	fake := pubtest.NewService()
	p := newProducer(t, fake)

	ids, err := p.PublishBatch(context.Background(), topic)
	if err != nil {
		t.Fatal(err)
	}
	if ids != nil {
		t.Errorf("got ids %v, want nil", ids)
	}
	if len(fake.Calls) != 0 {
		t.Errorf("got calls %v, want none", fake.Calls)
	}
}

func TestPublishFailure(t *testing.T) {
	fake := pubtest.NewService()
	fake.Errs["publish"] = errors.New("permission denied")
	p := newProducer(t, fake)

	_, err := p.PublishBatch(context.Background(), topic, pub.TextEvent("a"))
	var rse *pub.RemoteServiceError
	if !errors.As(err, &rse) {
		t.Fatalf("got %v, want *pub.RemoteServiceError", err)
	}
}

func TestNewProducerValidates(t *testing.T) {
	if _, err := NewProducer(nil); err == nil {
		t.Error("got nil error for nil service")
	}
}
