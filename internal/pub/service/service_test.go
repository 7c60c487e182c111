package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"pubcli/internal/pub"
)

const project = "P"

func newFake(t *testing.T) (*Service, *pstest.Server) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { srv.Close() })

	s, err := Dial(context.Background(), Options{Endpoint: srv.Addr})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, srv
}

func mustCreate(t *testing.T, s pub.Service, topic, sub string) {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateTopic(ctx, topic); err != nil {
		t.Fatal(err)
	}
	if sub == "" {
		return
	}
	if err := s.CreateSubscription(ctx, sub, topic); err != nil {
		t.Fatal(err)
	}
}

func TestTopicsAndSubscriptions(t *testing.T) {
	s, _ := newFake(t)
	ctx := context.Background()

	var topics, subs []string
	for i := 1; i <= 3; i++ {
		topic := pub.TopicName(project, fmt.Sprintf("T%d", i))
		sub := pub.SubscriptionName(project, fmt.Sprintf("S%d", i))
		mustCreate(t, s, topic, sub)
		topics = append(topics, topic)
		subs = append(subs, sub)
	}

	sorted := cmpopts.SortSlices(func(a, b string) bool { return a < b })

	gotTopics, err := s.ListTopics(ctx, project)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(topics, gotTopics, sorted); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}

	gotSubs, err := s.ListSubscriptions(ctx, project)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(subs, gotSubs, sorted); diff != "" {
		t.Errorf("subscriptions mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteSubscription(ctx, subs[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTopic(ctx, topics[0]); err != nil {
		t.Fatal(err)
	}

	gotTopics, err = s.ListTopics(ctx, project)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(topics[1:], gotTopics, sorted); diff != "" {
		t.Errorf("topics after delete mismatch (-want +got):\n%s", diff)
	}
	gotSubs, err = s.ListSubscriptions(ctx, project)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(subs[1:], gotSubs, sorted); diff != "" {
		t.Errorf("subscriptions after delete mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateTopicTwice(t *testing.T) {
	s, _ := newFake(t)
	topic := pub.TopicName(project, "T")
	mustCreate(t, s, topic, "")

	err := s.CreateTopic(context.Background(), topic)
	var rse *pub.RemoteServiceError
	if !errors.As(err, &rse) {
		t.Fatalf("got %v, want *pub.RemoteServiceError", err)
	}
	if got, want := rse.Resource, topic; got != want {
		t.Errorf("resource = %q, want %q", got, want)
	}
}

func TestPublish(t *testing.T) {
	s, srv := newFake(t)
	topic := pub.TopicName(project, "T")
	mustCreate(t, s, topic, "")

	ids, err := s.Publish(context.Background(), topic,
		pub.TextEvent("hello"),
		pub.Event{Data: []byte("world"), Attributes: map[string]string{"k": "v"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(ids), 2; got != want {
		t.Fatalf("got %d ids, want %d", got, want)
	}

	if got, want := string(srv.Message(ids[0]).Data), "hello"; got != want {
		t.Errorf("first message data = %q, want %q", got, want)
	}
	if got, want := srv.Message(ids[1]).Attributes, map[string]string{"k": "v"}; !cmp.Equal(got, want) {
		t.Errorf("second message attributes = %v, want %v", got, want)
	}
}

func TestPullAcknowledge(t *testing.T) {
	s, srv := newFake(t)
	ctx := context.Background()
	topic := pub.TopicName(project, "T")
	sub := pub.SubscriptionName(project, "S")
	mustCreate(t, s, topic, sub)

	want := map[string]string{}
	for i := 0; i < 3; i++ {
		data := fmt.Sprintf("m%d", i)
		id := srv.Publish(topic, []byte(data), nil)
		want[id] = data
	}

	msgs, err := s.Pull(ctx, sub, pub.BatchSize)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, m := range msgs {
		if m.AckID == "" {
			t.Errorf("message %s has no ack id", m.ID)
		}
		if m.PublishTime.IsZero() {
			t.Errorf("message %s has no publish time", m.ID)
		}
		got[m.ID] = string(m.Data)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pulled messages mismatch (-want +got):\n%s", diff)
	}

	if err := s.Acknowledge(ctx, sub, pub.AckIDs(msgs[:2])); err != nil {
		t.Fatal(err)
	}
	for i, m := range msgs {
		wantAcks := 1
		if i == 2 {
			wantAcks = 0
		}
		if got := srv.Message(m.ID).Acks; got != wantAcks {
			t.Errorf("message %s acked %d times, want %d", m.ID, got, wantAcks)
		}
	}
}

func TestPullBoundedByMax(t *testing.T) {
	s, srv := newFake(t)
	topic := pub.TopicName(project, "T")
	sub := pub.SubscriptionName(project, "S")
	mustCreate(t, s, topic, sub)

	for i := 0; i < pub.BatchSize+2; i++ {
		srv.Publish(topic, []byte(fmt.Sprintf("m%d", i)), nil)
	}

	msgs, err := s.Pull(context.Background(), sub, pub.BatchSize)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(msgs), pub.BatchSize; got != want {
		t.Errorf("pulled %d messages, want %d", got, want)
	}
}

func TestPullUnknownSubscription(t *testing.T) {
	s, _ := newFake(t)

	_, err := s.Pull(context.Background(), pub.SubscriptionName(project, "missing"), pub.BatchSize)
	var rse *pub.RemoteServiceError
	if !errors.As(err, &rse) {
		t.Fatalf("got %v, want *pub.RemoteServiceError", err)
	}
	if got, want := rse.Op, "pull"; got != want {
		t.Errorf("op = %q, want %q", got, want)
	}
}
