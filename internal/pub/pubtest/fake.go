// Package pubtest provides an in-memory pub.Service for tests.
package pubtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pubcli/internal/pub"
)

// Call is one recorded invocation of a Service method.
type Call struct {
	Op       string
	Resource string
}

// PullResult is a scripted response to one Pull call.
type PullResult struct {
	Messages []pub.Message
	Err      error
}

// Service is a fake pub.Service. Topic and subscription calls mutate
// in-memory state; Pull replays Pulls in order and returns empty batches once
// they run out. Setting Errs[op] makes that operation fail.
type Service struct {
	mu sync.Mutex

	Topics        map[string]bool
	Subscriptions map[string]string // subscription -> topic
	Published     map[string][]pub.Event
	Pulls         []PullResult
	Acks          [][]string // one entry per Acknowledge request
	Errs          map[string]error
	Calls         []Call

	nextID int
}

func NewService() *Service {
	return &Service{
		Topics:        map[string]bool{},
		Subscriptions: map[string]string{},
		Published:     map[string][]pub.Event{},
		Errs:          map[string]error{},
	}
}

// Messages builds n messages with sequential IDs, ack IDs and payloads.
func Messages(prefix string, n int) []pub.Message {
	msgs := make([]pub.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, pub.Message{
			AckID: fmt.Sprintf("%s-ack-%d", prefix, i),
			ID:    fmt.Sprintf("%s-%d", prefix, i),
			Data:  []byte(fmt.Sprintf("%s payload %d", prefix, i)),
		})
	}
	return msgs
}

// Ops returns the recorded operation names in call order.
func (s *Service) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, 0, len(s.Calls))
	for _, c := range s.Calls {
		ops = append(ops, c.Op)
	}
	return ops
}

// Acked returns every acknowledged ID across all requests.
func (s *Service) Acked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, req := range s.Acks {
		ids = append(ids, req...)
	}
	return ids
}

func (s *Service) call(op, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Op: op, Resource: resource})
	return pub.RemoteError(op, resource, s.Errs[op])
}

func (s *Service) CreateTopic(_ context.Context, topic string) error {
	if err := s.call("create_topic", topic); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Topics[topic] {
		return pub.RemoteError("create_topic", topic, fmt.Errorf("topic already exists"))
	}
	s.Topics[topic] = true
	return nil
}

func (s *Service) DeleteTopic(_ context.Context, topic string) error {
	if err := s.call("delete_topic", topic); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Topics[topic] {
		return pub.RemoteError("delete_topic", topic, fmt.Errorf("topic not found"))
	}
	delete(s.Topics, topic)
	return nil
}

func (s *Service) ListTopics(_ context.Context, project string) ([]string, error) {
	if err := s.call("list_topics", project); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return names(s.Topics, pub.ProjectName(project)), nil
}

func (s *Service) Publish(_ context.Context, topic string, events ...pub.Event) ([]string, error) {
	if err := s.call("publish", topic); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(events))
	for _, e := range events {
		s.nextID++
		ids = append(ids, fmt.Sprintf("m%d", s.nextID))
		s.Published[topic] = append(s.Published[topic], e)
	}
	return ids, nil
}

func (s *Service) CreateSubscription(_ context.Context, sub, topic string) error {
	if err := s.call("create_subscription", sub); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Subscriptions[sub]; ok {
		return pub.RemoteError("create_subscription", sub, fmt.Errorf("subscription already exists"))
	}
	s.Subscriptions[sub] = topic
	return nil
}

func (s *Service) DeleteSubscription(_ context.Context, sub string) error {
	if err := s.call("delete_subscription", sub); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Subscriptions, sub)
	return nil
}

func (s *Service) ListSubscriptions(_ context.Context, project string) ([]string, error) {
	if err := s.call("list_subscriptions", project); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(s.Subscriptions))
	for sub := range s.Subscriptions {
		set[sub] = true
	}
	return names(set, pub.ProjectName(project)), nil
}

func (s *Service) Pull(_ context.Context, sub string, max int) ([]pub.Message, error) {
	if err := s.call("pull", sub); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Pulls) == 0 {
		return nil, nil
	}
	res := s.Pulls[0]
	s.Pulls = s.Pulls[1:]
	if res.Err != nil {
		return nil, pub.RemoteError("pull", sub, res.Err)
	}
	if len(res.Messages) > max {
		return nil, fmt.Errorf("pubtest: scripted batch of %d exceeds max %d", len(res.Messages), max)
	}
	return res.Messages, nil
}

func (s *Service) Acknowledge(_ context.Context, sub string, ackIDs []string) error {
	if err := s.call("acknowledge", sub); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Acks = append(s.Acks, append([]string(nil), ackIDs...))
	return nil
}

func names(set map[string]bool, project string) []string {
	var out []string
	for name := range set {
		if strings.HasPrefix(name, project+"/") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
