package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/pubsub/pstest"

	"pubcli/internal/config"
	"pubcli/internal/pub"
)

func TestExecuteUsageFailures(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"project only", []string{"P"}},
		{"missing topic", []string{"P", "create_topic"}},
		{"missing message", []string{"P", "publish_message", "T"}},
		{"unknown flag", []string{"--bogus", "P", "list_topics"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := execute(tc.args, &stdout, &stderr); got != 1 {
				t.Errorf("exit code %d, want 1", got)
			}
			if !strings.Contains(stderr.String(), "PROJ pull_messages SUBSCRIPTION") {
				t.Errorf("usage not printed, stderr:\n%s", stderr.String())
			}
			if stdout.Len() != 0 {
				t.Errorf("unexpected stdout %q", stdout.String())
			}
		})
	}
}

func TestExecuteHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if got := execute([]string{"--help"}, &stdout, &stderr); got != 0 {
		t.Errorf("exit code %d, want 0", got)
	}
	if !strings.Contains(stdout.String(), "--loop") {
		t.Errorf("help does not mention --loop:\n%s", stdout.String())
	}
}

func TestExecuteInvalidOperation(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if got := execute([]string{"P", "pull"}, &stdout, &stderr); got != 1 {
		t.Errorf("exit code %d, want 1", got)
	}
	if !strings.Contains(stderr.String(), `invalid operation: "pull"`) {
		t.Errorf("stderr does not name the operation:\n%s", stderr.String())
	}
}

func TestRunAgainstFake(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()

	cfg := config.Config{EmulatorHost: srv.Addr, LogLevel: "error"}
	ctx := context.Background()

	var out bytes.Buffer
	for _, args := range [][]string{
		{"P", "create_topic", "T"},
		{"P", "create_subscription", "S", "T"},
		{"P", "publish_message", "T", "hello world"},
		{"P", "pull_messages", "S"},
	} {
		if err := run(ctx, cfg, args, &out); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	if !strings.HasSuffix(out.String(), "hello world\n") {
		t.Errorf("pulled payload missing, output:\n%s", out.String())
	}
	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if got := msgs[0].Acks; got != 1 {
		t.Errorf("message acked %d times, want 1", got)
	}
}

func TestRunRemoteFailure(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()

	cfg := config.Config{EmulatorHost: srv.Addr, LogLevel: "error"}
	var out bytes.Buffer
	err := run(context.Background(), cfg, []string{"P", "delete_topic", "missing"}, &out)

	var rse *pub.RemoteServiceError
	if !errors.As(err, &rse) {
		t.Fatalf("got %v, want *pub.RemoteServiceError", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestExecuteRemoteFailureExitCode(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", srv.Addr)
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	if got := execute([]string{"P", "delete_topic", "missing"}, &stdout, &stderr); got != 1 {
		t.Errorf("exit code %d, want 1", got)
	}
	if !strings.HasPrefix(stderr.String(), "error: ") {
		t.Errorf("stderr lacks diagnostic:\n%s", stderr.String())
	}
	if strings.Contains(stderr.String(), "PROJ pull_messages SUBSCRIPTION") {
		t.Errorf("usage printed for a remote failure:\n%s", stderr.String())
	}
}
