package irc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"pubcli/internal/pub"
	"pubcli/internal/pub/producer"
	"pubcli/internal/pub/pubtest"
)

const (
	topic = "projects/P/topics/wiki"
	edit  = ":rc!~rc@special.user PRIVMSG #en.wikipedia :\x0314[[\x0307Go (programming language)\x0314]]\x034 M\x0310 " +
		"\x0302https://en.wikipedia.org/w/index.php?diff=2&oldid=1\x03 \x035*\x03 \x0303Alice\x03 \x035*\x03 (+12) \x0310typo\x03"
	wantEdit = "Title: Go (programming language), Diff: https://en.wikipedia.org/w/index.php?diff=2&oldid=1, " +
		"User: Alice, Size: (+12), Comment: typo"
)

func TestChange(t *testing.T) {
	for _, tc := range []struct {
		line   string
		want   string
		wantOK bool
	}{
		{edit, wantEdit, true},
		{"[[Page]] http://x.org/diff * Bob * (-3) revert", "Title: Page, Diff: http://x.org/diff, User: Bob, Size: (-3), Comment: revert", true},
		{":server NOTICE * :hello", "", false},
		{"[[Page]] without a diff", "", false},
	} {
		got, ok := Change(tc.line)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("Change(%q) = %q, %t; want %q, %t", tc.line, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestAddress(t *testing.T) {
	if got, want := address("irc.example.org"), "irc.example.org:6667"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := address("127.0.0.1:7000"), "127.0.0.1:7000"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// fakeServer accepts one client, runs script against it and reports what the
// client sent.
func fakeServer(t *testing.T, script func(r *bufio.Reader, c net.Conn) error) (string, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	done := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer c.Close()
		done <- script(bufio.NewReader(c), c)
	}()
	return ln.Addr().String(), done
}

func expect(r *bufio.Reader, prefix string) error {
	line, err := r.ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, prefix) {
		return fmt.Errorf("got %q, want prefix %q", line, prefix)
	}
	return nil
}

func newRelay(t *testing.T, s pub.Service) *Relay {
	t.Helper()
	p, err := producer.NewProducer(s)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRelay(p, &net.Dialer{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRelayRun(t *testing.T) {
	addr, done := fakeServer(t, func(r *bufio.Reader, c net.Conn) error {
		if err := expect(r, "NICK bot-P\r\n"); err != nil {
			return err
		}
		if err := expect(r, "USER bot-P 8 * : "); err != nil {
			return err
		}
		fmt.Fprint(c, ":irc.test 001 bot-P :Welcome\r\n")
		fmt.Fprint(c, "PING :reg\r\n")
		if err := expect(r, "PONG :reg\r\n"); err != nil {
			return err
		}
		fmt.Fprint(c, ":irc.test 004 bot-P irc.test v1 o o\r\n")
		if err := expect(r, "JOIN #en.wikipedia\r\n"); err != nil {
			return err
		}
		fmt.Fprint(c, ":irc.test 332 bot-P #en.wikipedia :topic\r\n")
		fmt.Fprint(c, edit+"\r\n")
		fmt.Fprint(c, "PING :keepalive\r\n")
		if err := expect(r, "PONG :keepalive\r\n"); err != nil {
			return err
		}
		fmt.Fprint(c, edit+"\r\n")
		return nil
	})

	fake := pubtest.NewService()
	n, err := newRelay(t, fake).Run(context.Background(), Config{
		Server:  addr,
		Channel: "#en.wikipedia",
		Nick:    Nick("P"),
		Topic:   topic,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
	if n != 2 {
		t.Errorf("published %d, want 2", n)
	}
	want := []pub.Event{pub.TextEvent(wantEdit), pub.TextEvent(wantEdit)}
	if diff := cmp.Diff(want, fake.Published[topic]); diff != "" {
		t.Errorf("published mismatch (-want +got):\n%s", diff)
	}
}

func TestRelayNicknameInUse(t *testing.T) {
	addr, done := fakeServer(t, func(r *bufio.Reader, c net.Conn) error {
		if err := expect(r, "NICK"); err != nil {
			return err
		}
		if err := expect(r, "USER"); err != nil {
			return err
		}
		fmt.Fprint(c, ":irc.test 433 * bot-P :Nickname is already in use\r\n")
		return nil
	})

	_, err := newRelay(t, pubtest.NewService()).Run(context.Background(), Config{
		Server: addr, Channel: "#c", Nick: "bot-P", Topic: topic,
	})
	if !errors.Is(err, ErrNicknameInUse) {
		t.Errorf("got %v, want ErrNicknameInUse", err)
	}
	<-done
}

func TestRelayPublishFailure(t *testing.T) {
	addr, done := fakeServer(t, func(r *bufio.Reader, c net.Conn) error {
		expect(r, "NICK")
		expect(r, "USER")
		fmt.Fprint(c, ":irc.test 004 bot-P irc.test v1 o o\r\n")
		expect(r, "JOIN")
		fmt.Fprint(c, edit+"\r\n")
		// hold the connection until the client gives up
		r.ReadString('\n')
		return nil
	})

	fake := pubtest.NewService()
	fake.Errs["publish"] = errors.New("not found")
	_, err := newRelay(t, fake).Run(context.Background(), Config{
		Server: addr, Channel: "#c", Nick: "bot-P", Topic: topic,
	})
	var rse *pub.RemoteServiceError
	if !errors.As(err, &rse) {
		t.Errorf("got %v, want *pub.RemoteServiceError", err)
	}
	<-done
}
