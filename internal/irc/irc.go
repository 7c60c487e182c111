// Package irc relays a Wikipedia recent-changes IRC channel into a Pub/Sub
// topic.
package irc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"pubcli/internal/pub"
	"pubcli/internal/validator"
)

const (
	DefaultPort = "6667"
	botName     = "Cloud Pub/Sub IRC Bot"
)

// ErrNicknameInUse is returned when the server rejects the bot's nick.
var ErrNicknameInUse = errors.New("nickname is already in use")

var (
	// [[Title]] flags https://diff-url * user * (+size) comment
	changePattern = regexp.MustCompile(`\[\[(.*)\]\].*(https?://.*) \* (.*) \* (\(\+?-?\d+\)) (.*)`)
	// mIRC color and formatting control codes
	formatting = regexp.MustCompile(`\x03\d{0,2}(,\d{1,2})?|[\x02\x0f\x16\x1d\x1f]`)
)

// Dialer opens the connection to the IRC server. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config names the IRC endpoint and the topic changes are published to.
type Config struct {
	Server  string // host or host:port, port defaults to 6667
	Channel string
	Nick    string
	Topic   string // fully qualified topic name
}

// Nick returns the nick the relay registers for project.
func Nick(project string) string {
	return fmt.Sprintf("bot-%s", pub.ShortName(project))
}

type Relay struct {
	producer pub.Producer
	dialer   Dialer
	logger   *zap.Logger
}

func NewRelay(producer pub.Producer, dialer Dialer, logger *zap.Logger) (*Relay, error) {
	r := Relay{
		producer: producer,
		dialer:   dialer,
		logger:   logger,
	}

	if err := validator.Validate("irc relay", r.producer, r.dialer, r.logger); err != nil {
		return nil, fmt.Errorf("failed to validate irc relay deps: %w", err)
	}

	return &r, nil
}

// Run connects, joins the channel and publishes every recognised change
// until the server closes the connection or ctx is cancelled. It returns the
// number of messages published. Publish failures are fatal.
func (r *Relay) Run(ctx context.Context, cfg Config) (int, error) {
	logger := r.logger.With(zap.String("server", cfg.Server), zap.String("channel", cfg.Channel))

	conn, err := r.dialer.DialContext(ctx, "tcp", address(cfg.Server))
	if err != nil {
		return 0, fmt.Errorf("failed to connect to irc server %s: %w", cfg.Server, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	tp := textproto.NewConn(conn)

	if err := register(tp, cfg.Nick); err != nil {
		return 0, r.connErr(ctx, err)
	}
	logger.Info("registered", zap.String("nick", cfg.Nick))

	if err := tp.PrintfLine("JOIN %s", cfg.Channel); err != nil {
		return 0, r.connErr(ctx, fmt.Errorf("failed to join %s: %w", cfg.Channel, err))
	}

	var published int
	for {
		line, err := tp.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("server closed the connection", zap.Int("published", published))
				return published, nil
			}
			return published, r.connErr(ctx, fmt.Errorf("failed to read from irc server: %w", err))
		}

		if token, ok := ping(line); ok {
			if err := tp.PrintfLine("PONG %s", token); err != nil {
				return published, r.connErr(ctx, fmt.Errorf("failed to answer ping: %w", err))
			}
			continue
		}

		msg, ok := Change(line)
		if !ok {
			continue
		}

		if _, err := r.producer.PublishBatch(ctx, cfg.Topic, pub.TextEvent(msg)); err != nil {
			if ctx.Err() != nil {
				return published, nil
			}
			return published, fmt.Errorf("failed to relay change: %w", err)
		}
		published++
		logger.Debug("relayed change", zap.String("message", msg))
	}
}

// connErr hides errors caused by ctx closing the connection.
func (r *Relay) connErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Change extracts a recent-change summary from an IRC line.
func Change(line string) (string, bool) {
	m := changePattern.FindStringSubmatch(formatting.ReplaceAllString(line, ""))
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("Title: %s, Diff: %s, User: %s, Size: %s, Comment: %s", m[1], m[2], m[3], m[4], m[5]), true
}

func register(tp *textproto.Conn, nick string) error {
	if err := tp.PrintfLine("NICK %s", nick); err != nil {
		return fmt.Errorf("failed to send nick: %w", err)
	}
	if err := tp.PrintfLine("USER %s 8 * : %s", nick, botName); err != nil {
		return fmt.Errorf("failed to send user: %w", err)
	}

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return fmt.Errorf("irc registration failed: %w", err)
		}
		if token, ok := ping(line); ok {
			if err := tp.PrintfLine("PONG %s", token); err != nil {
				return fmt.Errorf("failed to answer ping: %w", err)
			}
			continue
		}
		switch numeric(line) {
		case "004":
			return nil
		case "433":
			return fmt.Errorf("%w: %s", ErrNicknameInUse, nick)
		}
	}
}

func ping(line string) (string, bool) {
	if len(line) < 5 || !strings.EqualFold(line[:5], "ping ") {
		return "", false
	}
	return line[5:], true
}

// numeric returns the command of a server reply, e.g. "004".
func numeric(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], ":") {
		return ""
	}
	return fields[1]
}

func address(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, DefaultPort)
}
