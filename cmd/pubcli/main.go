package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pubcli/internal/config"
	"pubcli/internal/dispatcher"
	"pubcli/internal/irc"
	"pubcli/internal/pub"
	"pubcli/internal/pub/consumer"
	"pubcli/internal/pub/metrics"
	"pubcli/internal/pub/producer"
	"pubcli/internal/pub/service"
	"pubcli/internal/pub/tracing"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// flagError marks cobra flag parsing failures so they are reported as usage.
type flagError struct{ err error }

func (e flagError) Error() string { return e.err.Error() }
func (e flagError) Unwrap() error { return e.err }

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	var fe flagError
	switch {
	case err == nil:
		return 0
	case pub.IsUsage(err) || errors.As(err, &fe):
		fmt.Fprintf(stderr, "%v\n\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		fmt.Fprint(stderr, "\n"+dispatcher.Usage)
		return 1
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var (
		credentials string
		endpoint    string
		loop        bool
	)

	cmd := &cobra.Command{
		Use:           "pubcli [flags] PROJECT OPERATION [OPERATION_ARGS...]",
		Short:         "Manage Cloud Pub/Sub topics and subscriptions, publish and pull messages",
		Long:          "pubcli is a command line client for Cloud Pub/Sub.\n\n" + dispatcher.Usage,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("credentials") {
				cfg.CredentialsFile = credentials
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.EmulatorHost = endpoint
			}
			if loop {
				cfg.Loop = "loop"
			}
			return run(cmd.Context(), cfg, args, stdout)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return flagError{err: err}
	})

	cmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to a service account JSON key (env PUBSUB_CREDENTIALS_FILE)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "host:port of a Pub/Sub emulator (env PUBSUB_EMULATOR_HOST)")
	cmd.Flags().BoolVarP(&loop, "loop", "l", false, "Loop forever for pulling when specified (env LOOP)")

	return cmd
}

func run(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	// usage errors come before credentials are looked up
	if _, err := dispatcher.Parse(args); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsRegistry := metrics.NewRegistry()
	metricsRegistry.SetSystemInfo(version, buildTime)

	tracer, tracingCleanup, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingCleanup(shutdownCtx); err != nil {
			logger.Error("failed to cleanup tracing", zap.Error(err))
		}
	}()

	baseService, err := service.Dial(ctx, service.Options{
		CredentialsFile: cfg.CredentialsFile,
		Endpoint:        cfg.EmulatorHost,
	})
	if err != nil {
		return err
	}
	defer baseService.Close()

	svc := service.NewTracedService(service.NewMetricsService(baseService, metricsRegistry), tracer)

	handler := consumer.NewMetricsHandler(consumer.Printer(stdout), metricsRegistry)
	baseConsumer, err := consumer.NewConsumer(svc, handler, logger, pub.BatchSize)
	if err != nil {
		return err
	}
	cons := consumer.NewTracedConsumer(consumer.NewMetricsConsumer(baseConsumer, metricsRegistry), tracer)

	baseProducer, err := producer.NewProducer(svc)
	if err != nil {
		return err
	}
	prod := producer.NewTracedProducer(producer.NewMetricsProducer(baseProducer, metricsRegistry), tracer)

	relay, err := irc.NewRelay(prod, &net.Dialer{Timeout: 30 * time.Second}, logger.Named("irc"))
	if err != nil {
		return err
	}

	d, err := dispatcher.New(
		dispatcher.Config{Loop: cfg.LoopForever(), Out: stdout},
		svc,
		cons,
		prod,
		relay,
		logger,
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	g.Go(func() error {
		defer stopServer()
		return d.Dispatch(gctx, args)
	})

	if cfg.Metrics.Enabled() {
		metricsServer := metrics.NewServer(cfg.Metrics, metricsRegistry, logger)
		g.Go(func() error {
			return metricsServer.Start(serverCtx)
		})
		logger.Info("metrics server started",
			zap.String("endpoint", fmt.Sprintf("http://localhost:%d/metrics", cfg.Metrics.Port)),
		)
	}

	return g.Wait()
}
