// Package config collects the process environment into one structure, read
// once at startup.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pubcli/internal/pub/metrics"
	"pubcli/internal/pub/tracing"
)

type Config struct {
	CredentialsFile string `env:"PUBSUB_CREDENTIALS_FILE"`
	EmulatorHost    string `env:"PUBSUB_EMULATOR_HOST"`
	// Loop holds any non-empty value of LOOP; see LoopForever.
	Loop     string `env:"LOOP"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`

	Metrics metrics.ServerConfig
	Tracing tracing.Config
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// LoopForever reports whether pulling should repeat until interrupted.
func (c Config) LoopForever() bool {
	return c.Loop != ""
}

// NewLogger builds a production zap logger writing to stderr at the
// configured level. An invalid level falls back to info and is reported
// through the returned logger.
func (c Config) NewLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	var zapLevel zapcore.Level
	levelErr := zapLevel.UnmarshalText([]byte(c.LogLevel))
	if levelErr != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if levelErr != nil {
		logger.Warn("invalid log level, defaulting to info", zap.String("level", c.LogLevel), zap.Error(levelErr))
	}

	return logger, nil
}
