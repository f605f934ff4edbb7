// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/showdown-ai/psbot/engine/event"
)

// Config holds the service settings read from the environment.
type Config struct {
	DexPath      string `env:"PSBOT_DEX_PATH"`                                   // Rule data file; empty uses the embedded dex.
	LogLevel     string `env:"PSBOT_LOG_LEVEL" envDefault:"info"`                // logrus level name.
	LogFormat    string `env:"PSBOT_LOG_FORMAT" envDefault:"text"`               // "text" or "json".
	RedisAddr    string `env:"PSBOT_REDIS_ADDR"`                                 // Snapshot publishing is off when empty.
	RedisChannel string `env:"PSBOT_REDIS_CHANNEL" envDefault:"psbot:snapshots"` // Channel the snapshot envelopes go to.
	MetricsAddr  string `env:"PSBOT_METRICS_ADDR"`                               // e.g. ":9090"; no endpoint when empty.
	MaxParallel  int    `env:"PSBOT_MAX_PARALLEL" envDefault:"4"`                // Concurrent battle replays.
	Perspective  string `env:"PSBOT_PERSPECTIVE"`                                // "p1", "p2" or empty for a spectator.
}

// Load reads an optional .env file from the working directory, then parses
// the environment. A missing .env file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that the struct tags cannot express.
func (c Config) Validate() error {
	if c.MaxParallel < 1 {
		return fmt.Errorf("PSBOT_MAX_PARALLEL must be positive, got %d", c.MaxParallel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("PSBOT_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.Perspective != "" && !event.Side(c.Perspective).Valid() {
		return fmt.Errorf("PSBOT_PERSPECTIVE must be p1 or p2, got %q", c.Perspective)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("PSBOT_LOG_LEVEL: %w", err)
	}
	return nil
}

// Logger builds the root logger described by the configuration.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
