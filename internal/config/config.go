// Package config loads tradeboard settings from an optional YAML file and
// TRADEBOARD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"tradeboard/internal/forecast"
)

const EnvPrefix = "TRADEBOARD"

type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Source   SourceConfig   `yaml:"source" envconfig:"SOURCE"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SourceConfig selects where the base table comes from. Location is a file
// path for csv and sqlite and is ignored for embedded.
type SourceConfig struct {
	Kind     string `yaml:"kind" envconfig:"KIND"`
	Location string `yaml:"location" envconfig:"LOCATION"`
}

type ForecastConfig struct {
	DefaultHorizon int `yaml:"default_horizon" envconfig:"DEFAULT_HORIZON"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Kind: "embedded",
		},
		Forecast: ForecastConfig{
			DefaultHorizon: forecast.DefaultHorizon,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load starts from Default, applies path when non-empty, then the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Source.Kind {
	case "embedded":
	case "csv", "sqlite":
		if strings.TrimSpace(c.Source.Location) == "" {
			errs = append(errs, fmt.Errorf("source.location is required for kind %q", c.Source.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.kind %q", c.Source.Kind))
	}
	if err := forecast.ValidateHorizon(c.Forecast.DefaultHorizon); err != nil {
		errs = append(errs, fmt.Errorf("forecast.default_horizon: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
