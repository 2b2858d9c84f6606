package chat

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "60s" parse.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	// When File is set, logs rotate there instead of going to stdout.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	IdleTimeout   Duration `yaml:"idle_timeout"`
	SweepInterval Duration `yaml:"sweep_interval"`
	ShutdownGrace Duration `yaml:"shutdown_grace"`

	// Buffer sizes for the hub event channel and per-client outbound channel.
	EventBuffer int `yaml:"event_buffer"`
	OutBuffer   int `yaml:"out_buffer"`

	// Per-connection inbound line budget. Lines over budget are dropped.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	Log LogConfig `yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Addr:          ":4000",
		MetricsAddr:   ":9090",
		IdleTimeout:   Duration(60 * time.Second),
		SweepInterval: Duration(10 * time.Second),
		ShutdownGrace: Duration(5 * time.Second),
		EventBuffer:   128,
		OutBuffer:     32,
		RateLimit:     20,
		RateBurst:     40,
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML file
// (if path is non-empty), then environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CHATRELAY_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("CHATRELAY_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("CHATRELAY_PORT: %w", err)
		}
		c.Addr = ":" + v
	}
	if v := os.Getenv("CHATRELAY_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("CHATRELAY_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHATRELAY_IDLE_TIMEOUT: %w", err)
		}
		c.IdleTimeout = Duration(d)
	}
	if v := os.Getenv("CHATRELAY_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHATRELAY_SWEEP_INTERVAL: %w", err)
		}
		c.SweepInterval = Duration(d)
	}
	if v := os.Getenv("CHATRELAY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}
