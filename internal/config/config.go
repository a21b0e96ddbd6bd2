// Package config loads pqdemo settings from TOML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Andrej220/go-utils/pqueue"
)

//go:embed sample_config.toml
var sampleConfig []byte

// Run holds the channel and task settings of a run.
type Run struct {
	TotalItems      int     `toml:"total_items"`
	Producers       int     `toml:"producers"`
	Consumers       int     `toml:"consumers"`
	ConsumerDelay   string  `toml:"consumer_delay"`
	Capacity        int     `toml:"capacity"`
	ProduceRate     float64 `toml:"produce_rate"`
	ProduceBurst    int     `toml:"produce_burst"`
	SpreadRemainder bool    `toml:"spread_remainder"`
	PinConsumers    bool    `toml:"pin_consumers"`
}

// Logging selects the log level and encoding.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full pqdemo configuration.
type Config struct {
	Run     Run     `toml:"run"`
	Logging Logging `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Run: Run{
			TotalItems:    pqueue.DefaultTotalItems,
			Producers:     pqueue.DefaultProducers,
			Consumers:     pqueue.DefaultConsumers,
			ConsumerDelay: pqueue.DefaultConsumerDelay.String(),
		},
		Logging: Logging{
			Level:  "warning",
			Format: "console",
		},
	}
}

// SampleConfig returns the commented sample configuration file.
func SampleConfig() []byte {
	return append([]byte(nil), sampleConfig...)
}

// Load parses and validates the configuration at path. An empty path or a
// missing file yields the defaults; exists reports whether a file was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	exists := false
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, false, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, false, fmt.Errorf("parse config: %w", err)
			}
			exists = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, exists, nil
}

// Delay parses Run.ConsumerDelay.
func (c *Config) Delay() (time.Duration, error) {
	s := strings.TrimSpace(c.Run.ConsumerDelay)
	if s == "" {
		return pqueue.DefaultConsumerDelay, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("run.consumer_delay: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("run.consumer_delay: %s is negative", s)
	}
	return d, nil
}

// Validate reports invalid values.
func (c *Config) Validate() error {
	if c.Run.TotalItems <= 0 {
		return fmt.Errorf("run.total_items: must be positive, got %d", c.Run.TotalItems)
	}
	if _, err := c.Delay(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	o, err := c.Options()
	if err != nil {
		return err
	}
	return o.Validate()
}

// Options maps the configuration onto pqueue.Options. Zero counts fall
// back to the pqueue defaults; a zero delay means consumers start at once.
// The logger is not part of the mapping: attach it to the run context
// with pqueue.WithLogger.
func (c *Config) Options() (pqueue.Options, error) {
	delay, err := c.Delay()
	if err != nil {
		return pqueue.Options{}, err
	}
	if delay == 0 {
		delay = pqueue.NoConsumerDelay
	}

	o := pqueue.Options{
		TotalItems:      c.Run.TotalItems,
		Producers:       c.Run.Producers,
		Consumers:       c.Run.Consumers,
		ConsumerDelay:   delay,
		Capacity:        c.Run.Capacity,
		ProduceRate:     c.Run.ProduceRate,
		ProduceBurst:    c.Run.ProduceBurst,
		SpreadRemainder: c.Run.SpreadRemainder,
		PinConsumers:    c.Run.PinConsumers,
	}
	o.FillDefaults()
	return o, nil
}
