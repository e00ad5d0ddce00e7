package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("config: invalid value")

// Config is the inklift runtime configuration, loaded from TOML with
// sensible defaults for a stock device.
type Config struct {
	// Device is the device node, or a dump file for offline work.
	Device string `toml:"device"`
	// Output receives dump and SVG files.
	Output string `toml:"output"`
	// ReplyTimeoutMS bounds each reply read on the device handle.
	ReplyTimeoutMS int `toml:"reply_timeout_ms"`

	Page PageConfig `toml:"page"`
}

// PageConfig controls SVG page geometry.
type PageConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Scale  float64 `toml:"scale"`
}

func Default() Config {
	return Config{
		Device:         "/dev/irisnotes",
		Output:         "output",
		ReplyTimeoutMS: 2000,
		Page: PageConfig{
			Width:  744.09,
			Height: 1052.36,
			Scale:  3.543307 / 50,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("%w: device must not be empty", ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output must not be empty", ErrInvalidConfig)
	}
	if c.ReplyTimeoutMS <= 0 {
		return fmt.Errorf("%w: reply_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.Page.Width <= 0 || c.Page.Height <= 0 {
		return fmt.Errorf("%w: page dimensions must be positive", ErrInvalidConfig)
	}
	if c.Page.Scale <= 0 {
		return fmt.Errorf("%w: page scale must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) ReplyTimeout() time.Duration {
	return time.Duration(c.ReplyTimeoutMS) * time.Millisecond
}
