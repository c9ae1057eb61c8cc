package station

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values.
const (
	DefaultPort         = "/dev/ttyS0"
	DefaultBaudRate     = 19200
	DefaultAddress      = 1
	DefaultTimeout      = 3 * time.Second
	DefaultPollInterval = time.Second
)

// Config holds the serial parameters of a station.
type Config struct {
	Port     string
	BaudRate int
	Address  int

	// Timeout bounds the wait for one reply line.
	Timeout time.Duration

	// PollInterval is the period of a Poller.
	PollInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Port:         DefaultPort,
		BaudRate:     DefaultBaudRate,
		Address:      DefaultAddress,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
	}
}

type fileConfig struct {
	Port         string `toml:"port"`
	BaudRate     int    `toml:"baud_rate"`
	Address      int    `toml:"address"`
	Timeout      string `toml:"timeout"`
	PollInterval string `toml:"poll_interval"`
}

// LoadConfig reads a TOML file on top of the default configuration. Keys that
// are not present keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load station config: %w", err)
	}

	if meta.IsDefined("port") {
		port := strings.TrimSpace(raw.Port)
		if port != "" {
			cfg.Port = port
		}
	}

	if meta.IsDefined("baud_rate") {
		if raw.BaudRate <= 0 {
			return Config{}, fmt.Errorf("invalid baud_rate %d", raw.BaudRate)
		}
		cfg.BaudRate = raw.BaudRate
	}

	if meta.IsDefined("address") {
		cfg.Address = raw.Address
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollInterval))
		if err != nil {
			return Config{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}

	return cfg, nil
}
