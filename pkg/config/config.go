// Package config loads the dashboard configuration from YAML with
// environment overrides for the endpoints.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tradedesk/godesk/pkg/logger"
)

// Config is the full client configuration.
type Config struct {
	// APIBaseURL is the trading backend, e.g. "http://localhost:8000".
	APIBaseURL string `yaml:"api_base_url"`
	// WSURL is the push channel endpoint, e.g. "ws://localhost:8000/ws/".
	WSURL string `yaml:"ws_url"`

	// StorePath is the local credential/display-cache database directory.
	StorePath string `yaml:"store_path"`

	// EventLogCapacity bounds the live-update display log.
	EventLogCapacity int `yaml:"event_log_capacity"`

	// RequestTimeout applies to each HTTP call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// StatusListenAddr, when set, serves the read-only local status API
	// (e.g. "127.0.0.1:7301").
	StatusListenAddr string `yaml:"status_listen_addr"`

	Log logger.Config `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIBaseURL:       "http://localhost:8000",
		WSURL:            "ws://localhost:8000/ws/",
		StorePath:        ".godesk/store",
		EventLogCapacity: 50,
		RequestTimeout:   30 * time.Second,
		Log: logger.Config{
			Level:      "info",
			MaxSize:    20,
			MaxBackups: 3,
			MaxAge:     14,
		},
	}
}

// Load reads path (optional) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, errors.Wrapf(err, "read config %s", path)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if v := os.Getenv("GODESK_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("GODESK_WS_URL"); v != "" {
		cfg.WSURL = v
	}
	if v := os.Getenv("GODESK_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("GODESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api_base_url is required")
	}
	if c.WSURL == "" {
		return errors.New("ws_url is required")
	}
	if c.EventLogCapacity <= 0 {
		return errors.New("event_log_capacity must be positive")
	}
	return nil
}
