package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "QUESTBOARD_"

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"questboard.db"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	APIBaseURL    string        `env:"API_BASE_URL,required,notEmpty"`
	APIToken      string        `env:"API_TOKEN"`
	APITimeout    time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	ParentPINHash string        `env:"PARENT_PIN_HASH"`
	// RateLimit is the sustained requests per minute per client IP on
	// mutating routes; RateBurst is how many may arrive at once.
	RateLimit int `env:"RATE_LIMIT" envDefault:"60"`
	RateBurst int `env:"RATE_BURST" envDefault:"10"`
}

// Load reads QUESTBOARD_* variables from the process environment.
func Load() (Config, error) {
	return load(envMap(os.Environ()))
}

func load(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: envPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%sAPI_BASE_URL must be an http(s) URL, got %q", envPrefix, c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return errors.New(envPrefix + "API_TIMEOUT must be positive")
	}
	if c.PollInterval < time.Second {
		return errors.New(envPrefix + "POLL_INTERVAL must be at least 1s")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New(envPrefix + "RATE_LIMIT and RATE_BURST must be positive")
	}
	return nil
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
