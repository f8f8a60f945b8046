package httpd

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Default timeouts and limits applied when no option overrides them.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20 // 1MB
)

// Config holds transport settings with environment variable support.
type Config struct {
	ReadTimeout     time.Duration `env:"HTTPD_READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTPD_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTPD_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxHeaderBytes  int           `env:"HTTPD_MAX_HEADER_BYTES" envDefault:"1048576"`

	// MaxConcurrent caps simultaneously accepted connections per
	// listener. Zero leaves acceptance unbounded, which is the
	// dispatcher's baseline concurrency model.
	MaxConcurrent int `env:"HTTPD_MAX_CONCURRENT" envDefault:"0"`
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:     DefaultReadTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxHeaderBytes:  DefaultMaxHeaderBytes,
	}
}

// LoadConfig reads the transport configuration from environment
// variables, loading a .env file first when one is present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("httpd: parse config: %w", err)
	}
	return cfg, nil
}

// NewFromConfig creates a Transport from configuration. Additional
// options override config values.
func NewFromConfig(cfg Config, opts ...Option) *Transport {
	configOpts := []Option{
		WithReadTimeout(cfg.ReadTimeout),
		WithIdleTimeout(cfg.IdleTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
		WithMaxHeaderBytes(cfg.MaxHeaderBytes),
	}
	if cfg.MaxConcurrent > 0 {
		configOpts = append(configOpts, WithMaxConcurrent(cfg.MaxConcurrent))
	}
	return New(append(configOpts, opts...)...)
}
