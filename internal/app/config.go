package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// DataDir may hold yearly CSV exports loaded into the store at boot.
	DataDir string `envconfig:"DATA_DIR" default:""`

	// MaxUploadBytes caps the size of multipart data uploads.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`

	// RedisAddr is optional; without it views are computed per request
	// and the warmup worker is idle.
	RedisAddr string        `envconfig:"REDIS_ADDR" default:""`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// PGDSN is optional; without it upload audit records are not kept.
	PGDSN string `envconfig:"PG_DSN" default:""`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
