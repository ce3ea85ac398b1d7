// Package config loads service configuration from the environment.
package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultSessionSecret is the fallback signing key used when
// PORTAL_SESSION_SECRET is not set. Running with it is insecure;
// cmd/portal logs a warning when it is in use.
const DefaultSessionSecret = "fallback-secret-key"

// Config holds all settings for the portal. Every field is sourced from
// the environment; only DATABASE_URL and the MinIO settings are required.
type Config struct {
	Env  string `env:"PORTAL_ENV" env-default:"dev"`
	Addr string `env:"PORTAL_ADDR" env-default:":8080"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`

	S3Endpoint  string `env:"PORTAL_S3_ENDPOINT" env-required:"true"`
	S3AccessKey string `env:"PORTAL_S3_ACCESS_KEY" env-required:"true"`
	S3SecretKey string `env:"PORTAL_S3_SECRET_KEY" env-required:"true"`
	Bucket      string `env:"PORTAL_BUCKET" env-required:"true"`

	SessionSecret string `env:"PORTAL_SESSION_SECRET" env-default:"fallback-secret-key"`

	// Max request body for uploads. Default 20 MiB.
	MaxUploadBytes int64 `env:"PORTAL_MAX_UPLOAD_BYTES" env-default:"20971520"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
