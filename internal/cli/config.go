package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment configuration of the CLI. Command-line flags
// override every field.
type Config struct {
	// Catalog is the path of the catalog TOML file.
	Catalog string `env:"MODHOUSE_CATALOG"`

	// CacheDir overrides the XDG cache directory.
	CacheDir string `env:"MODHOUSE_CACHE_DIR"`

	// RedisAddr selects a shared Redis cache instead of the file cache.
	RedisAddr     string `env:"MODHOUSE_REDIS_ADDR"`
	RedisPassword string `env:"MODHOUSE_REDIS_PASSWORD"`
	RedisDB       int    `env:"MODHOUSE_REDIS_DB" envDefault:"0"`

	// GeometryURL selects a remote geometry service instead of synthetic
	// geometry.
	GeometryURL string `env:"MODHOUSE_GEOMETRY_URL"`

	Strict   bool    `env:"MODHOUSE_STRICT" envDefault:"false"`
	MaxDepth float64 `env:"MODHOUSE_MAX_DEPTH" envDefault:"24"`

	// Timeout bounds one build, alternatives or cut run. Zero disables it.
	Timeout time.Duration `env:"MODHOUSE_TIMEOUT" envDefault:"0s"`

	// Addr is the listen address of "modhouse serve".
	Addr            string        `env:"MODHOUSE_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"MODHOUSE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// loadConfigFrom reads the configuration from an explicit environment.
func loadConfigFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
