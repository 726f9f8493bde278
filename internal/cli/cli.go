package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/geometry"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "modhouse"

	// redisPrefix namespaces shared cache keys.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level, cfg Config) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner and Collaborator Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newCache opens the shared Redis cache when configured, else the file
// cache. An unusable cache directory disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
			Prefix:   redisPrefix,
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// provider returns the geometry provider: the remote service when
// configured, synthetic geometry otherwise, behind retries and the cache.
func (c *CLI) provider(ch cache.Cache) geometry.Provider {
	var base geometry.Provider = geometry.Synthetic{}
	if c.Config.GeometryURL != "" {
		base = geometry.NewRemote(c.Config.GeometryURL)
	}
	base = geometry.Retrying(base, pipeline.DefaultFetchAttempts, pipeline.DefaultFetchDelay)
	return geometry.Cached(base, ch, nil, 0, c.Logger)
}

// loadCatalog reads the configured catalog file and fingerprints it.
func (c *CLI) loadCatalog() (*catalog.Index, string, error) {
	path := c.Config.Catalog
	if path == "" {
		return nil, "", fmt.Errorf("no catalog: pass --catalog or set MODHOUSE_CATALOG")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}
	idx, err := catalog.Load(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("load catalog %s: %w", path, err)
	}
	return idx, cache.Hash(data), nil
}

// deadline bounds ctx by the configured timeout.
func (c *CLI) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Config.Timeout)
}

// loadHouseType reads a house-type file; "-" reads JSON from stdin.
func loadHouseType(path string) (mhio.HouseType, error) {
	if path == "-" {
		return mhio.ReadHouseType(os.Stdin, mhio.FormatJSON)
	}
	return mhio.ImportHouseType(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG standard
// (~/.cache/modhouse/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.CacheDir != "" {
		return c.Config.CacheDir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputPath names the artifact file for format next to base.
func outputPath(base, format string, multi bool) string {
	if base == "" {
		return ""
	}
	if !multi {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
}
