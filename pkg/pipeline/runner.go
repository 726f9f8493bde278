package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/geometry"
	"github.com/matzehuels/modhouse/pkg/house"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Run is the cached outcome of the build and stretch stages.
type Run struct {
	Snapshot *mhio.Snapshot      `json:"snapshot"`
	Swaps    []stretch.SwapEvent `json:"swaps,omitempty"`
}

// Execute runs the complete build → stretch → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Build and stretch
	buildStart := time.Now()
	run, hit, err := r.SnapshotWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Snapshot = run.Snapshot
	result.Swaps = run.Swaps
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Modules = len(run.Snapshot.DNAs)
	result.Stats.Columns = len(run.Snapshot.Columns)
	result.Stats.Levels = run.Snapshot.Levels
	result.Stats.Swaps = len(run.Swaps)
	result.CacheInfo.SnapshotHit = hit

	r.Logger.Info("built house",
		"section", run.Snapshot.SectionType.Code,
		"columns", result.Stats.Columns,
		"swaps", result.Stats.Swaps,
		"cached", hit,
		"duration", result.Stats.BuildTime)

	// The final active layout may differ from the input after X swaps.
	m, err := layout.BuildMatrix(ctx, opts.Catalog, run.Snapshot.SystemID, run.Snapshot.DNAs)
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}
	result.Matrix = m

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, run.Snapshot, m, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SnapshotWithCacheInfo builds and stretches a house with caching and
// returns cache hit info.
func (r *Runner) SnapshotWithCacheInfo(ctx context.Context, opts Options) (*Run, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.SnapshotKey(opts.HouseType.SystemID, opts.HouseType.DNAs, opts.SnapshotKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var run Run
			if err := json.Unmarshal(data, &run); err == nil && run.Snapshot != nil {
				return &run, true, nil // Cache hit
			}
			r.Logger.Debug("discarding corrupt snapshot cache entry", "key", cacheKey)
		}
	}

	run, err := r.Simulate(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(run); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot); err != nil {
			r.Logger.Warn("snapshot cache write failed", "err", err)
		}
	}

	return run, false, nil // Cache miss
}

// Snapshot is a convenience wrapper that calls SnapshotWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Snapshot(ctx context.Context, opts Options) (*Run, error) {
	run, _, err := r.SnapshotWithCacheInfo(ctx, opts)
	return run, err
}

// Simulate builds a house, applies the clip planes and replays the gesture
// plan without consulting the snapshot cache. The house is closed before
// Simulate returns.
func (r *Runner) Simulate(ctx context.Context, opts Options) (*Run, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	run := &Run{}
	h, err := house.New(ctx, house.Config{
		Catalog:  opts.Catalog,
		Provider: r.Provider(opts),
		Cuts:     cut.NewManager(cut.WithLogger(opts.Logger)),
		Strict:   opts.Strict,
		MaxDepth: opts.MaxDepth,
		OnSwap:   func(e stretch.SwapEvent) { run.Swaps = append(run.Swaps, e) },
		Logger:   opts.Logger,
	}, opts.HouseType)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if err := h.SetClip(opts.ClipSettings()); err != nil {
		return nil, err
	}
	for _, g := range opts.Plan() {
		if err := g.Apply(ctx, h); err != nil {
			return nil, err
		}
		opts.Logger.Debug("applied gesture", "gesture", g)
	}

	run.Snapshot = h.Snapshot()
	return run, nil
}

// Provider returns the geometry provider for opts: the override, or
// synthetic geometry behind retries and the runner's cache.
func (r *Runner) Provider(opts Options) geometry.Provider {
	if opts.Provider != nil {
		return opts.Provider
	}
	base := geometry.Retrying(geometry.Synthetic{}, DefaultFetchAttempts, DefaultFetchDelay)
	return geometry.Cached(base, r.Cache, r.Keyer, 0, r.Logger)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
