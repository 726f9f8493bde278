// Package pipeline provides the scripted build → stretch → render pipeline
// for modhouse.
//
// It is the one place that wires the configurator core together for
// non-interactive callers: the CLI and the HTTP adapter use it to build a
// house from a DNA sequence, apply clip settings, replay a gesture plan and
// render the result. By centralizing this logic, every entry point gets the
// same caching and validation behavior.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: resolve the DNA sequence into a layout matrix and assemble it
//  2. Stretch: apply clip planes and replay the gesture plan
//  3. Render: emit the final snapshot and layout diagrams (JSON, DOT, SVG,
//     PNG, PDF)
//
// Stages 1 and 2 are cached together as a snapshot keyed by the DNA
// sequence, the clip planes, the gesture plan and the catalog fingerprint.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    HouseType: ht,
//	    Catalog:   cat,
//	    Gestures:  []string{"x:end:1.5", "z:end:2.4"},
//	    Formats:   []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/geometry"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth bounds how deep the Z engine pre-materializes vanilla
	// columns, in metres.
	DefaultMaxDepth = 24.0

	// DefaultFetchAttempts is how often the default geometry provider
	// retries transient failures.
	DefaultFetchAttempts = 3

	// DefaultFetchDelay is the first retry delay of the default provider.
	DefaultFetchDelay = 200 * time.Millisecond

	// DefaultPNGScale is the rasterization scale of PNG diagrams.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Build options
	HouseType mhio.HouseType `json:"house_type"`
	MaxDepth  float64        `json:"max_depth,omitempty"`
	Strict    bool           `json:"strict,omitempty"`
	Refresh   bool           `json:"refresh,omitempty"`

	// Stretch options
	Clip     []string `json:"clip,omitempty"`
	Gestures []string `json:"gestures,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Catalog catalog.Catalog `json:"-"`
	// CatalogHash fingerprints Catalog for snapshot cache keys.
	CatalogHash string `json:"-"`
	// Provider overrides the default synthetic geometry provider.
	Provider geometry.Provider `json:"-"`
	Logger   *log.Logger       `json:"-"`

	clip     cut.Settings
	gestures []Gesture

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the house after the gesture plan.
	Snapshot *mhio.Snapshot

	// Matrix is the layout matrix of the final active layout.
	Matrix *layout.Matrix

	// Swaps lists every section swap the X engine emitted, in order.
	Swaps []stretch.SwapEvent

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Modules    int
	Columns    int
	Levels     int
	Swaps      int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool // Whether build and stretch came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Catalog == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "catalog is required")
	}
	if err := o.HouseType.Validate(); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_depth must not be negative")
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	clip, err := cut.ParseSettings(o.Clip)
	if err != nil {
		return err
	}
	o.clip = clip
	gestures, err := ParseGestures(o.Gestures)
	if err != nil {
		return err
	}
	o.gestures = gestures

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SnapshotKeyOpts returns cache key options for the snapshot stage. Plans
// are normalized so equivalent spellings share a key.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	gestures := make([]string, len(o.gestures))
	for i, g := range o.gestures {
		gestures[i] = g.String()
	}
	return cache.SnapshotKeyOpts{
		Planes:   o.clip.Strings(),
		Gestures: gestures,
		MaxDepth: o.MaxDepth,
		Catalog:  o.CatalogHash,
	}
}

// ClipSettings returns the parsed clip planes.
func (o *Options) ClipSettings() cut.Settings { return o.clip }

// Plan returns the parsed gesture plan.
func (o *Options) Plan() []Gesture { return o.gestures }

func (o *Options) String() string {
	return fmt.Sprintf("%s/%s (%d modules, %d gestures)", o.HouseType.SystemID, o.HouseType.Name, len(o.HouseType.DNAs), len(o.Gestures))
}
