// Package cache provides byte-level caching for geometry payloads and
// pipeline snapshots.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance API deployments
//
// Keys are produced by a [Keyer] so that every backend sees the same layout
// of namespaces. [ScopedKeyer] prefixes keys for per-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry type.
const (
	// TTLGeometry is how long fetched module geometry stays valid.
	// Catalog geometry changes rarely, so this is long.
	TTLGeometry = 7 * 24 * time.Hour

	// TTLSnapshot is how long a pipeline snapshot stays valid.
	TTLSnapshot = 24 * time.Hour
)

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the different entry types.
type Keyer interface {
	// GeometryKey generates a key for one module's geometry payload.
	GeometryKey(systemID, dna string) string

	// SnapshotKey generates a key for a pipeline snapshot.
	SnapshotKey(systemID string, dnas []string, opts SnapshotKeyOpts) string
}

// SnapshotKeyOpts holds every option that influences a pipeline snapshot.
type SnapshotKeyOpts struct {
	Planes   []string `json:"planes,omitempty"`
	Gestures []string `json:"gestures,omitempty"`
	MaxDepth float64  `json:"max_depth,omitempty"`
	// Catalog fingerprints the catalog the snapshot was built against.
	Catalog string `json:"catalog,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GeometryKey returns "geometry:<system>:<dna>".
// DNAs are validated identifiers, so no hashing is needed.
func (DefaultKeyer) GeometryKey(systemID, dna string) string {
	return "geometry:" + systemID + ":" + dna
}

// SnapshotKey hashes the DNA sequence together with the options.
func (DefaultKeyer) SnapshotKey(systemID string, dnas []string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot:"+systemID, dnas, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = DefaultKeyer{}
