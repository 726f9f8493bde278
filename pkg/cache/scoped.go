package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The HTTP adapter uses one scope per catalog revision so that a catalog
// reload never serves geometry cached against the previous revision.
//
// Example usage:
//
//	revKeyer := NewScopedKeyer(NewDefaultKeyer(), "rev:2024-06:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GeometryKey generates a prefixed key for geometry caching.
func (k *ScopedKeyer) GeometryKey(systemID, dna string) string {
	return k.prefix + k.inner.GeometryKey(systemID, dna)
}

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(systemID string, dnas []string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(systemID, dnas, opts)
}
