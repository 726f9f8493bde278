package cache

import (
	"context"
	"time"
)

// NullCache stands in when caching is off: --no-cache, or a cache directory
// the CLI cannot create. Every lookup misses, so the pipeline rebuilds
// snapshots and the geometry provider is always asked.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that keeps nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
