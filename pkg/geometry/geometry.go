// Package geometry defines the module geometry provider consumed by the
// layout assembler.
//
// A [Provider] turns a module reference into [Data]: the named element
// meshes of the module, each with local bounds. Fetching is asynchronous
// from the core's point of view (the assembler calls providers from many
// goroutines) and retry policy is the caller's responsibility: wrap a
// provider with [Retrying] to retry transient failures, and with [Cached]
// to reuse payloads across runs.
package geometry

import (
	"context"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Ref identifies one module's geometry.
type Ref struct {
	SystemID   string             `json:"system_id"`
	DNA        string             `json:"dna"`
	Dimensions catalog.Dimensions `json:"dimensions"`
	LevelType  string             `json:"level_type"`
}

// RefFor builds the reference for a catalog module.
func RefFor(m catalog.ModuleSpec) Ref {
	return Ref{
		SystemID:   m.SystemID,
		DNA:        m.DNA,
		Dimensions: m.Dimensions,
		LevelType:  m.Structured.LevelType,
	}
}

// Element is one named mesh of a module, in module-local coordinates.
type Element struct {
	Name   string     `json:"name"`
	Bounds scene.Box3 `json:"bounds"`
}

// Data is the geometry of one module.
type Data struct {
	Ref      Ref       `json:"ref"`
	Elements []Element `json:"elements"`
}

// Provider fetches module geometry. Implementations must be safe for
// concurrent use.
type Provider interface {
	FetchModuleGeometry(ctx context.Context, ref Ref) (*Data, error)
}

// Func adapts a function to [Provider].
type Func func(ctx context.Context, ref Ref) (*Data, error)

// FetchModuleGeometry calls f.
func (f Func) FetchModuleGeometry(ctx context.Context, ref Ref) (*Data, error) {
	return f(ctx, ref)
}
