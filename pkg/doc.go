// Package pkg provides the core libraries of modhouse, a modular house
// configurator.
//
// # Overview
//
// A house type names a building system and a sequence of module DNA codes.
// modhouse assembles those modules into a 3D layout of columns and levels,
// then lets users stretch it: wider by swapping the whole layout to another
// section type, longer by pulling the bookend columns apart over hidden
// filler ("vanilla") columns. Clip planes cut the geometry open.
//
// # Architecture
//
// The typical data flow:
//
//	House type (system + DNAs)
//	         ↓
//	    [catalog] (module specs, section types, vanilla modules)
//	         ↓
//	    [layout] (matrix of columns × levels, assembled over [geometry])
//	         ↓
//	    [house] (active layout + [stretch] engines + [cut] manager)
//	         ↓
//	    snapshot → JSON / DOT / SVG / PNG / PDF
//
// # Main Packages
//
// ## Domain
//
// [catalog] - Module specs indexed by system and DNA. Loaded from TOML.
//
// [layout] - Builds the layout matrix from DNAs and assembles it into scene
// groups, one module per cell, fetching geometry in parallel.
//
// [alts] - Resolves every section-type alternative of an active layout.
//
// [stretch] - The X engine (section swaps) and the Z engine (bookend
// translation). Both follow start → progress → end gestures.
//
// [cut] - Clipped brush twins of layout geometry, memoized per cut key.
//
// [house] - The aggregate tying one active layout to both engines.
//
// [scene] - Opaque scene objects: positions, bounds, visibility.
//
// ## Infrastructure
//
// [geometry] - Geometry providers: synthetic, remote HTTP, retrying and
// cached decorators.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [pipeline] - Scripted build → stretch → render runs shared by CLI tests
// and batch use.
//
// [api] - The HTTP configurator API.
//
// [render] - Matrix diagrams via Graphviz and SVG conversion.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors shared by every package.
//
// pkg/io - House-type files and house snapshots (JSON and TOML).
//
// # Testing
//
// Run tests:
//
//	go test ./...                 # All tests
//	go test ./pkg/stretch/...     # Specific package
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/catalog
// [layout]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/layout
// [alts]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/alts
// [stretch]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/stretch
// [cut]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/cut
// [house]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/house
// [scene]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/scene
// [geometry]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/geometry
// [cache]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/api
// [render]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/modhouse/pkg/errors
package pkg
