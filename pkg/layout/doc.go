// Package layout turns house-type DNA sequences into assembled 3D layouts.
//
// Layout construction happens in two steps:
//
//  1. [BuildMatrix] resolves every DNA against a [catalog.Catalog] and
//     arranges the modules into a rectangular [Matrix] of columns by
//     levels. It is pure and deterministic.
//  2. [Assembler.Assemble] fetches every module's geometry through a
//     [geometry.Provider], concurrently per column and per module, and
//     composes the result into a [Group]: a three-tier scene tree of
//     columns, modules and tagged element meshes.
//
// # Rows and Columns
//
// A DNA sequence is read level by level. Each level is a row that opens on
// an END module and closes on the next END module. Within a row the first
// END is the start column, the last END is the end column, and MID modules
// are grouped into columns by consecutive runs of the same grid type. All
// rows must produce the same column sequence.
//
// # Coordinates
//
// Modules are centred on x. Levels stack along y, columns and the modules
// inside a column are laid out along z.
package layout
