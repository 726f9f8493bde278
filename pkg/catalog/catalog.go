// Package catalog defines the module catalog consumed by the layout core.
//
// The catalog is an external collaborator: it resolves module DNA codes to
// immutable [ModuleSpec] records and knows which section types a given
// house type can be swapped to. The core only depends on the [Catalog]
// interface; [Index] is an in-memory implementation loaded from TOML files
// and used by the CLI, the HTTP adapter and the tests.
//
// # Structured DNA
//
// Every module carries a structured DNA that describes its role:
//
//   - SectionType: the width class ("W3", "W4", ...)
//   - PositionType: END for bookend modules, MID for everything in between
//   - LevelType: the storey class ("F" ground, "T" top, "R" roof, ...)
//   - GridType: the column class; consecutive MID modules of one grid type
//     form one column
//   - GridUnits: the module's length in grid units
package catalog

import (
	"cmp"
	"context"
	"slices"
	"strconv"
)

// PositionType is the structural position of a module within a level.
type PositionType string

// Position types.
const (
	PositionEnd PositionType = "END"
	PositionMid PositionType = "MID"
)

// SectionType is a discrete width class of a layout.
type SectionType struct {
	Code  string  `json:"code" toml:"code"`
	Width float64 `json:"width" toml:"width"`
}

// CompareSectionTypes orders section types by width, then by code.
func CompareSectionTypes(a, b SectionType) int {
	if c := cmp.Compare(a.Width, b.Width); c != 0 {
		return c
	}
	return cmp.Compare(a.Code, b.Code)
}

// CompareByCode orders section types by code (section rank), then by width.
func CompareByCode(a, b SectionType) int {
	if c := cmp.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	return cmp.Compare(a.Width, b.Width)
}

// SortByCode sorts section types by section rank.
func SortByCode(sts []SectionType) {
	slices.SortFunc(sts, CompareByCode)
}

// Dimensions are a module's extents in metres.
// Width runs along x, Height along y and Length along z.
type Dimensions struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Length float64 `json:"length" toml:"length"`
}

// StructuredDNA is the decoded structural role of a module.
type StructuredDNA struct {
	SectionType  string       `json:"section_type" toml:"section_type"`
	PositionType PositionType `json:"position_type" toml:"position_type"`
	LevelType    string       `json:"level_type" toml:"level_type"`
	GridType     string       `json:"grid_type" toml:"grid_type"`
	GridUnits    int          `json:"grid_units" toml:"grid_units"`
}

// Signature identifies a module's role independent of its section type.
// Two modules with equal signatures are width variants of each other.
func (s StructuredDNA) Signature() string {
	return string(s.PositionType) + "|" + s.LevelType + "|" + s.GridType + "|" + strconv.Itoa(s.GridUnits)
}

// ModuleSpec is an immutable catalog record.
type ModuleSpec struct {
	SystemID   string        `json:"system_id"`
	DNA        string        `json:"dna"`
	Dimensions Dimensions    `json:"dimensions"`
	Structured StructuredDNA `json:"structured"`
}

// Alternative is one section-type variant of a house type: the variant's
// DNA sequence, in the same order as the source sequence.
type Alternative struct {
	SectionType SectionType `json:"section_type"`
	DNAs        []string    `json:"dnas"`
}

// Catalog resolves DNA codes and section-type alternatives.
//
// Implementations return *errors.Error values with ErrCodeNotFound for
// unknown systems or DNAs; the layout core rewraps them as CATALOG_ERROR.
type Catalog interface {
	// ResolveModule resolves a DNA within a system.
	ResolveModule(ctx context.Context, systemID, dna string) (ModuleSpec, error)

	// ListAlternateSectionTypes returns every section type the given DNA
	// sequence can be swapped to, other than sectionType itself.
	ListAlternateSectionTypes(ctx context.Context, systemID string, dnas []string, sectionType SectionType) ([]Alternative, error)

	// ResolveVanillaModule returns the generic filler module used to extend
	// a layout along its length for one level.
	ResolveVanillaModule(ctx context.Context, systemID, sectionType, levelType string) (ModuleSpec, error)
}

// ElementIndex is implemented by catalogs that know element categories.
// Assemblers use it, when available, to tag element meshes.
type ElementIndex interface {
	ElementCategory(systemID, elementName string) (string, bool)
}

// SectionTypeIndex is implemented by catalogs that can resolve a section
// type code to its full record.
type SectionTypeIndex interface {
	SectionType(systemID, code string) (SectionType, bool)
}
