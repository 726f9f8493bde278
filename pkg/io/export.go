package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// Snapshot is a read-only view of a house.
type Snapshot struct {
	HouseID     string              `json:"house_id"`
	SystemID    string              `json:"system_id"`
	SectionType catalog.SectionType `json:"section_type"`
	DNAs        []string            `json:"dnas"`
	Width       float64             `json:"width"`
	Height      float64             `json:"height"`
	Depth       float64             `json:"depth"`
	Levels      int                 `json:"levels"`
	Columns     []ColumnSnapshot    `json:"columns"`

	// Preview is the section code of the uncommitted preview, if any.
	Preview string `json:"preview,omitempty"`

	Clip    []string         `json:"clip,omitempty"`
	Stretch []stretch.Status `json:"stretch"`
	Cut     cut.Stats        `json:"cut"`
}

// ColumnSnapshot is one column of the active layout.
type ColumnSnapshot struct {
	Role     string  `json:"role"`
	GridType string  `json:"grid_type"`
	Offset   float64 `json:"offset"`
	Depth    float64 `json:"depth"`
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSnapshot writes s to a JSON file at path.
func ExportSnapshot(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(s, f)
}

// WriteHouseType encodes h in the given format.
func WriteHouseType(h HouseType, w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(h); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(h); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
