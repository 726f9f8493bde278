package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/modhouse/pkg/errors"
)

// Format is a house-type file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// HouseType is an ordered DNA sequence within one building system.
type HouseType struct {
	SystemID string   `json:"system" toml:"system" yaml:"system"`
	Name     string   `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	DNAs     []string `json:"dnas" toml:"dnas" yaml:"dnas"`
}

// Validate checks the system identifier and the DNA sequence.
func (h HouseType) Validate() error {
	if err := errors.ValidateSystemID(h.SystemID); err != nil {
		return err
	}
	return errors.ValidateDNASequence(h.DNAs)
}

// FormatFromPath picks the format from a file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ReadHouseType decodes and validates a house type from r.
// ReadHouseType does not close r.
func ReadHouseType(r io.Reader, format Format) (HouseType, error) {
	var h HouseType
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&h); err != nil {
			return HouseType{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode toml house type")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&h); err != nil {
			return HouseType{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml house type")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&h); err != nil {
			return HouseType{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json house type")
		}
	default:
		return HouseType{}, errors.New(errors.ErrCodeUnsupported, "unsupported house type format %q", format)
	}
	for i := range h.DNAs {
		h.DNAs[i] = strings.TrimSpace(h.DNAs[i])
	}
	if err := h.Validate(); err != nil {
		return HouseType{}, err
	}
	return h, nil
}

// ImportHouseType reads a house-type file at path.
func ImportHouseType(path string) (HouseType, error) {
	f, err := os.Open(path)
	if err != nil {
		return HouseType{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h, err := ReadHouseType(f, FormatFromPath(path))
	if err != nil {
		return HouseType{}, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// ReadSnapshot decodes a snapshot written by [WriteSnapshot].
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
