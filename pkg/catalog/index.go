package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/modhouse/pkg/errors"
)

// File is the TOML layout of a catalog file.
//
//	[[system]]
//	id = "skylark"
//
//	  [[system.section_type]]
//	  code = "W4"
//	  width = 4.0
//
//	  [[system.element]]
//	  name = "floor"
//	  category = "Structure"
//
//	  [[system.module]]
//	  dna = "W4-END-F-A1"
//	  section_type = "W4"
//	  position_type = "END"
//	  level_type = "F"
//	  grid_type = "A"
//	  grid_units = 1
//	  width = 4.0
//	  height = 2.8
//	  length = 1.2
type File struct {
	Systems []SystemDef `toml:"system"`
}

// SystemDef describes one building system.
type SystemDef struct {
	ID           string        `toml:"id"`
	Name         string        `toml:"name"`
	SectionTypes []SectionType `toml:"section_type"`
	Elements     []ElementDef  `toml:"element"`
	Modules      []ModuleDef   `toml:"module"`
}

// ElementDef maps an element (mesh) name to its category.
type ElementDef struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

// ModuleDef is the flat TOML form of a [ModuleSpec].
type ModuleDef struct {
	DNA          string       `toml:"dna"`
	SectionType  string       `toml:"section_type"`
	PositionType PositionType `toml:"position_type"`
	LevelType    string       `toml:"level_type"`
	GridType     string       `toml:"grid_type"`
	GridUnits    int          `toml:"grid_units"`
	Width        float64      `toml:"width"`
	Height       float64      `toml:"height"`
	Length       float64      `toml:"length"`

	// Vanilla marks the filler module for its section type and level type.
	Vanilla bool `toml:"vanilla"`
}

type system struct {
	id           string
	name         string
	sectionTypes map[string]SectionType
	modules      map[string]ModuleSpec
	dnaOrder     []string
	bySignature  map[string]map[string]string // section type -> signature -> dna
	vanilla      map[string]string            // section type|level type -> dna
	elements     map[string]string
}

// Index is an in-memory [Catalog]. It is safe for concurrent use; the
// assembler resolves modules from many goroutines at once.
type Index struct {
	mu      sync.RWMutex
	systems map[string]*system
	order   []string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{systems: make(map[string]*system)}
}

// LoadFile reads a TOML catalog file into a new index.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open catalog %s", path)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a TOML catalog from r into a new index.
func Load(r io.Reader) (*Index, error) {
	var file File
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode catalog")
	}
	idx := NewIndex()
	for _, def := range file.Systems {
		if err := idx.AddSystem(def); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// AddSystem validates def and registers it. Re-adding a system replaces it.
func (x *Index) AddSystem(def SystemDef) error {
	if err := errors.ValidateSystemID(def.ID); err != nil {
		return err
	}
	s := &system{
		id:           def.ID,
		name:         def.Name,
		sectionTypes: make(map[string]SectionType, len(def.SectionTypes)),
		modules:      make(map[string]ModuleSpec, len(def.Modules)),
		bySignature:  make(map[string]map[string]string),
		vanilla:      make(map[string]string),
		elements:     make(map[string]string, len(def.Elements)),
	}
	for _, st := range def.SectionTypes {
		if st.Code == "" || st.Width <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "system %s: invalid section type %+v", def.ID, st)
		}
		s.sectionTypes[st.Code] = st
	}
	for _, el := range def.Elements {
		s.elements[el.Name] = el.Category
	}
	for _, m := range def.Modules {
		if err := errors.ValidateDNA(m.DNA); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "system %s", def.ID)
		}
		if _, ok := s.sectionTypes[m.SectionType]; !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "system %s: module %s has unknown section type %q", def.ID, m.DNA, m.SectionType)
		}
		if m.PositionType != PositionEnd && m.PositionType != PositionMid {
			return errors.New(errors.ErrCodeInvalidConfig, "system %s: module %s has invalid position type %q", def.ID, m.DNA, m.PositionType)
		}
		if _, dup := s.modules[m.DNA]; dup {
			return errors.New(errors.ErrCodeInvalidConfig, "system %s: duplicate module %s", def.ID, m.DNA)
		}
		spec := ModuleSpec{
			SystemID:   def.ID,
			DNA:        m.DNA,
			Dimensions: Dimensions{Width: m.Width, Height: m.Height, Length: m.Length},
			Structured: StructuredDNA{
				SectionType:  m.SectionType,
				PositionType: m.PositionType,
				LevelType:    m.LevelType,
				GridType:     m.GridType,
				GridUnits:    m.GridUnits,
			},
		}
		s.modules[m.DNA] = spec
		s.dnaOrder = append(s.dnaOrder, m.DNA)

		sig := spec.Structured.Signature()
		if s.bySignature[m.SectionType] == nil {
			s.bySignature[m.SectionType] = make(map[string]string)
		}
		if _, taken := s.bySignature[m.SectionType][sig]; !taken {
			s.bySignature[m.SectionType][sig] = m.DNA
		}
		if m.Vanilla {
			s.vanilla[m.SectionType+"|"+m.LevelType] = m.DNA
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, exists := x.systems[def.ID]; !exists {
		x.order = append(x.order, def.ID)
	}
	x.systems[def.ID] = s
	return nil
}

func (x *Index) system(systemID string) (*system, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	s, ok := x.systems[systemID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown system %q", systemID)
	}
	return s, nil
}

// ResolveModule implements [Catalog].
func (x *Index) ResolveModule(ctx context.Context, systemID, dna string) (ModuleSpec, error) {
	s, err := x.system(systemID)
	if err != nil {
		return ModuleSpec{}, err
	}
	m, ok := s.modules[dna]
	if !ok {
		return ModuleSpec{}, errors.New(errors.ErrCodeNotFound, "unknown dna %q in system %s", dna, systemID)
	}
	return m, nil
}

// ListAlternateSectionTypes implements [Catalog]. A section type is
// compatible when every module of the sequence has a variant with the same
// structural signature in that section type; incompatible section types are
// left out. The result is sorted by section code.
func (x *Index) ListAlternateSectionTypes(ctx context.Context, systemID string, dnas []string, sectionType SectionType) ([]Alternative, error) {
	s, err := x.system(systemID)
	if err != nil {
		return nil, err
	}

	sigs := make([]string, len(dnas))
	for i, d := range dnas {
		m, ok := s.modules[d]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown dna %q in system %s", d, systemID)
		}
		sigs[i] = m.Structured.Signature()
	}

	codes := make([]SectionType, 0, len(s.sectionTypes))
	for _, st := range s.sectionTypes {
		if st.Code != sectionType.Code {
			codes = append(codes, st)
		}
	}
	SortByCode(codes)

	var out []Alternative
	for _, st := range codes {
		variants := s.bySignature[st.Code]
		alt := Alternative{SectionType: st, DNAs: make([]string, len(sigs))}
		compatible := true
		for i, sig := range sigs {
			d, ok := variants[sig]
			if !ok {
				compatible = false
				break
			}
			alt.DNAs[i] = d
		}
		if compatible {
			out = append(out, alt)
		}
	}
	return out, nil
}

// ResolveVanillaModule implements [Catalog].
func (x *Index) ResolveVanillaModule(ctx context.Context, systemID, sectionType, levelType string) (ModuleSpec, error) {
	s, err := x.system(systemID)
	if err != nil {
		return ModuleSpec{}, err
	}
	d, ok := s.vanilla[sectionType+"|"+levelType]
	if !ok {
		return ModuleSpec{}, errors.New(errors.ErrCodeNotFound, "no vanilla module for %s/%s in system %s", sectionType, levelType, systemID)
	}
	return s.modules[d], nil
}

// ElementCategory implements [ElementIndex].
func (x *Index) ElementCategory(systemID, elementName string) (string, bool) {
	s, err := x.system(systemID)
	if err != nil {
		return "", false
	}
	c, ok := s.elements[elementName]
	return c, ok
}

// SectionType implements [SectionTypeIndex].
func (x *Index) SectionType(systemID, code string) (SectionType, bool) {
	s, err := x.system(systemID)
	if err != nil {
		return SectionType{}, false
	}
	st, ok := s.sectionTypes[code]
	return st, ok
}

// SystemSummary describes a registered system for listings.
type SystemSummary struct {
	ID           string
	Name         string
	SectionTypes []SectionType
	Modules      int
}

// Systems lists registered systems in registration order.
func (x *Index) Systems() []SystemSummary {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]SystemSummary, 0, len(x.order))
	for _, id := range x.order {
		s := x.systems[id]
		sts := make([]SectionType, 0, len(s.sectionTypes))
		for _, st := range s.sectionTypes {
			sts = append(sts, st)
		}
		slices.SortFunc(sts, CompareSectionTypes)
		out = append(out, SystemSummary{ID: s.id, Name: s.name, SectionTypes: sts, Modules: len(s.modules)})
	}
	return out
}

// Modules lists a system's modules in file order.
func (x *Index) Modules(systemID string) ([]ModuleSpec, error) {
	s, err := x.system(systemID)
	if err != nil {
		return nil, err
	}
	out := make([]ModuleSpec, len(s.dnaOrder))
	for i, d := range s.dnaOrder {
		out[i] = s.modules[d]
	}
	return out, nil
}

func (x *Index) String() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return fmt.Sprintf("catalog.Index(%d systems)", len(x.systems))
}

var (
	_ Catalog          = (*Index)(nil)
	_ ElementIndex     = (*Index)(nil)
	_ SectionTypeIndex = (*Index)(nil)
)
