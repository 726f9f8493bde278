// Package cut maintains clipped brush twins of layout geometry.
//
// A [Manager] builds, for every element mesh of a [Member], a brush: an
// axis-aligned box intersected with the keep-halfspace of every active clip
// plane. Each plane intersection counts as one boolean operation. Results
// are memoized per member identity under a content fingerprint, the cut
// key, derived from the DNAs of every registered member and the active
// planes. While the key is unchanged, repeated passes perform no boolean
// operations at all; when it changes every cached result is dropped.
//
// [Manager.ShowAppropriateBrushes] toggles between the original meshes and
// the clipped brushes of a member. The two sets are never visible at the
// same time.
package cut

import (
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/observability"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// Member is a piece of layout that can be clipped: a layout group or a
// single column.
type Member interface {
	ID() string
	DNAs() []string
	Elements() []*scene.Object
	Object() *scene.Object
}

// Stats counts the manager's work.
type Stats struct {
	// Ops is the number of boolean operations performed.
	Ops int `json:"ops"`
	// Hits is the number of passes served from the memo.
	Hits int `json:"hits"`
	// Recomputes is the number of passes that built brushes.
	Recomputes int `json:"recomputes"`
	// Invalidations is the number of cut key changes that dropped results.
	Invalidations int `json:"invalidations"`
}

type clippedSet struct {
	originals []*scene.Object
	brushes   []*scene.Object
}

// Manager memoizes clipped brushes. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	settings Settings
	members  map[string]Member
	key      string
	clipped  map[string]*clippedSet
	stats    Stats
	logger   *log.Logger
}

// Option configures a [Manager].
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager with clipping off.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		members: make(map[string]Member),
		clipped: make(map[string]*clippedSet),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetSettings replaces the active clip planes. Cached results are
// invalidated on the next pass through the changed cut key.
func (m *Manager) SetSettings(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = Settings{Planes: slices.Clone(s.Planes)}
}

// Settings returns the active clip planes.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Settings{Planes: slices.Clone(m.settings.Planes)}
}

// Register adds a member to the session.
func (m *Manager) Register(mem Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[mem.ID()] = mem
}

// Forget removes a member from the session and drops its clipped brushes.
func (m *Manager) Forget(mem Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, mem.ID())
	if set, ok := m.clipped[mem.ID()]; ok {
		set.drop()
		delete(m.clipped, mem.ID())
	}
}

// Key returns the cut key of the last pass.
func (m *Manager) Key() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key
}

// Stats returns a snapshot of the work counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// currentKey fingerprints the registered members' DNAs and the planes.
func (m *Manager) currentKey() string {
	sigs := make([]string, 0, len(m.members))
	for _, mem := range m.members {
		sigs = append(sigs, strings.Join(mem.DNAs(), ","))
	}
	slices.Sort(sigs)
	return cache.HashJSON(sigs, m.settings.Strings())
}

// CreateClippedBrushes builds the member's clipped brushes unless they are
// already cached under the current cut key. Unregistered members are
// registered first. With clipping off nothing is built.
func (m *Manager) CreateClippedBrushes(mem Member) error {
	if mem == nil || mem.Object() == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil cut member")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := mem.ID()
	m.members[id] = mem

	if key := m.currentKey(); key != m.key {
		if len(m.clipped) > 0 {
			m.stats.Invalidations++
			m.logger.Debug("cut key changed, dropping clipped brushes", "members", len(m.clipped))
		}
		m.dropAll()
		m.key = key
	}

	if !m.settings.Active() {
		return nil
	}
	if _, ok := m.clipped[id]; ok {
		m.stats.Hits++
		observability.Cut().OnCutHit(id)
		return nil
	}

	start := time.Now()
	set, ops := m.clip(mem)
	m.clipped[id] = set
	m.stats.Ops += ops
	m.stats.Recomputes++
	observability.Cut().OnCutRecompute(id, ops, time.Since(start))
	m.logger.Debug("clipped member", "member", id, "brushes", len(set.brushes), "ops", ops)
	return nil
}

// clip builds one brush per element. Brushes are attached hidden next to
// their element, in the element parent's coordinates.
func (m *Manager) clip(mem Member) (*clippedSet, int) {
	set := &clippedSet{}
	ops := 0
	for _, el := range mem.Elements() {
		set.originals = append(set.originals, el)
		world := el.WorldBounds()
		for _, p := range m.settings.Planes {
			world = p.Clip(world)
			ops++
		}
		if world.IsEmpty() {
			continue
		}
		parent := el.Parent()
		var origin scene.Vec3
		if parent != nil {
			origin = parent.WorldPosition()
		}
		brush := scene.New(scene.KindBrush, el.Name)
		brush.Bounds = world.Translate(scene.Vec3{}.Sub(origin))
		brush.Tags = scene.Tags{Category: el.Tags.Category, Type: scene.TypeBrush}
		brush.SetVisible(false)
		if parent != nil {
			parent.Add(brush)
		}
		set.brushes = append(set.brushes, brush)
	}
	return set, ops
}

// ShowAppropriateBrushes shows the member's clipped brushes when clipping
// is on and a clipped set exists, and its original meshes otherwise.
func (m *Manager) ShowAppropriateBrushes(mem Member) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.clipped[mem.ID()]
	if m.settings.Active() && ok {
		set.show(true)
		return
	}
	if ok {
		set.show(false)
		return
	}
	for _, el := range mem.Elements() {
		el.SetVisible(true)
	}
}

// HasClipped reports whether a clipped set is cached for the member.
func (m *Manager) HasClipped(mem Member) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.clipped[mem.ID()]
	return ok
}

// DestroyClippedBrushes drops every clipped set, restores the original
// meshes and resets the cut key.
func (m *Manager) DestroyClippedBrushes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropAll()
	m.key = ""
}

func (m *Manager) dropAll() {
	for id, set := range m.clipped {
		set.drop()
		delete(m.clipped, id)
	}
}

func (s *clippedSet) show(clipped bool) {
	for _, b := range s.brushes {
		b.SetVisible(clipped)
	}
	for _, el := range s.originals {
		el.SetVisible(!clipped)
	}
}

func (s *clippedSet) drop() {
	for _, b := range s.brushes {
		b.Detach()
	}
	for _, el := range s.originals {
		el.SetVisible(true)
	}
	s.brushes = nil
}

// Prepare builds and shows the appropriate brushes for every member. A nil
// manager is a configuration error; callers log it and carry on.
func Prepare(m *Manager, members ...Member) error {
	if m == nil {
		return errors.New(errors.ErrCodeCutConfig, "no cut manager configured")
	}
	for _, mem := range members {
		if err := m.CreateClippedBrushes(mem); err != nil {
			return err
		}
		m.ShowAppropriateBrushes(mem)
	}
	return nil
}
