package geometry

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/observability"
	"github.com/matzehuels/modhouse/pkg/scene"
)

// cachedProvider serves geometry from a [cache.Cache] and falls back to
// the wrapped provider on a miss.
type cachedProvider struct {
	next   Provider
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// Cached wraps next with a byte cache. A nil keyer uses the default keyer;
// a ttl of 0 uses [cache.TTLGeometry]. Cache read and write failures are
// logged and never fail a fetch.
func Cached(next Provider, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) Provider {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.TTLGeometry
	}
	if logger == nil {
		logger = log.Default()
	}
	return &cachedProvider{next: next, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// wireBox avoids encoding the infinities of an empty box, which JSON
// cannot represent.
type wireBox struct {
	Min   scene.Vec3 `json:"min"`
	Max   scene.Vec3 `json:"max"`
	Empty bool       `json:"empty,omitempty"`
}

type wireElement struct {
	Name   string  `json:"name"`
	Bounds wireBox `json:"bounds"`
}

type wireData struct {
	Ref      Ref           `json:"ref"`
	Elements []wireElement `json:"elements"`
}

func (p *cachedProvider) FetchModuleGeometry(ctx context.Context, ref Ref) (*Data, error) {
	key := p.keyer.GeometryKey(ref.SystemID, ref.DNA)

	raw, hit, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("geometry cache read failed", "dna", ref.DNA, "err", err)
	}
	if hit {
		if d, err := decode(raw); err == nil {
			observability.Cache().OnCacheHit(ctx, "geometry")
			return d, nil
		}
		p.logger.Debug("discarding corrupt geometry cache entry", "dna", ref.DNA)
	}
	observability.Cache().OnCacheMiss(ctx, "geometry")

	d, err := p.next.FetchModuleGeometry(ctx, ref)
	if err != nil {
		return nil, err
	}
	if raw, err := encode(d); err == nil {
		if err := p.cache.Set(ctx, key, raw, p.ttl); err != nil {
			p.logger.Warn("geometry cache write failed", "dna", ref.DNA, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "geometry", len(raw))
		}
	}
	return d, nil
}

func encode(d *Data) ([]byte, error) {
	w := wireData{Ref: d.Ref, Elements: make([]wireElement, len(d.Elements))}
	for i, e := range d.Elements {
		wb := wireBox{Min: e.Bounds.Min, Max: e.Bounds.Max}
		if e.Bounds.IsEmpty() {
			wb = wireBox{Empty: true}
		}
		w.Elements[i] = wireElement{Name: e.Name, Bounds: wb}
	}
	return json.Marshal(w)
}

func decode(raw []byte) (*Data, error) {
	var w wireData
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode geometry")
	}
	d := &Data{Ref: w.Ref, Elements: make([]Element, len(w.Elements))}
	for i, e := range w.Elements {
		b := scene.Box3{Min: e.Bounds.Min, Max: e.Bounds.Max}
		if e.Bounds.Empty || math.IsNaN(b.Min.X) {
			b = scene.EmptyBox()
		}
		d.Elements[i] = Element{Name: e.Name, Bounds: b}
	}
	return d, nil
}
