// Package api exposes houses over HTTP.
//
// The server keeps live houses in memory and forwards pointer gestures to
// their stretch engines, so a browser front end can drive the configurator
// with plain JSON requests:
//
//	POST   /houses                                   create a house
//	GET    /houses                                   list house ids
//	GET    /houses/{id}                              snapshot
//	DELETE /houses/{id}                              close a house
//	PUT    /houses/{id}/clip                         replace clip planes
//	PUT    /houses/{id}/handles                      show or hide handles
//	POST   /houses/{id}/stretch/{axis}/start         {"side": "end"}
//	POST   /houses/{id}/stretch/{axis}/progress      {"delta": 0.5}
//	POST   /houses/{id}/stretch/{axis}/end
//
// Requests to one house are serialized; different houses run in parallel.
// Houses are not persisted.
package api

import (
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/geometry"
	"github.com/matzehuels/modhouse/pkg/house"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/observability"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// DefaultMaxHouses bounds the number of live houses per server.
const DefaultMaxHouses = 256

// Config holds the collaborators shared by every house of a server.
type Config struct {
	Catalog  catalog.Catalog
	Provider geometry.Provider
	Strict   bool
	MaxDepth float64
	// MaxHouses bounds live houses; 0 uses DefaultMaxHouses.
	MaxHouses int
	Logger    *log.Logger
}

// Server is the HTTP adapter.
type Server struct {
	cfg    Config
	logger *log.Logger

	mu      sync.Mutex
	catalog catalog.Catalog
	houses  map[string]*entry
}

// entry serializes access to one house and buffers its swap events.
type entry struct {
	mu    sync.Mutex
	house *house.House
	swaps []stretch.SwapEvent
}

// drain returns and clears the buffered swap events.
func (e *entry) drain() []stretch.SwapEvent {
	s := e.swaps
	e.swaps = nil
	return s
}

// NewServer creates a server. Catalog and Provider are required.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Catalog == nil || cfg.Provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server needs a catalog and a geometry provider")
	}
	if cfg.MaxHouses == 0 {
		cfg.MaxHouses = DefaultMaxHouses
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{cfg: cfg, logger: logger, catalog: cfg.Catalog, houses: make(map[string]*entry)}, nil
}

// SetCatalog replaces the catalog used for new houses. Live houses keep
// the catalog they were created with.
func (s *Server) SetCatalog(cat catalog.Catalog) {
	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	s.logger.Info("catalog replaced")
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Route("/houses", func(r chi.Router) {
		r.Post("/", s.createHouse)
		r.Get("/", s.listHouses)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getHouse)
			r.Delete("/", s.deleteHouse)
			r.Put("/clip", s.setClip)
			r.Put("/handles", s.setHandles)
			r.Post("/stretch/{axis}/{action}", s.stretch)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// observe reports every request to the HTTP hooks, keyed by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", time.Since(start))
	})
}

// Create builds a new house and registers it.
func (s *Server) Create(ctx context.Context, ht mhio.HouseType, clip cut.Settings) (string, error) {
	s.mu.Lock()
	full := len(s.houses) >= s.cfg.MaxHouses
	cat := s.catalog
	s.mu.Unlock()
	if full {
		return "", errors.New(errors.ErrCodePrecondition, "house limit of %d reached", s.cfg.MaxHouses)
	}

	e := &entry{}
	h, err := house.New(ctx, house.Config{
		Catalog:  cat,
		Provider: s.cfg.Provider,
		Cuts:     cut.NewManager(cut.WithLogger(s.logger)),
		Strict:   s.cfg.Strict,
		MaxDepth: s.cfg.MaxDepth,
		OnSwap:   func(ev stretch.SwapEvent) { e.swaps = append(e.swaps, ev) },
		Logger:   s.logger,
	}, ht)
	if err != nil {
		return "", err
	}
	if clip.Active() {
		if err := h.SetClip(clip); err != nil {
			h.Close()
			return "", err
		}
	}
	h.ShowHandles()
	e.house = h

	// Another create may have filled the last slot while this house was built.
	s.mu.Lock()
	if len(s.houses) >= s.cfg.MaxHouses {
		s.mu.Unlock()
		h.Close()
		return "", errors.New(errors.ErrCodePrecondition, "house limit of %d reached", s.cfg.MaxHouses)
	}
	s.houses[h.ID()] = e
	s.mu.Unlock()
	s.logger.Info("house created", "id", h.ID(), "system", ht.SystemID, "modules", len(ht.DNAs))
	return h.ID(), nil
}

// IDs returns the ids of all live houses, sorted.
func (s *Server) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.houses))
	for id := range s.houses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// lookup returns the entry for id.
func (s *Server) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.houses[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "house %s not found", id)
	}
	return e, nil
}

// Delete closes and forgets a house.
func (s *Server) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.houses[id]
	delete(s.houses, id)
	s.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "house %s not found", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.house != nil {
		e.house.Close()
		e.house = nil
	}
	return nil
}

// Close closes every live house.
func (s *Server) Close() {
	for _, id := range s.IDs() {
		_ = s.Delete(id)
	}
}
