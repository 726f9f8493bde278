// Package alts resolves the section-type alternatives of an active layout.
//
// Given the active [layout.Group], a [Resolver] asks the catalog which other
// section types the same house type exists in, then builds and assembles one
// hidden layout group per alternative. All alternatives are assembled in
// parallel and joined before [Resolver.Resolve] returns. The result always
// contains the active layout itself and is sorted by section code.
package alts

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/errors"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/observability"
)

// Alternative is one section-type variant of a layout.
type Alternative struct {
	SectionType catalog.SectionType
	Group       *layout.Group
	// Active marks the layout the resolution started from.
	Active bool
}

// Resolver materializes section-type alternatives.
type Resolver struct {
	catalog catalog.Catalog
	asm     *layout.Assembler
	logger  *log.Logger
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver.
func NewResolver(cat catalog.Catalog, asm *layout.Assembler, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: cat,
		asm:     asm,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns every alternative of active, including active itself,
// sorted by section code. Alternative groups are detached and hidden.
//
// Resolution is all-or-nothing: when any alternative fails to build, the
// groups assembled so far are destroyed and the error is returned.
func (r *Resolver) Resolve(ctx context.Context, active *layout.Group) (out []Alternative, err error) {
	if active == nil || active.Destroyed() {
		return nil, errors.New(errors.ErrCodeNoActiveLayout, "no active layout to resolve alternatives for")
	}
	systemID := active.SystemID()
	start := time.Now()
	defer func() {
		observability.Assembly().OnResolveComplete(ctx, systemID, len(out), time.Since(start), err)
	}()

	cands, err := r.catalog.ListAlternateSectionTypes(ctx, systemID, active.DNAs(), active.SectionType())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "list alternatives of %s", active.SectionType().Code)
	}
	cands = slices.DeleteFunc(cands, func(c catalog.Alternative) bool {
		return c.SectionType.Code == active.SectionType().Code
	})

	groups := make([]*layout.Group, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cands {
		g.Go(func() error {
			m, err := layout.BuildMatrix(gctx, r.catalog, systemID, c.DNAs)
			if err != nil {
				return errors.Wrap(errors.ErrCodeLayoutAssembly, err, "alternative %s", c.SectionType.Code)
			}
			grp, err := r.asm.Assemble(gctx, m)
			if err != nil {
				return err
			}
			grp.Object().SetVisible(false)
			groups[i] = grp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, grp := range groups {
			if grp != nil {
				grp.Destroy()
			}
		}
		r.logger.Debug("alternative resolution failed", "section", active.SectionType().Code, "err", err)
		return nil, err
	}

	out = make([]Alternative, 0, len(cands)+1)
	out = append(out, Alternative{SectionType: active.SectionType(), Group: active, Active: true})
	for i, c := range cands {
		out = append(out, Alternative{SectionType: c.SectionType, Group: groups[i]})
	}
	slices.SortStableFunc(out, func(a, b Alternative) int {
		return catalog.CompareByCode(a.SectionType, b.SectionType)
	})
	r.logger.Debug("resolved alternatives", "section", active.SectionType().Code, "count", len(out), "elapsed", time.Since(start))
	return out, nil
}

// ByWidth returns a copy of alts sorted by width, then code.
func ByWidth(alts []Alternative) []Alternative {
	out := slices.Clone(alts)
	slices.SortStableFunc(out, func(a, b Alternative) int {
		return catalog.CompareSectionTypes(a.SectionType, b.SectionType)
	})
	return out
}

// Release destroys every non-active group in alts except keep.
func Release(alts []Alternative, keep *layout.Group) {
	for _, a := range alts {
		if a.Active || a.Group == keep || a.Group == nil {
			continue
		}
		a.Group.Destroy()
	}
}
