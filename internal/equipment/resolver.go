// Package equipment maps the many spellings of an equipment identifier
// (MegaMek internal names, display names, renamed ids, slot-suffixed ids)
// onto one canonical catalog key.
package equipment

import (
	"strings"

	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

// stage is one normalization step. The first stage that matches wins.
type stage struct {
	name string
	fn   func(string) (string, bool)
}

// Resolver normalizes identifiers and resolves their BV and heat.
type Resolver struct {
	cat    catalog.Catalog
	tables *AliasTables
	logger *zap.Logger
	stages []stage
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver builds a resolver over cat. A nil catalog behaves like one
// that never loads: only alias targets and the built-in baseline resolve.
func NewResolver(cat catalog.Catalog, tables *AliasTables, opts ...Option) *Resolver {
	r := &Resolver{cat: cat, tables: tables, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	r.stages = []stage{
		{"exact-alias", r.exactAlias},
		{"exact-display", r.exactDisplay},
		{"folded", r.folded},
		{"tech-base", r.techBase},
		{"catalog-key", r.catalogKey},
	}
	return r
}

// Resolution is the outcome of resolving one identifier.
type Resolution struct {
	Input    string        `json:"input"`
	ID       string        `json:"id"`
	Resolved bool          `json:"resolved"`
	Stage    string        `json:"stage,omitempty"`
	Entry    catalog.Entry `json:"entry"`
}

// BVResolution carries the values the calculators need.
type BVResolution struct {
	Resolved    bool `json:"resolved"`
	BattleValue int  `json:"battle_value"`
	Heat        int  `json:"heat"`
}

// Normalize returns the canonical id for raw, or the slug of raw when no
// stage recognises it. Normalize(Normalize(x)) == Normalize(x).
func (r *Resolver) Normalize(raw string) string {
	id, _ := r.normalize(raw)
	return id
}

func (r *Resolver) normalize(raw string) (string, string) {
	for _, st := range r.stages {
		if id, ok := st.fn(raw); ok {
			return id, st.name
		}
	}
	return Slug(raw), ""
}

// Resolve normalizes raw and fetches its catalog entry.
func (r *Resolver) Resolve(raw string) Resolution {
	id, stage := r.normalize(raw)
	res := Resolution{Input: raw, ID: id, Stage: stage}
	if e, ok := r.entry(id); ok {
		res.Resolved = true
		res.Entry = clamp(e)
	} else {
		r.logger.Debug("equipment unresolved", zap.String("input", raw), zap.String("id", id))
	}
	return res
}

// ResolveBV returns the BV and heat of raw. Unknown equipment yields
// {false, 0, 0}; it is never an error.
func (r *Resolver) ResolveBV(raw string) BVResolution {
	res := r.Resolve(raw)
	if !res.Resolved {
		return BVResolution{}
	}
	return BVResolution{Resolved: true, BattleValue: res.Entry.BattleValue, Heat: res.Entry.Heat}
}

// Catalog returns the catalog the resolver reads from, or nil.
func (r *Resolver) Catalog() catalog.Catalog { return r.cat }

func clamp(e catalog.Entry) catalog.Entry {
	e.BattleValue = max(e.BattleValue, 0)
	e.Heat = max(e.Heat, 0)
	e.DefensiveBV = max(e.DefensiveBV, 0)
	return e
}

func (r *Resolver) entry(id string) (catalog.Entry, bool) {
	if r.cat != nil {
		if e, ok := r.cat.Lookup(id); ok {
			return e, true
		}
	}
	e, ok := baseline[id]
	return e, ok
}

func (r *Resolver) isKey(id string) bool {
	if r.tables != nil && r.tables.IsTarget(id) {
		return true
	}
	_, ok := r.entry(id)
	return ok
}

func (r *Resolver) exactAlias(s string) (string, bool) {
	if r.tables == nil {
		return "", false
	}
	v, ok := r.tables.direct[s]
	return v, ok
}

func (r *Resolver) exactDisplay(s string) (string, bool) {
	if r.tables == nil {
		return "", false
	}
	v, ok := r.tables.display[s]
	return v, ok
}

func (r *Resolver) folded(s string) (string, bool) {
	if r.tables == nil {
		return "", false
	}
	f := fold(s)
	if v, ok := r.tables.directFolded[f]; ok {
		return v, true
	}
	v, ok := r.tables.displayFolded[f]
	return v, ok
}

func (r *Resolver) aliased(s string) (string, bool) {
	for _, fn := range []func(string) (string, bool){r.exactAlias, r.exactDisplay, r.folded} {
		if v, ok := fn(s); ok {
			return v, true
		}
	}
	return "", false
}

// techBase strips a tech-base marker and resolves the body through the
// alias stages. A Clan marker is carried into the result.
func (r *Resolver) techBase(s string) (string, bool) {
	body, m := splitTechBase(s)
	if m == noMarker {
		return "", false
	}
	v, ok := r.aliased(body)
	if !ok {
		return "", false
	}
	return applyMarker(v, m), true
}

// candidates lists the keys catalogKey tries, in order: the marker-applied
// forms of the input, then its plain slug, each followed by its
// counter-stripped variants.
func (r *Resolver) candidates(s string) []string {
	var bases []string
	if body, m := splitTechBase(s); m != noMarker {
		bases = append(bases, applyMarker(strings.ToLower(body), m), applyMarker(Slug(body), m))
	}
	bases = append(bases, strings.ToLower(strings.TrimSpace(s)), Slug(s))

	seen := map[string]bool{}
	var out []string
	for _, b := range bases {
		for _, v := range counterVariants(b) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func (r *Resolver) catalogKey(s string) (string, bool) {
	for i, c := range r.candidates(s) {
		if r.isKey(c) {
			return c, true
		}
		if i == 0 {
			continue
		}
		// stripped or re-slugged forms may still carry an alias or marker
		if v, ok := r.aliased(c); ok {
			return v, true
		}
		if v, ok := r.techBase(c); ok {
			return v, true
		}
	}
	return "", false
}
