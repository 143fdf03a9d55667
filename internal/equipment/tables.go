package equipment

import (
	_ "embed"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed data/aliases.yaml
var embeddedAliases []byte

// AliasTables maps historical ids and display names onto canonical catalog
// keys. It is immutable once constructed.
type AliasTables struct {
	direct  map[string]string
	display map[string]string

	// folded views, built at construction
	directFolded  map[string]string
	displayFolded map[string]string
	targets       map[string]struct{}
}

type aliasFile struct {
	Direct  map[string]string `yaml:"direct"`
	Display map[string]string `yaml:"display"`
}

// DefaultAliasTables builds the tables shipped with the binary.
func DefaultAliasTables() (*AliasTables, error) {
	var f aliasFile
	if err := yaml.Unmarshal(embeddedAliases, &f); err != nil {
		return nil, fmt.Errorf("decode alias tables: %w", err)
	}
	return NewAliasTables(f.Direct, f.Display)
}

// NewAliasTables copies the given maps and checks them for consistency:
// every target must normalize to itself through the alias stages, and no
// two keys may fold to the same string while naming different targets.
// All violations are reported together.
func NewAliasTables(direct, display map[string]string) (*AliasTables, error) {
	t := &AliasTables{
		direct:        make(map[string]string, len(direct)),
		display:       make(map[string]string, len(display)),
		directFolded:  make(map[string]string, len(direct)),
		displayFolded: make(map[string]string, len(display)),
		targets:       make(map[string]struct{}),
	}

	var errs error
	crossFold := map[string]string{}
	foldInto := func(dst map[string]string, table string, src map[string]string) {
		for _, k := range sortedKeys(src) {
			v := src[k]
			if v == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s alias %q has an empty target", table, k))
				continue
			}
			f := fold(k)
			if f == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s alias %q folds to nothing", table, k))
				continue
			}
			if prev, ok := crossFold[f]; ok && prev != v {
				errs = multierr.Append(errs, fmt.Errorf("%s alias %q folds to %q, already mapped to %q not %q", table, k, f, prev, v))
				continue
			}
			crossFold[f] = v
			dst[f] = v
		}
	}

	for k, v := range direct {
		t.direct[k] = v
		t.targets[v] = struct{}{}
	}
	for k, v := range display {
		t.display[k] = v
		t.targets[v] = struct{}{}
	}
	foldInto(t.directFolded, "direct", direct)
	foldInto(t.displayFolded, "display", display)

	for _, target := range sortedKeys(t.targets) {
		if got, ok := t.lookup(target); ok && got != target {
			errs = multierr.Append(errs, fmt.Errorf("alias target %q is not canonical: it maps to %q", target, got))
		}
	}
	delete(t.targets, "")
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

// Extend returns a copy of t with extra direct aliases, such as lookup
// names stored next to a database catalog. Keys already present keep
// their current target.
func (t *AliasTables) Extend(direct map[string]string) (*AliasTables, error) {
	merged := make(map[string]string, len(t.direct)+len(direct))
	for k, v := range t.direct {
		merged[k] = v
	}
	for k, v := range direct {
		if _, ok := merged[k]; ok {
			continue
		}
		if _, ok := t.display[k]; ok {
			continue
		}
		if _, ok := t.lookup(k); ok {
			continue
		}
		merged[k] = v
	}
	return NewAliasTables(merged, t.display)
}

// lookup runs the exact and folded alias stages.
func (t *AliasTables) lookup(s string) (string, bool) {
	if v, ok := t.direct[s]; ok {
		return v, true
	}
	if v, ok := t.display[s]; ok {
		return v, true
	}
	f := fold(s)
	if v, ok := t.directFolded[f]; ok {
		return v, true
	}
	if v, ok := t.displayFolded[f]; ok {
		return v, true
	}
	return "", false
}

// IsTarget reports whether id is the canonical target of some alias.
func (t *AliasTables) IsTarget(id string) bool {
	_, ok := t.targets[id]
	return ok
}

// Len returns the number of direct and display aliases.
func (t *AliasTables) Len() int { return len(t.direct) + len(t.display) }

// Keys returns every alias key, sorted.
func (t *AliasTables) Keys() []string {
	keys := make([]string, 0, t.Len())
	for k := range t.direct {
		keys = append(keys, k)
	}
	for k := range t.display {
		if _, dup := t.direct[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Pairs returns every (alias, target) pair sorted by alias, for seeding
// lookup tables.
func (t *AliasTables) Pairs() [][2]string {
	out := make([][2]string, 0, t.Len())
	for _, k := range t.Keys() {
		v, ok := t.direct[k]
		if !ok {
			v = t.display[k]
		}
		out = append(out, [2]string{k, v})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
