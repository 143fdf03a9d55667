package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Source produces the full set of catalog entries. Implementations may do
// I/O; the Cache calls Load at most once per successful population.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) Load(ctx context.Context) ([]Entry, error) { return f(ctx) }

// StaticSource serves a fixed slice of entries.
type StaticSource []Entry

func (s StaticSource) Load(context.Context) ([]Entry, error) {
	out := make([]Entry, len(s))
	copy(out, s)
	return out, nil
}

//go:embed data/equipment.yaml
var embeddedEquipment []byte

type catalogFile struct {
	Entries []Entry `yaml:"entries"`
}

// EmbeddedSource returns the baseline catalog compiled into the binary.
func EmbeddedSource() Source {
	return SourceFunc(func(context.Context) ([]Entry, error) {
		return DecodeYAML(bytes.NewReader(embeddedEquipment))
	})
}

// FileSource reads a catalog YAML file on every Load.
func FileSource(path string) Source {
	return SourceFunc(func(context.Context) ([]Entry, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		return DecodeYAML(f)
	})
}

// DecodeYAML parses a catalog document of the form `entries: [...]`.
func DecodeYAML(r io.Reader) ([]Entry, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, e := range doc.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d (%q) has no id", i, e.Name)
		}
	}
	return doc.Entries, nil
}
