package toplain

import (
	"iter"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Plain is an ordered, serialization-ready mapping.
// Keys are unique and iterate in insertion order.
// Setting an existing key replaces its value but keeps its position.
//
// The zero value is an empty mapping ready to use.
type Plain struct {
	entries *orderedmap.OrderedMap[string, any]
}

func NewPlain() *Plain {
	return &Plain{entries: orderedmap.New[string, any]()}
}

// PlainFromMap builds a [Plain] from m with keys sorted lexically,
// since Go maps carry no order of their own.
func PlainFromMap(m map[string]any) *Plain {
	p := NewPlain()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		p.Set(k, m[k])
	}
	return p
}

func (p *Plain) Set(key string, value any) {
	if p.entries == nil {
		p.entries = orderedmap.New[string, any]()
	}
	p.entries.Set(key, value)
}

func (p *Plain) Get(key string) (any, bool) {
	if p == nil || p.entries == nil {
		return nil, false
	}
	return p.entries.Get(key)
}

func (p *Plain) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

func (p *Plain) Delete(key string) {
	if p == nil || p.entries == nil {
		return
	}
	p.entries.Delete(key)
}

// Keys returns a copy of the keys in insertion order.
func (p *Plain) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, p.Len())
	for k := range p.All() {
		keys = append(keys, k)
	}
	return keys
}

func (p *Plain) Len() int {
	if p == nil || p.entries == nil {
		return 0
	}
	return p.entries.Len()
}

// All iterates over the entries in insertion order.
func (p *Plain) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if p == nil || p.entries == nil {
			return
		}
		for pair := p.entries.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Map returns the contents as nested builtin maps and slices,
// dropping the key order.
func (p *Plain) Map() map[string]any {
	if p == nil {
		return nil
	}
	m := make(map[string]any, p.Len())
	for k, v := range p.All() {
		m[k] = builtinValue(v)
	}
	return m
}

func builtinValue(v any) any {
	switch v := v.(type) {
	case *Plain:
		return v.Map()
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = builtinValue(v[i])
		}
		return out
	default:
		return v
	}
}

// underlay returns a new [Plain] with base entries first, overlaid by entries of p.
// Keys already present in p win over base.
func (p *Plain) underlay(base *Plain) *Plain {
	merged := NewPlain()
	for k, v := range base.All() {
		merged.Set(k, v)
	}
	for k, v := range p.All() {
		merged.Set(k, v)
	}
	return merged
}

// MarshalJSON encodes the mapping as a JSON object preserving key order.
func (p *Plain) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	if p.entries == nil {
		return []byte("{}"), nil
	}
	data, err := p.entries.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode plain mapping as JSON")
	}
	return data, nil
}

// MarshalYAML implements [yaml.InterfaceMarshaler].
// Nested mappings are converted to [yaml.MapSlice] so that key order survives encoding.
func (p *Plain) MarshalYAML() (any, error) {
	return yamlValue(p), nil
}

// YAML encodes the mapping as a YAML document.
func (p *Plain) YAML() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode plain mapping as YAML")
	}
	return data, nil
}

func yamlValue(v any) any {
	switch v := v.(type) {
	case *Plain:
		if v == nil {
			return nil
		}
		ms := make(yaml.MapSlice, 0, v.Len())
		for k, item := range v.All() {
			ms = append(ms, yaml.MapItem{Key: k, Value: yamlValue(item)})
		}
		return ms
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = yamlValue(v[i])
		}
		return out
	default:
		return v
	}
}
