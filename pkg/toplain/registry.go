package toplain

import (
	"reflect"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/nieomylnieja/toplain/internal/structtag"
	"github.com/nieomylnieja/toplain/internal/typeinfo"
)

// Registry is a [PropertyOptionsProvider] holding property declarations per Go type.
// Pointer indirections are ignored, so T and *T share their declarations.
//
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]PropertyMap
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]PropertyMap)}
}

// RegisterType is a generic shorthand for [Registry.Register].
func RegisterType[T any](r *Registry, properties ...Property) error {
	return r.Register(reflect.TypeFor[T](), properties...)
}

// Register declares properties for typ, replacing any previous declaration.
// The type must be a struct or a string-keyed map.
func (r *Registry) Register(typ reflect.Type, properties ...Property) error {
	typ = typeinfo.Deref(typ)
	if err := validateDeclaration(declaration{Type: typ, Properties: properties}); err != nil {
		return err
	}
	r.mu.Lock()
	r.types[typ] = slices.Clone(properties)
	r.mu.Unlock()
	return nil
}

// RegisterTagged declares the properties found in the `plain` struct tags of typ.
// Overrides are matched by property name and supply the options which cannot be
// expressed with tags, like [PropertyOptions.Transformer] and [PropertyOptions.Type].
// Their non-empty Context and Spread replace the tag-declared ones.
func (r *Registry) RegisterTagged(typ reflect.Type, overrides ...Property) error {
	typ = typeinfo.Deref(typ)
	if typ == nil {
		return errors.Wrap(ErrInvalidDeclaration, "type is required")
	}
	fields, err := structtag.Discover(typ)
	if err != nil {
		return declarationError(typ, "%v", err)
	}
	properties := make(PropertyMap, 0, len(fields))
	for _, field := range fields {
		properties = append(properties, propertyFromField(field))
	}
	for _, override := range overrides {
		i := slices.IndexFunc(properties, func(p Property) bool { return p.Name == override.Name })
		if i == -1 {
			return declarationError(typ, "override for undeclared property %q", override.Name)
		}
		properties[i].Options = mergeOptions(properties[i].Options, override.Options)
	}
	return r.Register(typ, properties...)
}

// PropertyMap implements [PropertyOptionsProvider].
func (r *Registry) PropertyMap(obj any) (PropertyMap, bool) {
	typ := typeinfo.Deref(reflect.TypeOf(obj))
	if typ == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	properties, ok := r.types[typ]
	return properties, ok
}

func propertyFromField(field structtag.Field) Property {
	property := Property{
		Name:  field.Name,
		Field: field.GoName,
		Options: PropertyOptions{
			Context: field.Context,
		},
	}
	if field.Spread != nil {
		property.Options.Spread = &Spread{Context: field.Spread.Context}
	}
	return property
}

func mergeOptions(base, override PropertyOptions) PropertyOptions {
	if override.Transformer != nil {
		base.Transformer = override.Transformer
	}
	if override.Type != nil {
		base.Type = override.Type
	}
	if len(override.Context) > 0 {
		base.Context = override.Context
	}
	if override.Spread != nil {
		base.Spread = override.Spread
	}
	return base
}
