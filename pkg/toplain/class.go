package toplain

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/nieomylnieja/toplain/internal/typeinfo"
)

// ToPlainCapable is implemented by nested types referenced through [PropertyOptions.Type].
type ToPlainCapable interface {
	// TypeName is written under [TypeAttributeName] unless the produced mapping already has it.
	TypeName() string
	// ToPlain converts value, which must be an instance of the type, to its plain form.
	ToPlain(value any, context string) (*Plain, error)
}

// ToPlainFunc converts obj to its plain form for the given context.
// An empty context resolves to [DefaultContext].
type ToPlainFunc[T any] func(obj T, context string) (*Plain, error)

// Class binds a [ToPlainFunc] to its type, making it usable as a nested type.
type Class[T any] struct {
	name    string
	typ     reflect.Type
	toPlain ToPlainFunc[T]
}

// NewClass creates a [Class] named after T, with any pointer indirection removed.
func NewClass[T any](toPlain ToPlainFunc[T]) *Class[T] {
	typ := reflect.TypeFor[T]()
	return &Class[T]{
		name:    typeinfo.Get(typ).Name,
		typ:     typ,
		toPlain: toPlain,
	}
}

// WithName returns a copy of the class using name as its type discriminator.
func (c *Class[T]) WithName(name string) *Class[T] {
	cp := *c
	cp.name = name
	return &cp
}

func (c *Class[T]) TypeName() string {
	return c.name
}

// ToPlain narrows value to T and converts it.
// Both T and *T are accepted regardless of which one the class was declared with.
func (c *Class[T]) ToPlain(value any, context string) (*Plain, error) {
	obj, err := c.assume(value)
	if err != nil {
		return nil, err
	}
	return c.toPlain(obj, context)
}

func (c *Class[T]) assume(value any) (T, error) {
	if obj, ok := value.(T); ok {
		return obj, nil
	}
	var zero T
	rv := reflect.ValueOf(value)
	switch {
	case !rv.IsValid():
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem() == c.typ:
		return rv.Elem().Interface().(T), nil
	case c.typ.Kind() == reflect.Pointer && c.typ.Elem() == rv.Type():
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		return ptr.Interface().(T), nil
	}
	return zero, errors.Wrapf(ErrTypeMismatch, "%s cannot convert value of type %s",
		typeinfo.Get(c.typ).Key(), typeName(value))
}

// TypeOf returns a [PropertyOptions.Type] factory always yielding c.
func TypeOf(c ToPlainCapable) func() ToPlainCapable {
	return func() ToPlainCapable { return c }
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}
