package toplain

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Transform converts a single value to its plain equivalent.
//
// Slices and arrays are converted element by element with the same options.
// A custom [Transformer] takes precedence over any other logic.
// Undefined values (nil, or nil pointers, maps, slices, interfaces, funcs and channels)
// are returned as nil.
// Values of properties with a declared [PropertyOptions.Type] are converted by that type
// and receive a [TypeAttributeName] entry unless they already have one.
// Everything else is returned as is.
//
// The input value is never modified.
func Transform(value any, context string, options *PropertyOptions) (any, error) {
	return transformer{log: zerolog.Nop()}.transform(value, context, options)
}

type transformer struct {
	log zerolog.Logger
}

func (t transformer) transform(value any, context string, options *PropertyOptions) (any, error) {
	if options == nil {
		options = &PropertyOptions{}
	}
	if seq, ok := sequence(value); ok {
		elements := make([]any, seq.Len())
		for i := range elements {
			v, err := t.transform(seq.Index(i).Interface(), context, options)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to convert element %d", i)
			}
			elements[i] = v
		}
		return elements, nil
	}
	if options.Transformer != nil && options.Transformer.To != nil {
		return options.Transformer.To(value), nil
	}
	if isUndefined(value) {
		return nil, nil
	}
	if options.Type != nil {
		return t.transformNested(value, context, options.Type)
	}
	return value, nil
}

func (t transformer) transformNested(value any, context string, typeFunc func() ToPlainCapable) (*Plain, error) {
	class := typeFunc()
	if isUndefined(class) {
		return nil, errors.Wrapf(ErrTypeMismatch, "no nested type resolved for value of type %s", typeName(value))
	}
	plain, err := class.ToPlain(value, context)
	if err != nil {
		return nil, err
	}
	if plain == nil {
		plain = NewPlain()
	}
	if !plain.Has(TypeAttributeName) {
		plain.Set(TypeAttributeName, class.TypeName())
		t.log.Debug().
			Str("type", class.TypeName()).
			Msg("injected type discriminator")
	}
	return plain, nil
}

// sequence reports whether value should be converted element-wise.
// Byte slices are treated as scalars, nil slices as undefined.
func sequence(value any) (reflect.Value, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return reflect.Value{}, false
		}
	case reflect.Array:
	default:
		return reflect.Value{}, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return reflect.Value{}, false
	}
	return rv, true
}

func isUndefined(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer,
		reflect.Map,
		reflect.Slice,
		reflect.Interface,
		reflect.Func,
		reflect.Chan,
		reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// asMapping returns value as a [Plain] if it is a mapping eligible for spreading.
// String-keyed Go maps are accepted and ordered by key.
func asMapping(value any) (*Plain, bool) {
	if p, ok := value.(*Plain); ok {
		return p, p != nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return PlainFromMap(m), true
}
