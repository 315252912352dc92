package toplain

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nieomylnieja/toplain/internal/typeinfo"
)

// CreateToPlain creates a [ToPlainFunc] for T which converts objects according to
// the properties declared for them in provider.
//
// Objects with no declared properties convert to an empty mapping.
// Conversion either succeeds as a whole or returns an error and no mapping.
func CreateToPlain[T any](provider PropertyOptionsProvider, opts ...Option) ToPlainFunc[T] {
	options := defaultOptions()
	for _, opt := range opts {
		options = opt(options)
	}
	b := builder{
		provider:      provider,
		typeName:      typeinfo.Get(reflect.TypeFor[T]()).Name,
		omitUndefined: options.omitUndefined,
		log:           options.logger,
		transformer:   transformer{log: options.logger},
	}
	return func(obj T, context string) (*Plain, error) {
		return b.build(obj, context)
	}
}

type builder struct {
	provider      PropertyOptionsProvider
	typeName      string
	omitUndefined bool
	log           zerolog.Logger
	transformer   transformer
}

func (b builder) build(obj any, context string) (*Plain, error) {
	if context == "" {
		context = DefaultContext
	}
	if isUndefined(obj) {
		return NewPlain(), nil
	}
	properties, found := b.provider.PropertyMap(obj)
	if !found {
		return NewPlain(), nil
	}
	source := reflect.Indirect(reflect.ValueOf(obj))
	result := NewPlain()
	for _, property := range properties {
		options := property.Options
		if !inContext(context, options.Context) {
			b.skipped(property, context, "out of context")
			continue
		}
		raw := propertyValue(source, property)
		if b.omitUndefined && isUndefined(raw) {
			b.skipped(property, context, "undefined value")
			continue
		}
		transformed, err := b.transformer.transform(raw, context, &options)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to convert %s property %q", b.typeName, property.Name)
		}
		if b.omitUndefined && isUndefined(transformed) {
			b.skipped(property, context, "undefined transformed value")
			continue
		}
		if options.Spread != nil && inContext(context, options.Spread.Context) {
			if spread, ok := asMapping(transformed); ok {
				result = result.underlay(spread)
				b.log.Debug().
					Str("property", property.Name).
					Str("context", context).
					Int("entries", spread.Len()).
					Msg("spread property")
				continue
			}
		}
		result.Set(property.Name, transformed)
	}
	return result, nil
}

func (b builder) skipped(property Property, context, reason string) {
	b.log.Debug().
		Str("property", property.Name).
		Str("context", context).
		Str("reason", reason).
		Msg("skipped property")
}

// propertyValue reads the raw value of property from a struct or a string-keyed map.
// Anything that cannot be read is reported as undefined.
func propertyValue(source reflect.Value, property Property) any {
	switch source.Kind() {
	case reflect.Struct:
		sf, ok := source.Type().FieldByName(property.fieldName())
		if !ok || !sf.IsExported() {
			return nil
		}
		v, err := source.FieldByIndexErr(sf.Index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			return nil
		}
		return v.Interface()
	case reflect.Map:
		keyType := source.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil
		}
		v := source.MapIndex(reflect.ValueOf(property.Name).Convert(keyType))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	default:
		return nil
	}
}
