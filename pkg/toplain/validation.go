package toplain

import (
	"fmt"
	"reflect"

	"github.com/nobl9/govy/pkg/govy"
	"github.com/nobl9/govy/pkg/rules"
	"github.com/pkg/errors"

	"github.com/nieomylnieja/toplain/internal/typeinfo"
)

// declaration is the unit validated by [Registry] before storing properties.
type declaration struct {
	Type       reflect.Type
	Properties []Property
}

func validateDeclaration(d declaration) error {
	if err := declarationValidator.Validate(d); err != nil {
		return declarationError(d.Type, "%v", err)
	}
	return nil
}

// declarationError wraps [ErrInvalidDeclaration], prefixing the message with the name of typ if known.
func declarationError(typ reflect.Type, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if typ == nil {
		return errors.Wrap(ErrInvalidDeclaration, msg)
	}
	return errors.Wrapf(ErrInvalidDeclaration, "%s: %s", typeinfo.Get(typ).Key(), msg)
}

var declarationValidator = govy.New(
	govy.For(func(d declaration) reflect.Type { return d.Type }).
		WithName("type").
		Required().
		Rules(objectTypeRule),
	govy.ForSlice(func(d declaration) []Property { return d.Properties }).
		WithName("properties").
		Rules(uniqueNamesRule).
		IncludeForEach(propertyValidator),
	govy.For(func(d declaration) declaration { return d }).
		WithName("properties").
		When(func(d declaration) bool { return d.Type != nil && d.Type.Kind() == reflect.Struct }).
		Rules(structFieldsRule),
).WithName("Declaration")

var propertyValidator = govy.New(
	govy.For(func(p Property) string { return p.Name }).
		WithName("name").
		Required().
		Rules(rules.StringNotEmpty()),
	govy.ForSlice(func(p Property) []string { return p.Options.Context }).
		WithName("context").
		RulesForEach(rules.StringNotEmpty()),
	govy.ForPointer(func(p Property) *Transformer { return p.Options.Transformer }).
		WithName("transformer").
		Rules(transformerRule),
	govy.ForPointer(func(p Property) *Spread { return p.Options.Spread }).
		WithName("spread").
		Include(spreadValidator),
).WithName("Property")

var spreadValidator = govy.New(
	govy.ForSlice(func(s Spread) []string { return s.Context }).
		WithName("context").
		RulesForEach(rules.StringNotEmpty()),
).WithName("Spread")

var objectTypeRule = govy.NewRule(func(typ reflect.Type) error {
	switch {
	case typ == nil:
		return nil
	case typ.Kind() == reflect.Struct:
		return nil
	case typ.Kind() == reflect.Map && typ.Key().Kind() == reflect.String:
		return nil
	default:
		return errors.Errorf("type must be a struct or a string-keyed map, got %s", typ)
	}
}).
	WithErrorCode("object_type").
	WithDescription("type must be a struct or a string-keyed map")

var uniqueNamesRule = govy.NewRule(func(properties []Property) error {
	seen := make(map[string]struct{}, len(properties))
	for _, p := range properties {
		if _, ok := seen[p.Name]; ok {
			return errors.Errorf("property %q is declared more than once", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}).
	WithErrorCode("unique_names").
	WithDescription("property names must be unique")

var structFieldsRule = govy.NewRule(func(d declaration) error {
	for _, p := range d.Properties {
		sf, ok := d.Type.FieldByName(p.fieldName())
		if !ok {
			return errors.Errorf("property %q refers to unknown field %q", p.Name, p.fieldName())
		}
		if !sf.IsExported() {
			return errors.Errorf("property %q refers to unexported field %q", p.Name, p.fieldName())
		}
	}
	return nil
}).
	WithErrorCode("struct_fields").
	WithDescription("properties must refer to exported struct fields")

var transformerRule = govy.NewRule(func(t Transformer) error {
	if t.To == nil {
		return errors.New("transformer must define a 'To' function")
	}
	return nil
}).
	WithErrorCode("transformer_to").
	WithDescription("transformer must define a 'To' function")
