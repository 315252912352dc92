// Package structtag discovers plain properties declared on struct fields.
//
// The `plain` tag has the form:
//
//	plain:"name,context=admin|public,spread=admin"
//
// The name part may be empty, in which case the `json` tag name is used,
// followed by the Go field name. A "-" name ignores the field.
// A bare "spread" option spreads the value in every context.
//
// Embedded structs follow encoding/json: untagged ones promote their fields,
// a "-" name hides them along with every promoted field,
// and any other name turns them into a single property.
package structtag

import (
	"cmp"
	"reflect"
	"slices"
	"strings"

	tagparser "github.com/fatih/structtag"
	"github.com/pkg/errors"
)

const (
	TagName     = "plain"
	jsonTagName = "json"

	optionContext = "context"
	optionSpread  = "spread"
	listSeparator = "|"
)

// Field is a single property discovered on a struct.
type Field struct {
	// Name is the key under which the property is written.
	Name string
	// GoName is the name of the underlying struct field.
	GoName  string
	Context []string
	// Spread is nil when the field is not spread.
	Spread *Spread
}

// Spread holds the parsed spread directive.
type Spread struct {
	Context []string
}

// Discover returns the properties declared on the struct type typ in field declaration order.
// Fields promoted from embedded structs are visited as well.
func Discover(typ reflect.Type) ([]Field, error) {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil {
		return nil, errors.New("expected struct type, got nil")
	}
	if typ.Kind() != reflect.Struct {
		return nil, errors.Errorf("expected struct type, got %s", typ)
	}
	fields := make([]Field, 0, typ.NumField())
	// Index paths of embedded structs whose promoted fields must not be visited.
	var hidden [][]int
	for _, sf := range reflect.VisibleFields(typ) {
		if slices.ContainsFunc(hidden, func(index []int) bool { return hasPrefix(sf.Index, index) }) {
			continue
		}
		t, err := lookupTag(sf)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid tags on %s.%s", typ.Name(), sf.Name)
		}
		if t.name == "-" {
			hidden = append(hidden, sf.Index)
			continue
		}
		if sf.Anonymous {
			if t.name == "" && isStruct(sf.Type) {
				if len(t.options) > 0 {
					return nil, errors.Errorf("invalid %s tag on %s.%s: options on embedded struct require a name",
						TagName, typ.Name(), sf.Name)
				}
				continue
			}
			hidden = append(hidden, sf.Index)
		}
		if !sf.IsExported() {
			if sf.Anonymous && t.name != "" {
				return nil, errors.Errorf("invalid %s tag on %s.%s: embedded field is unexported",
					TagName, typ.Name(), sf.Name)
			}
			continue
		}
		field, err := parseField(sf, t)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s tag on %s.%s", TagName, typ.Name(), sf.Name)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// tag is the property name and options declared for a single struct field.
type tag struct {
	name    string
	options []string
}

// lookupTag reads the `plain` tag of sf, falling back to the `json` tag name.
func lookupTag(sf reflect.StructField) (tag, error) {
	var t tag
	tags, err := tagparser.Parse(string(sf.Tag))
	if err != nil || tags == nil {
		return t, err
	}
	if plain, err := tags.Get(TagName); err == nil {
		t.name = plain.Name
		t.options = plain.Options
	}
	if t.name == "" {
		if json, err := tags.Get(jsonTagName); err == nil {
			t.name = json.Name
		}
	}
	return t, nil
}

func parseField(sf reflect.StructField, t tag) (Field, error) {
	field := Field{
		Name:   cmp.Or(t.name, sf.Name),
		GoName: sf.Name,
	}
	for _, opt := range t.options {
		key, value, hasValue := strings.Cut(opt, "=")
		switch strings.TrimSpace(key) {
		case optionContext:
			contexts, err := parseList(value)
			if err != nil {
				return Field{}, errors.Wrap(err, optionContext)
			}
			field.Context = contexts
		case optionSpread:
			field.Spread = &Spread{}
			if !hasValue {
				continue
			}
			contexts, err := parseList(value)
			if err != nil {
				return Field{}, errors.Wrap(err, optionSpread)
			}
			field.Spread.Context = contexts
		case "":
			// Tolerate trailing commas.
		default:
			return Field{}, errors.Errorf("unknown option %q", key)
		}
	}
	return field, nil
}

func parseList(value string) ([]string, error) {
	items := strings.Split(value, listSeparator)
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, errors.New("empty context name")
		}
		items[i] = item
	}
	return items, nil
}

func isStruct(typ reflect.Type) bool {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.Kind() == reflect.Struct
}

func hasPrefix(index, prefix []int) bool {
	return len(index) > len(prefix) && slices.Equal(index[:len(prefix)], prefix)
}
