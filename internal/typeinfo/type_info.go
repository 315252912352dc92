package typeinfo

import (
	"fmt"
	"reflect"
)

// TypeInfo stores the Go type information.
type TypeInfo struct {
	Name    string
	Kind    string
	Package string
}

// Key returns the fully qualified type name.
// Built-in types are returned without a package prefix.
func (t TypeInfo) Key() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// Get returns the information for the [reflect.Type].
// It returns TypeInfo containing the type name (without package prefix) and package path separately.
// All pointer indirections are stripped, so *Address and **Address both yield "Address".
// Package field is empty for built-in and unnamed types.
//
// Unnamed slices of named types keep the slice notation while still reporting the package:
//
//	TypeInfo{Name: "[]Address", Package: ".../models", Kind: "[]struct"}
func Get(typ reflect.Type) TypeInfo {
	if typ == nil {
		return TypeInfo{}
	}
	typ = Deref(typ)
	result := TypeInfo{
		Kind: getKindString(typ),
	}
	if typ.PkgPath() == "" && typ.Kind() == reflect.Slice {
		result.Name = "[]"
		typ = Deref(typ.Elem())
	}
	switch {
	case typ.PkgPath() == "":
		result.Name += typ.String()
	default:
		result.Name += typ.Name()
		result.Package = typ.PkgPath()
	}
	return result
}

// Of is a shorthand for calling [Get] with the dynamic type of v.
func Of(v any) TypeInfo {
	return Get(reflect.TypeOf(v))
}

// Deref strips all pointer indirections from typ.
func Deref(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ
}

func getKindString(typ reflect.Type) string {
	switch typ.Kind() {
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", getKindString(typ.Key()), getKindString(typ.Elem()))
	case reflect.Slice:
		return fmt.Sprintf("[]%s", getKindString(typ.Elem()))
	case reflect.Pointer:
		return getKindString(typ.Elem())
	default:
		return typ.Kind().String()
	}
}
