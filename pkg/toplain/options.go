package toplain

import (
	"slices"

	"github.com/rs/zerolog"
)

// DefaultContext is used whenever a conversion is requested without a context.
const DefaultContext = "toPlain"

// TypeAttributeName is the key of the type discriminator injected into
// mappings produced by nested typed properties.
const TypeAttributeName = "__type"

// PropertyOptions configures how a single property is converted.
type PropertyOptions struct {
	// Context lists the contexts in which the property is included.
	// Empty means the property is always included.
	Context []string
	// Transformer replaces the default conversion logic.
	Transformer *Transformer
	// Type produces the nested type used to convert the property value.
	Type func() ToPlainCapable
	// Spread merges the converted mapping into the parent instead of nesting it.
	Spread *Spread
}

// Transformer holds a custom conversion function.
type Transformer struct {
	To func(value any) any
}

// Spread requests a structural merge of the property value into its parent.
type Spread struct {
	// Context lists the contexts in which spreading applies.
	// Outside of them the value is assigned under the property key.
	Context []string
}

// Property is a declared property of an object.
type Property struct {
	// Name is the key under which the property is written.
	Name string
	// Field is the Go struct field holding the value.
	// Defaults to Name. Ignored for map-backed objects.
	Field   string
	Options PropertyOptions
}

func (p Property) fieldName() string {
	if p.Field == "" {
		return p.Name
	}
	return p.Field
}

// PropertyMap lists declared properties in declaration order.
type PropertyMap []Property

// PropertyOptionsProvider looks up the declared properties of an object.
// It must be safe to call concurrently if conversions run concurrently.
type PropertyOptionsProvider interface {
	PropertyMap(obj any) (PropertyMap, bool)
}

// PropertyOptionsProviderFunc adapts a function to [PropertyOptionsProvider].
type PropertyOptionsProviderFunc func(obj any) (PropertyMap, bool)

func (f PropertyOptionsProviderFunc) PropertyMap(obj any) (PropertyMap, bool) {
	return f(obj)
}

func inContext(context string, contexts []string) bool {
	return len(contexts) == 0 || slices.Contains(contexts, context)
}

// toPlainOptions contains options for configuring the behavior of [CreateToPlain].
type toPlainOptions struct {
	omitUndefined bool
	logger        zerolog.Logger
}

func defaultOptions() toPlainOptions {
	return toPlainOptions{
		omitUndefined: true,
		logger:        zerolog.Nop(),
	}
}

type Option func(options toPlainOptions) toPlainOptions

// OmitUndefined controls whether properties with undefined values are dropped.
// Enabled by default. When disabled, such properties are written with a nil value.
func OmitUndefined(omit bool) Option {
	return func(options toPlainOptions) toPlainOptions {
		options.omitUndefined = omit
		return options
	}
}

// WithLogger sets the logger receiving debug events about property handling.
func WithLogger(logger zerolog.Logger) Option {
	return func(options toPlainOptions) toPlainOptions {
		options.logger = logger
		return options
	}
}
