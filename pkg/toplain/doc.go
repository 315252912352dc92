// Package toplain converts Go objects into plain, serialization-ready mappings
// driven by per-property declarations.
//
// Each declared property may carry:
//  1. Context names in which the property is included
//  2. A custom [Transformer] replacing the default conversion
//  3. A nested type converting the value with its own declarations
//  4. A [Spread] directive merging the converted mapping into its parent
//
// The resulting [Plain] keeps property declaration order and encodes to JSON and YAML.
//
// # Basic Usage
//
// Declare properties with struct tags:
//
//	type User struct {
//	    Name    string   `json:"name"`
//	    Email   string   `plain:"email,context=admin"`
//	    Address *Address `json:"address"`
//	    Extra   map[string]any `plain:"extra,spread"`
//	}
//
// Register them and create the conversion functions:
//
//	reg := toplain.NewRegistry()
//	address := toplain.NewClass(toplain.CreateToPlain[Address](reg))
//	userToPlain := toplain.CreateToPlain[User](reg)
//
//	err := reg.RegisterTagged(reflect.TypeFor[User](),
//	    toplain.Property{Name: "address", Options: toplain.PropertyOptions{Type: toplain.TypeOf(address)}},
//	)
//
// Convert:
//
//	plain, err := userToPlain(user, "admin")
//
// Nested typed values receive a [TypeAttributeName] entry holding the type name,
// unless their own conversion already wrote one.
//
// # Configuration Options
//
// Use [Option] functions to customize [CreateToPlain]:
//
//	toplain.CreateToPlain[User](reg,
//	    toplain.OmitUndefined(false),
//	    toplain.WithLogger(logger),
//	)
//
// OmitUndefined decides whether properties with nil values are dropped (the default) or kept.
// WithLogger reports skipped and spread properties at debug level.
//
// # Limitations
//
// Cyclic object graphs are not detected and recurse until the stack is exhausted.
// Slice elements all share the options of their property.
package toplain
