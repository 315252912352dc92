// Package testmodels contains sample objects with their property declarations used in tests.
package testmodels

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/nieomylnieja/toplain/pkg/toplain"
)

// Customer is a sample object exercising every kind of property declaration.
type Customer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    *string `plain:"email,context=admin|support"`
	Password string  `plain:"password,context=admin"`
	// Address is converted with its own declarations.
	Address *Address `json:"address"`
	Orders  []Order  `json:"orders"`
	// Labels are flattened into the customer in every context.
	Labels   map[string]any `plain:"labels,spread"`
	Internal string         `plain:"-"`
}

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type Order struct {
	ID    string   `json:"id"`
	Total int      `json:"total"`
	Tags  []string `json:"tags"`
}

// Models holds the conversion functions for all sample objects.
type Models struct {
	Registry *toplain.Registry
	Customer toplain.ToPlainFunc[Customer]
	Address  *toplain.Class[Address]
	Order    *toplain.Class[*Order]
}

// New registers all sample objects in a fresh [toplain.Registry].
func New(opts ...toplain.Option) (*Models, error) {
	reg := toplain.NewRegistry()
	m := &Models{
		Registry: reg,
		Customer: toplain.CreateToPlain[Customer](reg, opts...),
		Address:  toplain.NewClass(toplain.CreateToPlain[Address](reg, opts...)),
		Order:    toplain.NewClass(toplain.CreateToPlain[*Order](reg, opts...)).WithName("PurchaseOrder"),
	}
	if err := reg.RegisterTagged(reflect.TypeFor[Address]()); err != nil {
		return nil, errors.Wrap(err, "failed to register Address")
	}
	if err := reg.RegisterTagged(reflect.TypeFor[Order]()); err != nil {
		return nil, errors.Wrap(err, "failed to register Order")
	}
	err := reg.RegisterTagged(reflect.TypeFor[Customer](),
		toplain.Property{Name: "address", Options: toplain.PropertyOptions{Type: toplain.TypeOf(m.Address)}},
		toplain.Property{Name: "orders", Options: toplain.PropertyOptions{Type: toplain.TypeOf(m.Order)}},
		toplain.Property{Name: "password", Options: toplain.PropertyOptions{
			Transformer: &toplain.Transformer{To: MaskSecret},
		}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to register Customer")
	}
	return m, nil
}

// MaskSecret replaces every character of a string with an asterisk.
func MaskSecret(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.Repeat("*", len(s))
}
