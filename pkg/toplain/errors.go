package toplain

import "github.com/pkg/errors"

var (
	// ErrTypeMismatch is returned when a value cannot be converted by the nested type
	// declared for its property.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidDeclaration is returned by [Registry] when property declarations are malformed.
	ErrInvalidDeclaration = errors.New("invalid property declaration")
)
