package schema

import "errors"

var (
	// ErrEmptyIntrospection indicates that no introspection payload was supplied.
	ErrEmptyIntrospection = errors.New("introspection result is empty")

	// ErrDuplicateType indicates two introspected types share a name.
	ErrDuplicateType = errors.New("duplicate type name")

	// ErrUnsupportedKind indicates a named type with a kind that cannot be declared.
	ErrUnsupportedKind = errors.New("unsupported type kind")

	// ErrUnknownType indicates a reference to a type missing from the payload.
	ErrUnknownType = errors.New("unknown type")

	// ErrIncompleteTypeRef indicates a wrapper chain that does not end in a named type,
	// typically because it is nested deeper than the registry query requests.
	ErrIncompleteTypeRef = errors.New("incomplete type reference")

	// ErrInvalidTypeRef indicates an input type used as output or vice versa.
	ErrInvalidTypeRef = errors.New("invalid type reference")

	// ErrInvalidRootType indicates a root operation type that is missing or not an object.
	ErrInvalidRootType = errors.New("invalid root operation type")

	// ErrInvalidDefaultValue indicates a default value that is not a GraphQL value literal.
	ErrInvalidDefaultValue = errors.New("invalid default value")
)
