package schema

import (
	"github.com/graphql-go/graphql"

	"github.com/platform-mesh/graphql-schema-provider/registry/query"
)

// NamedType is one named type of a Schema together with its kind.
type NamedType struct {
	Name string
	Kind query.TypeKind
	Type graphql.Type
}

// Schema is a client-side GraphQL schema rebuilt from a registry
// introspection payload. It is immutable once built.
type Schema struct {
	graphql    *graphql.Schema
	hash       string
	types      []NamedType
	directives []*graphql.Directive
}

// GraphQL returns the underlying graphql-go schema.
func (s *Schema) GraphQL() *graphql.Schema {
	return s.graphql
}

// Hash returns the registry hash of the schema, if any.
func (s *Schema) Hash() string {
	return s.hash
}

// Types returns the named types in the order the registry listed them.
func (s *Schema) Types() []NamedType {
	out := make([]NamedType, len(s.types))
	copy(out, s.types)
	return out
}

// Type looks up a named type listed by the registry.
func (s *Schema) Type(name string) (NamedType, bool) {
	for _, t := range s.types {
		if t.Name == name {
			return t, true
		}
	}
	return NamedType{}, false
}

// Directives returns the directives in the order the registry listed them.
func (s *Schema) Directives() []*graphql.Directive {
	out := make([]*graphql.Directive, len(s.directives))
	copy(out, s.directives)
	return out
}

func (s *Schema) QueryType() *graphql.Object {
	return s.graphql.QueryType()
}

func (s *Schema) MutationType() *graphql.Object {
	return s.graphql.MutationType()
}

func (s *Schema) SubscriptionType() *graphql.Object {
	return s.graphql.SubscriptionType()
}
