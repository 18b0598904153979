package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/platform-mesh/graphql-schema-provider/registry/query"
)

// resolveRef unwraps a LIST/NON_NULL chain to its named type and rebuilds the
// wrappers around the declared type. At most query.MaxTypeRefDepth wrappers
// are followed, matching what the registry query requests.
func (r *typeRegistry) resolveRef(ref query.TypeRef) (graphql.Type, error) {
	wrappers := make([]query.TypeKind, 0, 2)

	current := &ref
	for current.IsWrapper() {
		if len(wrappers) == query.MaxTypeRefDepth {
			return nil, fmt.Errorf("%w: more than %d wrappers", ErrIncompleteTypeRef, query.MaxTypeRefDepth)
		}
		wrappers = append(wrappers, current.Kind)
		if current.OfType == nil {
			return nil, fmt.Errorf("%w: %s without ofType", ErrIncompleteTypeRef, current.Kind)
		}
		current = current.OfType
	}

	if current.Name == nil || *current.Name == "" {
		return nil, fmt.Errorf("%w: %s without name", ErrIncompleteTypeRef, current.Kind)
	}

	named, ok := r.get(*current.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, *current.Name)
	}

	var resolved graphql.Type = named
	for i := len(wrappers) - 1; i >= 0; i-- {
		switch wrappers[i] {
		case query.KindList:
			resolved = graphql.NewList(resolved)
		case query.KindNonNull:
			resolved = graphql.NewNonNull(resolved)
		}
	}

	return resolved, nil
}

func (r *typeRegistry) outputRef(ref query.TypeRef) (graphql.Output, error) {
	t, err := r.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if !graphql.IsOutputType(t) {
		return nil, fmt.Errorf("%w: %s is not an output type", ErrInvalidTypeRef, t.String())
	}
	return t, nil
}

func (r *typeRegistry) inputRef(ref query.TypeRef) (graphql.Input, error) {
	t, err := r.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if !graphql.IsInputType(t) {
		return nil, fmt.Errorf("%w: %s is not an input type", ErrInvalidTypeRef, t.String())
	}
	return t, nil
}
