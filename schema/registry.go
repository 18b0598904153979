package schema

import (
	"github.com/graphql-go/graphql"

	"github.com/platform-mesh/graphql-schema-provider/registry/query"
)

var builtinScalars = map[string]*graphql.Scalar{
	"String":  graphql.String,
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

// Introspection meta types are owned by graphql-go and added to every schema.
var introspectionTypes = map[string]graphql.Type{
	"__Schema":            graphql.SchemaType,
	"__Type":              graphql.TypeType,
	"__Field":             graphql.FieldType,
	"__InputValue":        graphql.InputValueType,
	"__EnumValue":         graphql.EnumValueType,
	"__TypeKind":          graphql.TypeKindEnumType,
	"__Directive":         graphql.DirectiveType,
	"__DirectiveLocation": graphql.DirectiveLocationEnumType,
}

var builtinDirectives = map[string]*graphql.Directive{
	"include":    graphql.IncludeDirective,
	"skip":       graphql.SkipDirective,
	"deprecated": graphql.DeprecatedDirective,
}

// typeRegistry holds every named type of a schema under construction. Field
// maps are filled after all named types exist so that references resolve in
// any order; the thunks handed to graphql-go read them lazily.
type typeRegistry struct {
	types map[string]graphql.Type

	objects    map[string]*graphql.Object
	interfaces map[string]*graphql.Interface

	fields      map[string]graphql.Fields
	inputFields map[string]graphql.InputObjectConfigFieldMap
	implements  map[string][]*graphql.Interface
}

func newTypeRegistry() *typeRegistry {
	r := &typeRegistry{
		types:       make(map[string]graphql.Type),
		objects:     make(map[string]*graphql.Object),
		interfaces:  make(map[string]*graphql.Interface),
		fields:      make(map[string]graphql.Fields),
		inputFields: make(map[string]graphql.InputObjectConfigFieldMap),
		implements:  make(map[string][]*graphql.Interface),
	}
	for name, scalar := range builtinScalars {
		r.types[name] = scalar
	}
	for name, t := range introspectionTypes {
		r.types[name] = t
	}
	return r
}

func (r *typeRegistry) get(name string) (graphql.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

func (r *typeRegistry) register(name string, t graphql.Type) {
	r.types[name] = t
	switch typed := t.(type) {
	case *graphql.Object:
		r.objects[name] = typed
	case *graphql.Interface:
		r.interfaces[name] = typed
	}
}

func isBuiltin(name string) bool {
	if _, ok := builtinScalars[name]; ok {
		return true
	}
	_, ok := introspectionTypes[name]
	return ok
}

// KindOf reports the introspection kind of a graphql-go type.
func KindOf(t graphql.Type) query.TypeKind {
	switch t.(type) {
	case *graphql.Scalar:
		return query.KindScalar
	case *graphql.Object:
		return query.KindObject
	case *graphql.Interface:
		return query.KindInterface
	case *graphql.Union:
		return query.KindUnion
	case *graphql.Enum:
		return query.KindEnum
	case *graphql.InputObject:
		return query.KindInputObject
	case *graphql.List:
		return query.KindList
	case *graphql.NonNull:
		return query.KindNonNull
	default:
		return ""
	}
}
