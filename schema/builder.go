package schema

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/platform-mesh/graphql-schema-provider/registry/query"
)

// DefaultDeprecationReason is used when a deprecated element carries no reason.
const DefaultDeprecationReason = "No longer supported"

// Build converts an introspection payload into a Schema. The payload is only
// read; nothing of it is retained apart from names and descriptions copied
// into the graphql-go definitions.
func Build(result *query.IntrospectionResult, hash string) (*Schema, error) {
	if result == nil {
		return nil, ErrEmptyIntrospection
	}

	b := &builder{registry: newTypeRegistry()}
	return b.build(result, hash)
}

type builder struct {
	registry *typeRegistry
	defaults []pendingDefault
}

func (b *builder) build(result *query.IntrospectionResult, hash string) (*Schema, error) {
	order, err := b.declareTypes(result.Types)
	if err != nil {
		return nil, err
	}

	if err := b.declareUnions(result.Types); err != nil {
		return nil, err
	}

	if err := b.defineFields(result.Types); err != nil {
		return nil, err
	}

	if err := b.resolveDefaults(); err != nil {
		return nil, err
	}

	directives, err := b.buildDirectives(result.Directives)
	if err != nil {
		return nil, err
	}

	config := graphql.SchemaConfig{
		Directives: directives,
	}
	if config.Query, err = b.rootType("query", result.QueryType, true); err != nil {
		return nil, err
	}
	if config.Mutation, err = b.rootType("mutation", result.MutationType, false); err != nil {
		return nil, err
	}
	if config.Subscription, err = b.rootType("subscription", result.SubscriptionType, false); err != nil {
		return nil, err
	}

	types := make([]NamedType, 0, len(order))
	for _, name := range order {
		t, _ := b.registry.get(name)
		types = append(types, NamedType{Name: name, Kind: KindOf(t), Type: t})
		if !strings.HasPrefix(name, "__") {
			config.Types = append(config.Types, t)
		}
	}

	gqlSchema, err := graphql.NewSchema(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	return &Schema{
		graphql:    &gqlSchema,
		hash:       hash,
		types:      types,
		directives: directives,
	}, nil
}

// declareTypes creates every named type except unions, whose members must
// already exist.
func (b *builder) declareTypes(types []query.FullType) ([]string, error) {
	order := make([]string, 0, len(types))
	seen := make(map[string]struct{}, len(types))

	for _, t := range types {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: %s type without name", ErrIncompleteTypeRef, t.Kind)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
		}
		seen[t.Name] = struct{}{}
		order = append(order, t.Name)

		if isBuiltin(t.Name) {
			continue
		}

		switch t.Kind {
		case query.KindScalar:
			b.registry.register(t.Name, newScalar(t))
		case query.KindEnum:
			b.registry.register(t.Name, newEnum(t))
		case query.KindObject:
			b.registry.register(t.Name, b.newObject(t))
		case query.KindInterface:
			b.registry.register(t.Name, b.newInterface(t))
		case query.KindInputObject:
			b.registry.register(t.Name, b.newInputObject(t))
		case query.KindUnion:
			// declared by declareUnions
		default:
			return nil, fmt.Errorf("%w: %s has kind %q", ErrUnsupportedKind, t.Name, t.Kind)
		}
	}

	return order, nil
}

func (b *builder) declareUnions(types []query.FullType) error {
	for _, t := range types {
		if t.Kind != query.KindUnion || isBuiltin(t.Name) {
			continue
		}

		members := make([]*graphql.Object, 0, len(t.PossibleTypes))
		for _, ref := range t.PossibleTypes {
			name := ref.NamedType()
			obj, ok := b.registry.objects[name]
			if !ok {
				return fmt.Errorf("%w: union %s member %q is not an object type", ErrInvalidTypeRef, t.Name, name)
			}
			members = append(members, obj)
		}

		b.registry.register(t.Name, graphql.NewUnion(graphql.UnionConfig{
			Name:        t.Name,
			Description: deref(t.Description),
			Types:       members,
			ResolveType: unresolvable,
		}))
	}
	return nil
}

// defineFields resolves the fields, arguments and interfaces of composite
// types now that all named types are declared.
func (b *builder) defineFields(types []query.FullType) error {
	for _, t := range types {
		if isBuiltin(t.Name) {
			continue
		}

		switch t.Kind {
		case query.KindObject, query.KindInterface:
			fields, err := b.outputFields(t)
			if err != nil {
				return err
			}
			b.registry.fields[t.Name] = fields

			if t.Kind == query.KindObject {
				interfaces, err := b.interfaceList(t)
				if err != nil {
					return err
				}
				b.registry.implements[t.Name] = interfaces
			}
		case query.KindInputObject:
			fields, err := b.inputObjectFields(t)
			if err != nil {
				return err
			}
			b.registry.inputFields[t.Name] = fields
		}
	}
	return nil
}

func (b *builder) outputFields(t query.FullType) (graphql.Fields, error) {
	fields := make(graphql.Fields, len(t.Fields))
	for _, f := range t.Fields {
		fieldType, err := b.registry.outputRef(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name, f.Name, err)
		}

		args, err := b.arguments(f.Args)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name, f.Name, err)
		}

		fields[f.Name] = &graphql.Field{
			Name:              f.Name,
			Type:              fieldType,
			Args:              args,
			Description:       deref(f.Description),
			DeprecationReason: deprecationReason(f.IsDeprecated, f.DeprecationReason),
		}
	}
	return fields, nil
}

func (b *builder) inputObjectFields(t query.FullType) (graphql.InputObjectConfigFieldMap, error) {
	fields := make(graphql.InputObjectConfigFieldMap, len(t.InputFields))
	for _, f := range t.InputFields {
		fieldType, err := b.registry.inputRef(f.Type)
		if err != nil {
			return nil, fmt.Errorf("input field %s.%s: %w", t.Name, f.Name, err)
		}
		field := &graphql.InputObjectFieldConfig{
			Type:        fieldType,
			Description: deref(f.Description),
		}
		b.deferDefault(&field.DefaultValue, f.DefaultValue, fieldType, t.Name+"."+f.Name)
		fields[f.Name] = field
	}
	return fields, nil
}

func (b *builder) arguments(values []query.InputValue) (graphql.FieldConfigArgument, error) {
	args := make(graphql.FieldConfigArgument, len(values))
	for _, v := range values {
		argType, err := b.registry.inputRef(v.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", v.Name, err)
		}
		arg := &graphql.ArgumentConfig{
			Type:        argType,
			Description: deref(v.Description),
		}
		b.deferDefault(&arg.DefaultValue, v.DefaultValue, argType, "argument "+v.Name)
		args[v.Name] = arg
	}
	return args, nil
}

func (b *builder) interfaceList(t query.FullType) ([]*graphql.Interface, error) {
	interfaces := make([]*graphql.Interface, 0, len(t.Interfaces))
	for _, ref := range t.Interfaces {
		name := ref.NamedType()
		iface, ok := b.registry.interfaces[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s implements %q which is not an interface", ErrInvalidTypeRef, t.Name, name)
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces, nil
}

func (b *builder) buildDirectives(directives []query.Directive) ([]*graphql.Directive, error) {
	result := make([]*graphql.Directive, 0, len(directives))
	for _, d := range directives {
		if builtin, ok := builtinDirectives[d.Name]; ok {
			result = append(result, builtin)
			continue
		}

		args, err := b.arguments(d.Args)
		if err != nil {
			return nil, fmt.Errorf("directive @%s: %w", d.Name, err)
		}
		// graphql-go copies argument defaults when the directive is created
		if err := b.resolveDefaults(); err != nil {
			return nil, fmt.Errorf("directive @%s: %w", d.Name, err)
		}
		result = append(result, graphql.NewDirective(graphql.DirectiveConfig{
			Name:        d.Name,
			Description: deref(d.Description),
			Locations:   d.Locations,
			Args:        args,
		}))
	}
	return result, nil
}

func (b *builder) rootType(operation string, ref *query.TypeName, required bool) (*graphql.Object, error) {
	if ref == nil || ref.Name == "" {
		if required {
			return nil, fmt.Errorf("%w: no %s type", ErrInvalidRootType, operation)
		}
		return nil, nil
	}
	obj, ok := b.registry.objects[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s type %q is not an object type", ErrInvalidRootType, operation, ref.Name)
	}
	return obj, nil
}

func (b *builder) newObject(t query.FullType) *graphql.Object {
	name := t.Name
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        name,
		Description: deref(t.Description),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.registry.fields[name]
		}),
		Interfaces: graphql.InterfacesThunk(func() []*graphql.Interface {
			return b.registry.implements[name]
		}),
	})
}

// newInterface drops the interfaces an interface implements itself; graphql-go
// has no notion of interface inheritance.
func (b *builder) newInterface(t query.FullType) *graphql.Interface {
	name := t.Name
	return graphql.NewInterface(graphql.InterfaceConfig{
		Name:        name,
		Description: deref(t.Description),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.registry.fields[name]
		}),
		ResolveType: unresolvable,
	})
}

func (b *builder) newInputObject(t query.FullType) *graphql.InputObject {
	name := t.Name
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        name,
		Description: deref(t.Description),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			return b.registry.inputFields[name]
		}),
	})
}

func newScalar(t query.FullType) *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:         t.Name,
		Description:  deref(t.Description),
		Serialize:    identity,
		ParseValue:   identity,
		ParseLiteral: untypedLiteral,
	})
}

func newEnum(t query.FullType) *graphql.Enum {
	values := make(graphql.EnumValueConfigMap, len(t.EnumValues))
	for _, v := range t.EnumValues {
		values[v.Name] = &graphql.EnumValueConfig{
			Value:             v.Name,
			Description:       deref(v.Description),
			DeprecationReason: deprecationReason(v.IsDeprecated, v.DeprecationReason),
		}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:        t.Name,
		Description: deref(t.Description),
		Values:      values,
	})
}

// unresolvable backs abstract types: a schema rebuilt from introspection has
// no runtime values to resolve.
func unresolvable(graphql.ResolveTypeParams) *graphql.Object {
	return nil
}

func identity(value any) any {
	return value
}

func deprecationReason(deprecated bool, reason *string) string {
	if !deprecated {
		return ""
	}
	if reason == nil || *reason == "" {
		return DefaultDeprecationReason
	}
	return *reason
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
