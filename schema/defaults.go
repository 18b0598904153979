package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

const nullValueKind = "NullValue"

// pendingDefault is a default value literal waiting for the fields of the
// input objects it may reference.
type pendingDefault struct {
	target  *any
	literal string
	typ     graphql.Input
	owner   string
}

func (b *builder) deferDefault(target *any, literal *string, typ graphql.Input, owner string) {
	if literal == nil {
		return
	}
	b.defaults = append(b.defaults, pendingDefault{target: target, literal: *literal, typ: typ, owner: owner})
}

// resolveDefaults converts every deferred literal against its input type.
// Literals that do not match their type leave the default unset.
func (b *builder) resolveDefaults() error {
	pending := b.defaults
	b.defaults = nil

	for _, d := range pending {
		value, err := b.defaultValue(d.literal, d.typ)
		if err != nil {
			return fmt.Errorf("%s: %w", d.owner, err)
		}
		*d.target = value
	}
	return nil
}

func (b *builder) defaultValue(literal string, typ graphql.Input) (any, error) {
	if strings.TrimSpace(literal) == "null" {
		return nil, nil
	}

	valueAST, err := parser.ParseValue(parser.ParseParams{Source: literal})
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidDefaultValue, literal, err)
	}

	value, _ := b.coerceLiteral(valueAST, typ)
	return value, nil
}

// coerceLiteral converts a value literal into the Go value graphql-go uses for
// typ: enum names, []any for lists, map[string]any for input objects and the
// scalar's parsed literal otherwise. It reports false on a type mismatch.
func (b *builder) coerceLiteral(valueAST ast.Value, typ graphql.Type) (any, bool) {
	if nonNull, ok := typ.(*graphql.NonNull); ok {
		if valueAST.GetKind() == nullValueKind {
			return nil, false
		}
		return b.coerceLiteral(valueAST, nonNull.OfType)
	}
	if valueAST.GetKind() == nullValueKind {
		return nil, true
	}

	switch t := typ.(type) {
	case *graphql.List:
		list, ok := valueAST.(*ast.ListValue)
		if !ok {
			item, ok := b.coerceLiteral(valueAST, t.OfType)
			if !ok {
				return nil, false
			}
			return []any{item}, true
		}
		items := make([]any, 0, len(list.Values))
		for _, v := range list.Values {
			item, ok := b.coerceLiteral(v, t.OfType)
			if !ok {
				return nil, false
			}
			items = append(items, item)
		}
		return items, true

	case *graphql.InputObject:
		object, ok := valueAST.(*ast.ObjectValue)
		if !ok {
			return nil, false
		}
		// the registry is read instead of t.Fields(), which would freeze the
		// thunk before every input object is defined
		defs := b.registry.inputFields[t.Name()]
		result := make(map[string]any, len(object.Fields))
		for _, f := range object.Fields {
			def, ok := defs[f.Name.Value]
			if !ok {
				return nil, false
			}
			value, ok := b.coerceLiteral(f.Value, def.Type)
			if !ok {
				return nil, false
			}
			result[f.Name.Value] = value
		}
		return result, true

	case *graphql.Enum:
		enum, ok := valueAST.(*ast.EnumValue)
		if !ok {
			return nil, false
		}
		for _, v := range t.Values() {
			if v.Name == enum.Value {
				return v.Value, true
			}
		}
		return nil, false

	case *graphql.Scalar:
		value := t.ParseLiteral(valueAST)
		return value, value != nil
	}

	return nil, false
}

// untypedLiteral converts a literal without type information. It backs the
// ParseLiteral of custom scalars, whose shape the registry does not describe.
func untypedLiteral(valueAST ast.Value) any {
	switch v := valueAST.(type) {
	case *ast.IntValue:
		if i, err := strconv.Atoi(v.Value); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case *ast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.ListValue:
		items := make([]any, 0, len(v.Values))
		for _, item := range v.Values {
			items = append(items, untypedLiteral(item))
		}
		return items
	case *ast.ObjectValue:
		fields := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			fields[f.Name.Value] = untypedLiteral(f.Value)
		}
		return fields
	default:
		return nil
	}
}
