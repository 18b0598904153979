package query

// MaxTypeRefDepth is the number of nested ofType levels requested for every
// type reference. Wrapper chains deeper than this (e.g. [[[String!]!]!]! has
// seven wrappers) come back truncated from the registry.
const MaxTypeRefDepth = 7

const (
	// GetSchemaByTagName is the operation name sent to the registry.
	GetSchemaByTagName = "GetSchemaByTag"

	fullTypeFragment   = "IntrospectionFullType"
	inputValueFragment = "IntrospectionInputValue"
	typeRefFragment    = "IntrospectionTypeRef"
)

// Variables are the parameters of GetSchemaByTag.
type Variables struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

// Map returns the variables in the shape expected by a registry request.
func (v Variables) Map() map[string]any {
	return map[string]any{
		"id":  v.ID,
		"tag": v.Tag,
	}
}

// TypeRefFields builds the kind/name/ofType selection nested depth times.
func TypeRefFields(depth int) []Selection {
	fields := Leaves("kind", "name")
	for range depth {
		fields = append(Leaves("kind", "name"), Selection{Name: "ofType", Fields: fields})
	}
	return fields
}

// GetSchemaByTag fetches the introspection of a service schema for a tag.
var GetSchemaByTag = Operation{
	Name: GetSchemaByTagName,
	Variables: []Variable{
		{Name: "id", Type: "ID!"},
		{Name: "tag", Type: "String!"},
	},
	Fields: []Selection{{
		Name:      "service",
		Arguments: []Argument{{Name: "id", Value: "$id"}},
		Fields: []Selection{{
			Name:      "schema",
			Arguments: []Argument{{Name: "tag", Value: "$tag"}},
			Fields: []Selection{
				{Name: "hash"},
				{
					Alias: "__schema",
					Name:  "introspection",
					Fields: []Selection{
						{Name: "queryType", Fields: Leaves("name")},
						{Name: "mutationType", Fields: Leaves("name")},
						{Name: "subscriptionType", Fields: Leaves("name")},
						{
							Name:      "types",
							Arguments: []Argument{{Name: "filter", Value: "{ includeAbstractTypes: true }"}},
							Spread:    fullTypeFragment,
						},
						{
							Name: "directives",
							Fields: append(Leaves("name", "description", "locations"),
								Selection{Name: "args", Spread: inputValueFragment}),
						},
					},
				},
			},
		}},
	}},
	Fragments: []Fragment{
		{
			Name: fullTypeFragment,
			On:   "IntrospectionType",
			Fields: []Selection{
				{Name: "kind"},
				{Name: "name"},
				{Name: "description"},
				{
					Name: "fields",
					Fields: []Selection{
						{Name: "name"},
						{Name: "description"},
						{Name: "args", Spread: inputValueFragment},
						{Name: "type", Spread: typeRefFragment},
						{Name: "isDeprecated"},
						{Name: "deprecationReason"},
					},
				},
				{Name: "inputFields", Spread: inputValueFragment},
				{Name: "interfaces", Spread: typeRefFragment},
				{
					Name:      "enumValues",
					Arguments: []Argument{{Name: "includeDeprecated", Value: "true"}},
					Fields:    Leaves("name", "description", "isDeprecated", "deprecationReason"),
				},
				{Name: "possibleTypes", Spread: typeRefFragment},
			},
		},
		{
			Name: inputValueFragment,
			On:   "IntrospectionInputValue",
			Fields: []Selection{
				{Name: "name"},
				{Name: "description"},
				{Name: "type", Spread: typeRefFragment},
				{Name: "defaultValue"},
			},
		},
		{
			Name:   typeRefFragment,
			On:     "IntrospectionType",
			Fields: TypeRefFields(MaxTypeRefDepth),
		},
	},
}

// GetSchemaByTagQuery is the rendered text of GetSchemaByTag.
var GetSchemaByTagQuery = GetSchemaByTag.String()
