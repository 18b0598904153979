package query

// TypeKind is the __TypeKind of an introspected type.
type TypeKind string

const (
	KindScalar      TypeKind = "SCALAR"
	KindObject      TypeKind = "OBJECT"
	KindInterface   TypeKind = "INTERFACE"
	KindUnion       TypeKind = "UNION"
	KindEnum        TypeKind = "ENUM"
	KindInputObject TypeKind = "INPUT_OBJECT"
	KindList        TypeKind = "LIST"
	KindNonNull     TypeKind = "NON_NULL"
)

// SchemaByTagData is the data section of a GetSchemaByTag response.
type SchemaByTagData struct {
	Service *ServicePayload `json:"service"`
}

type ServicePayload struct {
	Schema *SchemaPayload `json:"schema"`
}

type SchemaPayload struct {
	Hash          string               `json:"hash"`
	Introspection *IntrospectionResult `json:"__schema"`
}

// IntrospectionResult mirrors the standard __schema introspection payload.
type IntrospectionResult struct {
	QueryType        *TypeName   `json:"queryType"`
	MutationType     *TypeName   `json:"mutationType"`
	SubscriptionType *TypeName   `json:"subscriptionType"`
	Types            []FullType  `json:"types"`
	Directives       []Directive `json:"directives"`
}

type TypeName struct {
	Name string `json:"name"`
}

type FullType struct {
	Kind          TypeKind     `json:"kind"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Field is an introspected field of an object or interface.
type Field struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

type InputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// TypeRef is a possibly wrapped reference to a named type.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type Directive struct {
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Locations   []string     `json:"locations"`
	Args        []InputValue `json:"args"`
}

// IsWrapper reports whether the reference is a LIST or NON_NULL wrapper.
func (t TypeRef) IsWrapper() bool {
	return t.Kind == KindList || t.Kind == KindNonNull
}

// NamedType returns the name of the type at the end of the wrapper chain, or
// "" when the chain is truncated.
func (t TypeRef) NamedType() string {
	ref := &t
	for ref != nil && ref.IsWrapper() {
		ref = ref.OfType
	}
	if ref == nil || ref.Name == nil {
		return ""
	}
	return *ref.Name
}
