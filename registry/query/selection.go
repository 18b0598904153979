package query

import (
	"strings"
)

const indent = "  "

// Argument is a single argument passed to a selected field. Value is a GraphQL
// literal or variable reference, rendered as-is.
type Argument struct {
	Name  string
	Value string
}

// Selection describes one selected field and its sub-selection.
type Selection struct {
	Name      string
	Alias     string
	Arguments []Argument
	Fields    []Selection
	// Spread names a fragment whose selection is used for this field.
	Spread string
}

// Fragment is a named, reusable selection on a registry type.
type Fragment struct {
	Name   string
	On     string
	Fields []Selection
}

// Variable is an operation variable definition, e.g. {id, ID!}.
type Variable struct {
	Name string
	Type string
}

// Operation is a complete query document: one named query plus the fragments
// it depends on.
type Operation struct {
	Name      string
	Variables []Variable
	Fields    []Selection
	Fragments []Fragment
}

// String renders the operation as GraphQL query text. Rendering is
// deterministic so the text can be compared and cached.
func (o Operation) String() string {
	var b strings.Builder

	b.WriteString("query ")
	b.WriteString(o.Name)
	if len(o.Variables) > 0 {
		vars := make([]string, 0, len(o.Variables))
		for _, v := range o.Variables {
			vars = append(vars, "$"+v.Name+": "+v.Type)
		}
		b.WriteString("(")
		b.WriteString(strings.Join(vars, ", "))
		b.WriteString(")")
	}
	writeSelection(&b, o.Fields, 0)

	for _, f := range o.Fragments {
		b.WriteString("\n\nfragment ")
		b.WriteString(f.Name)
		b.WriteString(" on ")
		b.WriteString(f.On)
		writeSelection(&b, f.Fields, 0)
	}
	b.WriteString("\n")

	return b.String()
}

func writeSelection(b *strings.Builder, fields []Selection, depth int) {
	b.WriteString(" {\n")
	for _, f := range fields {
		writeField(b, f, depth+1)
	}
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteString("}")
}

func writeField(b *strings.Builder, f Selection, depth int) {
	b.WriteString(strings.Repeat(indent, depth))
	if f.Alias != "" {
		b.WriteString(f.Alias)
		b.WriteString(": ")
	}
	b.WriteString(f.Name)

	if len(f.Arguments) > 0 {
		args := make([]string, 0, len(f.Arguments))
		for _, a := range f.Arguments {
			args = append(args, a.Name+": "+a.Value)
		}
		b.WriteString("(")
		b.WriteString(strings.Join(args, ", "))
		b.WriteString(")")
	}

	switch {
	case f.Spread != "":
		b.WriteString(" {\n")
		b.WriteString(strings.Repeat(indent, depth+1))
		b.WriteString("...")
		b.WriteString(f.Spread)
		b.WriteString("\n")
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteString("}")
	case len(f.Fields) > 0:
		writeSelection(b, f.Fields, depth)
	}
	b.WriteString("\n")
}

// Leaves is a shorthand for a list of scalar field selections.
func Leaves(names ...string) []Selection {
	fields := make([]Selection, 0, len(names))
	for _, n := range names {
		fields = append(fields, Selection{Name: n})
	}
	return fields
}
