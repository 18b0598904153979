package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/platform-mesh/graphql-schema-provider/registry/query"
	"github.com/platform-mesh/graphql-schema-provider/schema"
)

type schemaSummary struct {
	Hash             string             `json:"hash" yaml:"hash"`
	QueryType        string             `json:"queryType" yaml:"queryType"`
	MutationType     string             `json:"mutationType,omitempty" yaml:"mutationType,omitempty"`
	SubscriptionType string             `json:"subscriptionType,omitempty" yaml:"subscriptionType,omitempty"`
	Types            []typeSummary      `json:"types" yaml:"types"`
	Directives       []directiveSummary `json:"directives" yaml:"directives"`
}

type typeSummary struct {
	Name string         `json:"name" yaml:"name"`
	Kind query.TypeKind `json:"kind" yaml:"kind"`
}

type directiveSummary struct {
	Name      string   `json:"name" yaml:"name"`
	Locations []string `json:"locations" yaml:"locations,flow"`
}

func summarize(s *schema.Schema) schemaSummary {
	summary := schemaSummary{
		Hash:       s.Hash(),
		QueryType:  s.QueryType().Name(),
		Types:      make([]typeSummary, 0, len(s.Types())),
		Directives: make([]directiveSummary, 0, len(s.Directives())),
	}
	if m := s.MutationType(); m != nil {
		summary.MutationType = m.Name()
	}
	if sub := s.SubscriptionType(); sub != nil {
		summary.SubscriptionType = sub.Name()
	}

	for _, t := range s.Types() {
		summary.Types = append(summary.Types, typeSummary{Name: t.Name, Kind: t.Kind})
	}
	for _, d := range s.Directives() {
		summary.Directives = append(summary.Directives, directiveSummary{Name: d.Name, Locations: d.Locations})
	}

	return summary
}

func writeSummary(w io.Writer, format string, summary schemaSummary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
