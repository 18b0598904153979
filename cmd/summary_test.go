package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/platform-mesh/graphql-schema-provider/registry/query"
	"github.com/platform-mesh/graphql-schema-provider/schema"
)

func loadSchema(t *testing.T) *schema.Schema {
	t.Helper()

	data, err := os.ReadFile("../schema/testdata/introspection.json")
	require.NoError(t, err)

	var result query.IntrospectionResult
	require.NoError(t, json.Unmarshal(data, &result))

	s, err := schema.Build(&result, "5f1c2e")
	require.NoError(t, err)
	return s
}

func TestSummarize(t *testing.T) {
	summary := summarize(loadSchema(t))

	assert.Equal(t, "5f1c2e", summary.Hash)
	assert.Equal(t, "Query", summary.QueryType)
	assert.Equal(t, "Mutation", summary.MutationType)
	assert.Empty(t, summary.SubscriptionType)

	require.NotEmpty(t, summary.Types)
	assert.Equal(t, typeSummary{Name: "Query", Kind: query.KindObject}, summary.Types[0])
	assert.Contains(t, summary.Types, typeSummary{Name: "Episode", Kind: query.KindEnum})
	assert.Contains(t, summary.Types, typeSummary{Name: "SearchResult", Kind: query.KindUnion})

	names := make([]string, 0, len(summary.Directives))
	for _, d := range summary.Directives {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"include", "skip", "deprecated", "cacheControl"}, names)
}

func TestWriteSummary(t *testing.T) {
	summary := summarize(loadSchema(t))

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, "json", summary))

		var decoded schemaSummary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, summary, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, "yaml", summary))
		assert.Contains(t, buf.String(), "hash: 5f1c2e\n")

		var decoded schemaSummary
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, summary, decoded)
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, writeSummary(&buf, "xml", summary))
		assert.Empty(t, buf.String())
	})
}
