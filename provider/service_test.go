package provider_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-mesh/graphql-schema-provider/provider"
)

func TestParseServiceSpecifier(t *testing.T) {
	tests := []struct {
		name      string
		specifier any
		expected  provider.ServiceReference
		expectErr bool
	}{
		{
			name:      "id_and_tag",
			specifier: "foo@bar",
			expected:  provider.ServiceReference{ID: "foo", Tag: "bar"},
		},
		{
			name:      "id_only_uses_default_tag",
			specifier: "foo",
			expected:  provider.ServiceReference{ID: "foo", Tag: provider.DefaultTag},
		},
		{
			name:      "whitespace_is_trimmed",
			specifier: " foo @ prod ",
			expected:  provider.ServiceReference{ID: "foo", Tag: "prod"},
		},
		{name: "empty_string", specifier: "", expectErr: true},
		{name: "blank_string", specifier: "   ", expectErr: true},
		{name: "missing_id", specifier: "@bar", expectErr: true},
		{name: "missing_tag", specifier: "foo@", expectErr: true},
		{name: "multiple_tags", specifier: "foo@bar@baz", expectErr: true},
		{name: "nil", specifier: nil, expectErr: true},
		{name: "number", specifier: 42, expectErr: true},
		{name: "object", specifier: map[string]any{"name": "foo"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := provider.ParseServiceSpecifier(tt.specifier)
			if tt.expectErr {
				var configErr *provider.ConfigurationError
				require.True(t, errors.As(err, &configErr), "expected ConfigurationError, got %v", err)
				assert.Equal(t, "client.service", configErr.Field)
				assert.Equal(t, provider.ServiceReference{}, ref)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestServiceReference_String(t *testing.T) {
	assert.Equal(t, "foo@current", provider.ServiceReference{ID: "foo", Tag: "current"}.String())
}
