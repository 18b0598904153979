package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/platform-mesh/graphql-schema-provider/provider"
	"github.com/platform-mesh/graphql-schema-provider/provider/mocks"
	"github.com/platform-mesh/graphql-schema-provider/registry"
	"github.com/platform-mesh/graphql-schema-provider/registry/query"
	"github.com/platform-mesh/graphql-schema-provider/schema"
)

func loadResponse(t *testing.T) *registry.Response {
	t.Helper()

	data, err := os.ReadFile("testdata/get_schema_by_tag.json")
	require.NoError(t, err)

	var resp registry.Response
	require.NoError(t, json.Unmarshal(data, &resp))
	return &resp
}

func validConfig(service any) provider.Config {
	return provider.Config{
		Engine: &provider.EngineConfig{EngineAPIKey: "service:foo:key", Endpoint: "http://localhost:4000/graphql"},
		Client: provider.ClientConfig{Service: service},
	}
}

// countingFactory hands out client and counts how often it was asked to.
func countingFactory(client registry.Executor, calls *atomic.Int32, creds *provider.Credentials) provider.ClientFactory {
	return func(c provider.Credentials) (registry.Executor, error) {
		calls.Add(1)
		if creds != nil {
			*creds = c
		}
		return client, nil
	}
}

func schemaRequest(id, tag string) any {
	return mock.MatchedBy(func(req registry.Request) bool {
		return req.OperationName == query.GetSchemaByTagName &&
			req.Query == query.GetSchemaByTagQuery &&
			req.Variables["id"] == id &&
			req.Variables["tag"] == tag
	})
}

func TestEngineProvider_ResolveSchema_ConfigurationError(t *testing.T) {
	tests := []struct {
		name    string
		service any
	}{
		{name: "missing_service", service: nil},
		{name: "numeric_service", service: 42},
		{name: "object_service", service: map[string]any{"name": "foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockExecutor(t)
			var factoryCalls atomic.Int32

			p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig(tt.service),
				provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

			s, err := p.ResolveSchema(context.Background())
			assert.Nil(t, s)

			var configErr *provider.ConfigurationError
			require.True(t, errors.As(err, &configErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.service, configErr.Value)
			assert.Zero(t, factoryCalls.Load())
			client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestEngineProvider_ResolveSchema_AuthenticationError(t *testing.T) {
	tests := []struct {
		name   string
		engine *provider.EngineConfig
	}{
		{name: "no_engine_section", engine: nil},
		{name: "empty_api_key", engine: &provider.EngineConfig{Endpoint: "http://localhost:4000/graphql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockExecutor(t)
			var factoryCalls atomic.Int32

			cfg := provider.Config{Engine: tt.engine, Client: provider.ClientConfig{Service: "foo@prod"}}
			p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, cfg,
				provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

			s, err := p.ResolveSchema(context.Background())
			assert.Nil(t, s)

			var authErr *provider.AuthenticationError
			require.True(t, errors.As(err, &authErr), "expected AuthenticationError, got %v", err)
			assert.Equal(t, provider.APIKeyCredential, authErr.Credential)
			assert.Contains(t, err.Error(), "ENGINE_API_KEY")
			assert.Zero(t, factoryCalls.Load())
		})
	}
}

func TestEngineProvider_ResolveSchema_MalformedSpecifier(t *testing.T) {
	client := mocks.NewMockExecutor(t)
	var factoryCalls atomic.Int32

	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo@bar@baz"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	_, err := p.ResolveSchema(context.Background())

	var configErr *provider.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "foo@bar@baz", configErr.Value)
	client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestEngineProvider_ResolveSchema_CachesSchema(t *testing.T) {
	client := mocks.NewMockExecutor(t)
	client.EXPECT().Execute(mock.Anything, schemaRequest("foo", "prod")).Return(loadResponse(t), nil).Once()

	var factoryCalls atomic.Int32
	var creds provider.Credentials
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo@prod"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, &creds)))

	first, err := p.ResolveSchema(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "5f1c2e", first.Hash())
	assert.Equal(t, "Query", first.QueryType().Name())

	for range 3 {
		again, err := p.ResolveSchema(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, again)
	}

	assert.Equal(t, int32(1), factoryCalls.Load())
	assert.Equal(t, provider.Credentials{APIKey: "service:foo:key", Endpoint: "http://localhost:4000/graphql"}, creds)
}

func TestEngineProvider_ResolveSchema_DefaultTag(t *testing.T) {
	client := mocks.NewMockExecutor(t)
	client.EXPECT().Execute(mock.Anything, schemaRequest("foo", provider.DefaultTag)).Return(loadResponse(t), nil).Once()

	var factoryCalls atomic.Int32
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	_, err := p.ResolveSchema(context.Background())
	require.NoError(t, err)
}

func TestEngineProvider_ResolveSchema_RegistryQueryError(t *testing.T) {
	client := mocks.NewMockExecutor(t)
	client.EXPECT().Execute(mock.Anything, mock.Anything).Return(&registry.Response{
		Errors: []registry.ResponseError{{Message: "A"}, {Message: "B"}},
	}, nil).Once()
	client.EXPECT().Execute(mock.Anything, mock.Anything).Return(loadResponse(t), nil).Once()

	var factoryCalls atomic.Int32
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	s, err := p.ResolveSchema(context.Background())
	assert.Nil(t, s)

	var queryErr *provider.RegistryQueryError
	require.True(t, errors.As(err, &queryErr), "expected RegistryQueryError, got %v", err)
	assert.Equal(t, "A\nB", queryErr.Error())
	assert.Equal(t, []string{"A", "B"}, queryErr.Messages())

	// a failed attempt does not poison the provider
	s, err = p.ResolveSchema(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, int32(1), factoryCalls.Load())
}

func TestEngineProvider_ResolveSchema_SchemaNotFound(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "schema_null", data: `{"service":{"schema":null}}`},
		{name: "service_null", data: `{"service":null}`},
		{name: "data_null", data: `null`},
		{name: "introspection_missing", data: `{"service":{"schema":{"hash":"abc"}}}`},
		{name: "no_data", data: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockExecutor(t)
			client.EXPECT().Execute(mock.Anything, mock.Anything).Return(&registry.Response{
				Data: json.RawMessage(tt.data),
			}, nil).Once()

			var factoryCalls atomic.Int32
			p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo@staging"),
				provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

			s, err := p.ResolveSchema(context.Background())
			assert.Nil(t, s)

			var notFound *provider.SchemaNotFoundError
			require.True(t, errors.As(err, &notFound), "expected SchemaNotFoundError, got %v", err)
			assert.Equal(t, "foo", notFound.ServiceID)
			assert.Equal(t, "staging", notFound.Tag)
			assert.Contains(t, err.Error(), "foo")
		})
	}
}

func TestEngineProvider_ResolveSchema_TransportError(t *testing.T) {
	transportErr := errors.New("connection refused")

	client := mocks.NewMockExecutor(t)
	client.EXPECT().Execute(mock.Anything, mock.Anything).Return(nil, transportErr).Once()

	var factoryCalls atomic.Int32
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	s, err := p.ResolveSchema(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, transportErr)
}

func TestEngineProvider_ResolveSchema_InvalidIntrospection(t *testing.T) {
	client := mocks.NewMockExecutor(t)
	client.EXPECT().Execute(mock.Anything, mock.Anything).Return(&registry.Response{
		Data: json.RawMessage(`{"service":{"schema":{"hash":"abc","__schema":{"types":[]}}}}`),
	}, nil).Once()

	var factoryCalls atomic.Int32
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	_, err := p.ResolveSchema(context.Background())
	assert.ErrorIs(t, err, schema.ErrInvalidRootType)
}

func TestEngineProvider_ResolveSchema_ClientFactoryError(t *testing.T) {
	factoryErr := errors.New("bad endpoint")

	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(func(provider.Credentials) (registry.Executor, error) {
			return nil, factoryErr
		}))

	_, err := p.ResolveSchema(context.Background())
	assert.ErrorIs(t, err, factoryErr)
}

func TestEngineProvider_ResolveSchema_Concurrent(t *testing.T) {
	release := make(chan struct{})
	resp := loadResponse(t)

	client := mocks.NewMockExecutor(t)
	client.EXPECT().Execute(mock.Anything, mock.Anything).RunAndReturn(
		func(context.Context, registry.Request) (*registry.Response, error) {
			<-release
			return resp, nil
		}).Once()

	var factoryCalls atomic.Int32
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	const callers = 8
	results := make([]*schema.Schema, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = p.ResolveSchema(context.Background())
		}()
	}
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), factoryCalls.Load())
}

func TestEngineProvider_OnSchemaChange(t *testing.T) {
	client := mocks.NewMockExecutor(t)
	var factoryCalls atomic.Int32
	p := provider.NewEngineProvider(testlogger.New().HideLogOutput().Logger, validConfig("foo"),
		provider.WithClientFactory(countingFactory(client, &factoryCalls, nil)))

	called := false
	handler := func(*schema.Schema) { called = true }

	unsubscribe, err := p.OnSchemaChange(handler)
	assert.Nil(t, unsubscribe)
	assert.ErrorIs(t, err, provider.ErrNotImplemented)

	var notImplemented *provider.NotImplementedError
	require.True(t, errors.As(err, &notImplemented))
	assert.Equal(t, "OnSchemaChange", notImplemented.Operation)

	unsubscribe, err = provider.Subscribe(p, handler)
	assert.Nil(t, unsubscribe)
	assert.ErrorIs(t, err, provider.ErrNotImplemented)

	assert.False(t, called)
	assert.Zero(t, factoryCalls.Load())
}

type resolveOnly struct{}

func (resolveOnly) ResolveSchema(context.Context) (*schema.Schema, error) {
	return nil, nil
}

func TestSubscribe_UnsupportedProvider(t *testing.T) {
	unsubscribe, err := provider.Subscribe(resolveOnly{}, func(*schema.Schema) {})
	assert.Nil(t, unsubscribe)
	assert.ErrorIs(t, err, provider.ErrNotImplemented)
}
