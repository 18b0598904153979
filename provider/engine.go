package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/platform-mesh/golang-commons/logger"
	"golang.org/x/sync/singleflight"

	"github.com/platform-mesh/graphql-schema-provider/registry"
	"github.com/platform-mesh/graphql-schema-provider/registry/query"
	"github.com/platform-mesh/graphql-schema-provider/schema"
)

// ClientFactory creates the registry client used by an EngineProvider.
type ClientFactory func(credentials Credentials) (registry.Executor, error)

// schemaState is either unresolved or resolved; resolved is terminal.
type schemaState interface {
	isSchemaState()
}

type unresolved struct{}

type resolved struct {
	schema *schema.Schema
}

func (unresolved) isSchemaState() {}
func (resolved) isSchemaState()   {}

// EngineProvider resolves the schema of a service from the schema registry
// and keeps it for the lifetime of the provider. It is safe for concurrent
// use; concurrent first resolutions share a single registry request.
type EngineProvider struct {
	log       *logger.Logger
	config    Config
	newClient ClientFactory

	mu     sync.Mutex
	client registry.Executor
	state  schemaState

	inflight singleflight.Group
}

type EngineOption func(*EngineProvider)

// WithClientFactory replaces the default HTTP registry client.
func WithClientFactory(factory ClientFactory) EngineOption {
	return func(p *EngineProvider) {
		p.newClient = factory
	}
}

// NewEngineProvider creates a provider for the service named in cfg.
func NewEngineProvider(log *logger.Logger, cfg Config, opts ...EngineOption) *EngineProvider {
	p := &EngineProvider{
		log:    log,
		config: cfg,
		state:  unresolved{},
	}
	p.newClient = func(c Credentials) (registry.Executor, error) {
		return registry.NewClient(c.APIKey,
			registry.WithEndpoint(c.Endpoint),
			registry.WithLogger(log.ComponentLogger("registry")),
		)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ResolveSchema returns the cached schema, fetching it from the registry on
// first use. Failed attempts leave the provider unresolved so a later call
// retries. The registry call honors ctx; callers own the timeout.
func (p *EngineProvider) ResolveSchema(ctx context.Context) (*schema.Schema, error) {
	if s, ok := p.cached(); ok {
		return s, nil
	}

	v, err, shared := p.inflight.Do("resolve", func() (any, error) {
		if s, ok := p.cached(); ok {
			return s, nil
		}
		s, err := p.fetch(ctx)
		if err != nil {
			return nil, err
		}
		p.store(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.log.Debug().Msg("joined in-flight schema resolution")
	}
	return v.(*schema.Schema), nil
}

// OnSchemaChange is not supported: the registry is not polled for changes.
// The handler is neither retained nor called.
func (p *EngineProvider) OnSchemaChange(ChangeHandler) (Unsubscribe, error) {
	return nil, &NotImplementedError{
		Operation: "OnSchemaChange",
		Reason:    "polling of the schema registry is not implemented",
	}
}

func (p *EngineProvider) cached() (*schema.Schema, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.state.(resolved); ok {
		return r.schema, true
	}
	return nil, false
}

func (p *EngineProvider) store(s *schema.Schema) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = resolved{schema: s}
}

func (p *EngineProvider) fetch(ctx context.Context) (*schema.Schema, error) {
	service, ok := p.config.Client.Service.(string)
	if !ok {
		return nil, &ConfigurationError{
			Field:  serviceField,
			Value:  p.config.Client.Service,
			Reason: "service name not found for client",
		}
	}

	client, err := p.registryClient()
	if err != nil {
		return nil, err
	}

	ref, err := ParseServiceSpecifier(service)
	if err != nil {
		return nil, err
	}

	log := p.log.ChildLogger("service", ref.String())
	log.Info().Msg("fetching schema from registry")

	resp, err := client.Execute(ctx, registry.Request{
		Query:         query.GetSchemaByTagQuery,
		OperationName: query.GetSchemaByTagName,
		Variables:     query.Variables{ID: ref.ID, Tag: ref.Tag}.Map(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query schema registry: %w", err)
	}

	if len(resp.Errors) > 0 {
		queryErr := newRegistryQueryError(resp.Errors)
		log.Error().Err(queryErr).Int("errors", len(resp.Errors)).Msg("registry returned errors")
		return nil, queryErr
	}

	var data query.SchemaByTagData
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode registry response: %w", err)
		}
	}
	if data.Service == nil || data.Service.Schema == nil || data.Service.Schema.Introspection == nil {
		return nil, &SchemaNotFoundError{ServiceID: ref.ID, Tag: ref.Tag}
	}

	payload := data.Service.Schema
	s, err := schema.Build(payload.Introspection, payload.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema for service %s: %w", ref.ID, err)
	}

	log.Info().
		Str("hash", s.Hash()).
		Int("types", len(s.Types())).
		Int("directives", len(s.Directives())).
		Msg("schema resolved")

	return s, nil
}

// registryClient returns the provider's client, creating it on first use.
// Credentials are only required while no client exists.
func (p *EngineProvider) registryClient() (registry.Executor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	engine := p.config.Engine
	if engine == nil || engine.EngineAPIKey == "" {
		return nil, &AuthenticationError{Credential: APIKeyCredential}
	}

	client, err := p.newClient(Credentials{APIKey: engine.EngineAPIKey, Endpoint: engine.Endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}
	p.client = client
	return client, nil
}
