package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/platform-mesh/golang-commons/logger"
	"github.com/platform-mesh/golang-commons/sentry"

	"github.com/platform-mesh/graphql-schema-provider/provider"
)

// ProviderFactory creates a provider from the current configuration. Each
// reload uses a fresh provider, since a provider never re-resolves.
type ProviderFactory func() (provider.SchemaProvider, error)

// Reloader resolves schemas into a Server. File events only queue a reload;
// Run performs them one at a time, so the schema of the latest configuration
// is the one served last. A failed reload keeps the previous schema.
type Reloader struct {
	log         *logger.Logger
	server      *Server
	newProvider ProviderFactory
	timeout     time.Duration

	mu       sync.Mutex
	requests chan string
}

func NewReloader(log *logger.Logger, server *Server, newProvider ProviderFactory, timeout time.Duration) *Reloader {
	return &Reloader{
		log:         log,
		server:      server,
		newProvider: newProvider,
		timeout:     timeout,
		requests:    make(chan string, 1),
	}
}

// Run processes queued reloads until ctx is done. In-flight reloads are
// canceled with ctx.
func (r *Reloader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-r.requests:
			if err := r.Reload(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.log.Error().Err(err).Str("path", path).Msg("failed to reload schema, keeping the previous one")
				sentry.CaptureError(err, sentry.Tags{"filepath": path})
			}
		}
	}
}

// Reload creates a provider, resolves its schema and hands it to the server.
// Concurrent calls are serialized.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.newProvider()
	if err != nil {
		return fmt.Errorf("failed to create schema provider: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	s, err := p.ResolveSchema(ctx)
	if err != nil {
		return err
	}

	if current := r.server.Schema(); current != nil && current.Hash() != "" && current.Hash() == s.Hash() {
		r.log.Info().Str("hash", s.Hash()).Msg("schema unchanged")
		return nil
	}

	r.server.SetSchema(s)
	return nil
}

// OnFileChanged queues a reload. A reload that is already queued covers the
// change, because the provider reads the configuration when it is created.
func (r *Reloader) OnFileChanged(path string) {
	select {
	case r.requests <- path:
		r.log.Info().Str("path", path).Msg("configuration changed, reload queued")
	default:
		r.log.Debug().Str("path", path).Msg("configuration changed, reload already queued")
	}
}

func (r *Reloader) OnFileDeleted(path string) {
	r.log.Warn().Str("path", path).Msg("configuration file removed, keeping the current schema")
}
