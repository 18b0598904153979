package server

import (
	"net/http"
	"sync"

	"github.com/graphql-go/handler"
	"github.com/platform-mesh/golang-commons/logger"

	"github.com/platform-mesh/graphql-schema-provider/common/config"
	"github.com/platform-mesh/graphql-schema-provider/schema"
)

type graphqlHandler struct {
	schema  *schema.Schema
	handler http.Handler
}

// Server serves the most recently resolved schema. Fields have no resolvers,
// so the endpoint is meant for introspection and tooling.
type Server struct {
	log *logger.Logger
	cfg config.Config

	mu      sync.RWMutex
	current *graphqlHandler
}

func New(log *logger.Logger, cfg config.Config) *Server {
	return &Server{log: log, cfg: cfg}
}

// SetSchema replaces the served schema. In-flight requests finish against
// the schema they started with.
func (s *Server) SetSchema(sch *schema.Schema) {
	h := &graphqlHandler{
		schema: sch,
		handler: handler.New(&handler.Config{
			Schema:     sch.GraphQL(),
			Pretty:     s.cfg.Serve.HandlerCfg.Pretty,
			Playground: s.cfg.Serve.HandlerCfg.Playground,
			GraphiQL:   s.cfg.Serve.HandlerCfg.GraphiQL,
		}),
	}

	s.mu.Lock()
	s.current = h
	s.mu.Unlock()

	s.log.Info().Str("hash", sch.Hash()).Msg("serving schema")
}

// Schema returns the served schema or nil before the first resolution.
func (s *Server) Schema() *schema.Schema {
	h := s.handler()
	if h == nil {
		return nil
	}
	return h.schema
}

func (s *Server) Ready() bool {
	return s.handler() != nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.handleCORS(w, r) {
		return
	}

	h := s.handler()
	if h == nil {
		http.Error(w, "schema not resolved yet", http.StatusServiceUnavailable)
		return
	}

	h.handler.ServeHTTP(w, r)
}

func (s *Server) handler() *graphqlHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) bool {
	if !s.cfg.Serve.Cors.Enabled {
		return false
	}

	w.Header().Set("Access-Control-Allow-Origin", s.cfg.Serve.Cors.AllowedOrigins)
	w.Header().Set("Access-Control-Allow-Headers", s.cfg.Serve.Cors.AllowedHeaders)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}
