package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the schema registry used when no override is configured.
	DefaultEndpoint = "https://engine-graphql.apollographql.com/api/graphql"

	DefaultClientName    = "graphql-schema-provider"
	DefaultClientVersion = "dev"

	// DefaultMaxResponseBytes bounds the registry response body.
	DefaultMaxResponseBytes int64 = 64 << 20
)

// Executor runs a GraphQL operation against the registry.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// Request is a single GraphQL operation.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response carries the raw data section and the GraphQL errors reported by
// the registry. A response with errors is not a transport failure.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []ResponseError `json:"errors,omitempty"`
}

type ResponseError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Client is an authenticated HTTP client for the schema registry.
type Client struct {
	endpoint         string
	httpClient       *http.Client
	log              *logger.Logger
	maxResponseBytes int64
}

type options struct {
	endpoint         string
	clientName       string
	clientVersion    string
	httpClient       *http.Client
	log              *logger.Logger
	maxResponseBytes int64
}

// Option configures a Client.
type Option func(*options)

// WithEndpoint overrides DefaultEndpoint. Empty values are ignored.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets the base HTTP client; its transport is wrapped, not replaced.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithClientIdentity(name, version string) Option {
	return func(o *options) {
		o.clientName = name
		o.clientVersion = version
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxResponseBytes overrides DefaultMaxResponseBytes. Values below one are ignored.
func WithMaxResponseBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxResponseBytes = n
		}
	}
}

// NewClient creates a registry client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	o := &options{
		endpoint:         DefaultEndpoint,
		clientName:       DefaultClientName,
		clientVersion:    DefaultClientVersion,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		maxResponseBytes: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(o)
	}

	u, err := url.Parse(o.endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, o.endpoint)
	}

	if o.log == nil {
		o.log = logger.NewFromZerolog(zerolog.Nop())
	}

	base := *o.httpClient
	base.Transport = otelhttp.NewTransport(
		newAuthRoundTripper(apiKey, o.clientName, o.clientVersion, o.httpClient.Transport),
	)

	return &Client{
		endpoint:         u.String(),
		httpClient:       &base,
		log:              o.log,
		maxResponseBytes: o.maxResponseBytes,
	}, nil
}

// Endpoint returns the registry URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute sends req to the registry. GraphQL errors are returned inside the
// Response; only transport and decoding failures are returned as error.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	ctx, span := otel.Tracer("").Start(ctx, "registry.Execute", trace.WithAttributes(
		attribute.String("operation", req.OperationName),
		attribute.String("endpoint", c.endpoint),
	))
	defer span.End()

	start := time.Now()
	resp, err := c.execute(ctx, req)

	requestsTotal.WithLabelValues(req.OperationName, outcomeOf(resp, err)).Inc()
	requestDuration.WithLabelValues(req.OperationName).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(resp.Errors) > 0 {
		span.SetStatus(codes.Error, "registry returned GraphQL errors")
	}
	return resp, nil
}

func (c *Client) execute(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode registry request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create registry request")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)

	c.log.Debug().
		Str("endpoint", c.endpoint).
		Str("operation", req.OperationName).
		Str("requestId", requestID).
		Msg("sending registry request")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "registry request failed")
	}
	defer httpResp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry response")
	}
	if int64(len(data)) > c.maxResponseBytes {
		return nil, errors.Wrapf(ErrResponseTooLarge, "status %d, limit %d bytes", httpResp.StatusCode, c.maxResponseBytes)
	}

	var resp Response
	decodeErr := json.Unmarshal(data, &resp)
	graphqlBody := decodeErr == nil && (len(resp.Data) > 0 || len(resp.Errors) > 0)

	if httpResp.StatusCode >= http.StatusMultipleChoices && !graphqlBody {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, httpResp.Status)
	}
	if decodeErr != nil {
		return nil, errors.Wrap(decodeErr, "failed to decode registry response")
	}

	c.log.Debug().
		Str("requestId", requestID).
		Int("status", httpResp.StatusCode).
		Int("errors", len(resp.Errors)).
		Msg("received registry response")

	return &resp, nil
}
