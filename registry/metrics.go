package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess        = "success"
	outcomeGraphQLErrors  = "graphql_errors"
	outcomeTransportError = "transport_error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_registry_requests_total",
		Help: "Number of requests sent to the schema registry, by operation and outcome.",
	}, []string{"operation", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schema_registry_request_duration_seconds",
		Help:    "Latency of schema registry requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func outcomeOf(resp *Response, err error) string {
	switch {
	case err != nil:
		return outcomeTransportError
	case len(resp.Errors) > 0:
		return outcomeGraphQLErrors
	default:
		return outcomeSuccess
	}
}
