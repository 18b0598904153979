package registry

import "errors"

var (
	// ErrMissingAPIKey indicates a client was requested without credentials.
	ErrMissingAPIKey = errors.New("registry API key is required")

	// ErrInvalidEndpoint indicates an endpoint override that is not an absolute URL.
	ErrInvalidEndpoint = errors.New("invalid registry endpoint")

	// ErrUnexpectedStatus indicates a non-2xx response without a GraphQL body.
	ErrUnexpectedStatus = errors.New("unexpected registry response status")

	// ErrResponseTooLarge indicates a response body over the client's size limit.
	ErrResponseTooLarge = errors.New("registry response too large")
)
