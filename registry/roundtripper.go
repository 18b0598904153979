package registry

import (
	"net/http"
)

const (
	apiKeyHeader        = "x-api-key"
	clientNameHeader    = "apollo-client-name"
	clientVersionHeader = "apollo-client-version"
	requestIDHeader     = "x-request-id"
)

// authRoundTripper authenticates every request against the registry and
// identifies the calling client.
type authRoundTripper struct {
	apiKey        string
	clientName    string
	clientVersion string
	next          http.RoundTripper
}

func newAuthRoundTripper(apiKey, clientName, clientVersion string, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &authRoundTripper{
		apiKey:        apiKey,
		clientName:    clientName,
		clientVersion: clientVersion,
		next:          next,
	}
}

func (rt *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, rt.apiKey)
	if rt.clientName != "" {
		req.Header.Set(clientNameHeader, rt.clientName)
	}
	if rt.clientVersion != "" {
		req.Header.Set(clientVersionHeader, rt.clientVersion)
	}
	return rt.next.RoundTrip(req)
}
