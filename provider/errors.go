package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/platform-mesh/graphql-schema-provider/registry"
)

// ErrNotImplemented is matched by every NotImplementedError.
var ErrNotImplemented = errors.New("not implemented")

// ConfigurationError reports a missing or malformed configuration value.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s, found %#v", e.Field, e.Reason, e.Value)
}

// AuthenticationError reports a missing credential.
type AuthenticationError struct {
	Credential string
}

func (e *AuthenticationError) Error() string {
	return e.Credential + " not found"
}

// RegistryQueryError aggregates the GraphQL errors returned by the registry.
// Its message is the newline-joined list of error messages.
type RegistryQueryError struct {
	errs *multierror.Error
}

func newRegistryQueryError(responseErrors []registry.ResponseError) *RegistryQueryError {
	errs := &multierror.Error{ErrorFormat: joinMessages}
	for _, e := range responseErrors {
		errs = multierror.Append(errs, errors.New(e.Message))
	}
	return &RegistryQueryError{errs: errs}
}

func (e *RegistryQueryError) Error() string {
	return e.errs.Error()
}

// Messages returns the individual messages reported by the registry.
func (e *RegistryQueryError) Messages() []string {
	messages := make([]string, 0, e.errs.Len())
	for _, err := range e.errs.WrappedErrors() {
		messages = append(messages, err.Error())
	}
	return messages
}

func (e *RegistryQueryError) Unwrap() error {
	return e.errs.ErrorOrNil()
}

func joinMessages(errs []error) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "\n")
}

// SchemaNotFoundError reports a registry response without a schema for the
// requested service and tag.
type SchemaNotFoundError struct {
	ServiceID string
	Tag       string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("unable to get schema from the registry for service %s (tag %q)", e.ServiceID, e.Tag)
}

// NotImplementedError reports an operation a provider does not support.
type NotImplementedError struct {
	Operation string
	Reason    string
}

func (e *NotImplementedError) Error() string {
	if e.Reason == "" {
		return e.Operation + ": " + ErrNotImplemented.Error()
	}
	return e.Operation + ": " + e.Reason
}

func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}
