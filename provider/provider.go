package provider

import (
	"context"

	"github.com/platform-mesh/graphql-schema-provider/schema"
)

// SchemaProvider is implemented by every schema backend.
type SchemaProvider interface {
	ResolveSchema(ctx context.Context) (*schema.Schema, error)
}

// ChangeHandler receives a schema after it changed remotely.
type ChangeHandler func(*schema.Schema)

// Unsubscribe stops the notifications of one subscription.
type Unsubscribe func()

// ChangeNotifier is an optional capability of providers that can observe
// schema changes.
type ChangeNotifier interface {
	OnSchemaChange(handler ChangeHandler) (Unsubscribe, error)
}

// Subscribe registers handler with p if p supports change notifications and
// fails with ErrNotImplemented otherwise.
func Subscribe(p SchemaProvider, handler ChangeHandler) (Unsubscribe, error) {
	notifier, ok := p.(ChangeNotifier)
	if !ok {
		return nil, &NotImplementedError{Operation: "OnSchemaChange"}
	}
	return notifier.OnSchemaChange(handler)
}
