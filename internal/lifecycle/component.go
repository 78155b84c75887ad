package lifecycle

import "context"

// Component is the lifecycle interface implemented by every managed
// subsystem (fact store, audit trail, tracing provider, API server).
// The manager starts components in dependency order and stops them in
// reverse order.
type Component interface {
	// Start initializes and starts the component.
	// The provided context can signal shutdown or carry deadlines.
	// Must be idempotent.
	Start(ctx context.Context) error

	// Stop gracefully stops the component. In-flight work should
	// complete within the context deadline.
	// An error from Stop must not prevent other components from stopping.
	Stop(ctx context.Context) error

	// Name returns the component name used in logs, errors and
	// dependency declarations. Must be non-empty.
	Name() string
}
