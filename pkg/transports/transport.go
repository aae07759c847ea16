// Package transports defines the vendor-agnostic inbound boundary.
// A transport turns channel-specific webhooks or sockets into utterances;
// outbound replies go through the delivery collaborator, not back through
// the transport.
package transports

import (
	"context"

	"github.com/avaaz-ai/avaaz/pkg/message"
)

// Transport receives inbound user messages from one channel vendor.
// Implementations are responsible for their own network lifecycle.
type Transport interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Recv() <-chan message.Utterance
}

// ReadyReporter allows transports to expose readiness metadata (e.g.,
// webhook URLs). Optional; used for informational logging only.
type ReadyReporter interface {
	ReadyFields() map[string]any
}
