// Package delivery defines the outbound message collaborator. Sends are
// fire-and-forget from the pipeline's perspective: failures are logged
// and observed, never retried by the pipeline.
package delivery

import "context"

// Delivery sends a reply to a channel address. Audio is optional; a nil
// slice means text-only.
type Delivery interface {
	Name() string
	Send(ctx context.Context, channelID, text string, audio []byte) error
}
