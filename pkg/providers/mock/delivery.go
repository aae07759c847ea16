package mock

import (
	"context"
	"sync"
)

// Sent is one captured outbound send.
type Sent struct {
	ChannelID string
	Text      string
	Audio     []byte
}

// Delivery captures outbound sends for inspection.
type Delivery struct {
	Err error

	mu   sync.Mutex
	sent []Sent
}

func (d *Delivery) Name() string { return "mock_delivery" }

func (d *Delivery) Send(_ context.Context, channelID, text string, audio []byte) error {
	d.mu.Lock()
	d.sent = append(d.sent, Sent{ChannelID: channelID, Text: text, Audio: audio})
	d.mu.Unlock()
	return d.Err
}

// Sent returns a snapshot of captured sends.
func (d *Delivery) Sent() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Sent, len(d.sent))
	copy(out, d.sent)
	return out
}
