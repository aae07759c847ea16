// Package mock provides an in-memory transport for local testing and
// integration. It implements transports.Transport without any network
// dependency.
package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/avaaz-ai/avaaz/pkg/message"
	"github.com/avaaz-ai/avaaz/pkg/transports"
)

type Transport struct {
	recvCh chan message.Utterance
	closed atomic.Bool
	mu     sync.Mutex
}

func New() *Transport {
	return &Transport{
		recvCh: make(chan message.Utterance, 256),
	}
}

func (t *Transport) Name() string { return "mock" }

func (t *Transport) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		<-ctx.Done()
		_ = t.Stop()
	}()
	return nil
}

func (t *Transport) Stop() error {
	if t.closed.CompareAndSwap(false, true) {
		t.mu.Lock()
		close(t.recvCh)
		t.mu.Unlock()
	}
	return nil
}

func (t *Transport) Recv() <-chan message.Utterance { return t.recvCh }

// Push injects an inbound utterance into the transport.
func (t *Transport) Push(u message.Utterance) {
	if t.closed.Load() {
		return
	}
	select {
	case t.recvCh <- u:
	default:
	}
}

var _ transports.Transport = (*Transport)(nil)
