// Package history stores prior exchanges per channel. The pipeline only
// reads; the engine appends after a reply is delivered. Durability beyond
// process lifetime is a deployment concern behind the Store interface.
package history

import (
	"context"
	"sync"

	"github.com/avaaz-ai/avaaz/pkg/message"
)

// Store is the conversation history collaborator. Get returns exchanges
// oldest-first.
type Store interface {
	Get(ctx context.Context, channelID string) ([]message.Exchange, error)
	Append(ctx context.Context, channelID string, exchange message.Exchange) error
}

// MemoryStore is an in-process bounded store.
type MemoryStore struct {
	mu           sync.Mutex
	maxExchanges int
	byChannel    map[string][]message.Exchange
}

func NewMemoryStore(maxExchanges int) *MemoryStore {
	if maxExchanges <= 0 {
		maxExchanges = 12
	}
	return &MemoryStore{
		maxExchanges: maxExchanges,
		byChannel:    make(map[string][]message.Exchange),
	}
}

func (s *MemoryStore) Get(_ context.Context, channelID string) ([]message.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.byChannel[channelID]
	out := make([]message.Exchange, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, channelID string, exchange message.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := append(s.byChannel[channelID], exchange)
	if len(stored) > s.maxExchanges {
		stored = stored[len(stored)-s.maxExchanges:]
	}
	s.byChannel[channelID] = stored
	return nil
}
