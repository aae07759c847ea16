package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/avaaz-ai/avaaz/pkg/llm"
)

// Generation is an in-memory generation adapter for tests.
type Generation struct {
	cfg   GenerationConfig
	calls int64

	mu       sync.Mutex
	requests []llm.Request
}

type GenerationConfig struct {
	ReplyText string
	Err       error
}

func NewGeneration(cfg GenerationConfig) *Generation {
	if cfg.ReplyText == "" && cfg.Err == nil {
		cfg.ReplyText = "mock reply"
	}
	return &Generation{cfg: cfg}
}

func (g *Generation) Name() string { return "mock_llm" }

func (g *Generation) Complete(_ context.Context, req llm.Request) (llm.Reply, error) {
	atomic.AddInt64(&g.calls, 1)
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.cfg.Err != nil {
		return llm.Reply{}, g.cfg.Err
	}
	return llm.Reply{Text: g.cfg.ReplyText}, nil
}

// Calls reports how many times Complete was invoked.
func (g *Generation) Calls() int64 { return atomic.LoadInt64(&g.calls) }

// LastRequest returns the most recent request, if any.
func (g *Generation) LastRequest() (llm.Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return llm.Request{}, false
	}
	return g.requests[len(g.requests)-1], true
}
