package avaaz

import (
	"context"
	"testing"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/delivery"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/message"
	"github.com/avaaz-ai/avaaz/pkg/providers/mock"
	"github.com/avaaz-ai/avaaz/pkg/transports"
	transportmock "github.com/avaaz-ai/avaaz/pkg/transports/mock"
)

func testEngine(t *testing.T) (*Engine, *transportmock.Transport, *mock.Delivery) {
	t.Helper()
	reg := NewProviderRegistry()
	RegisterDefaults(reg)

	tr := transportmock.New()
	sender := &mock.Delivery{}
	reg.RegisterTransport("test", func(Config) (transports.Transport, error) { return tr, nil })
	reg.RegisterDelivery("test", func(Config) (delivery.Delivery, error) { return sender, nil })

	cfg := Config{
		Vendors: VendorsConfig{
			LLM:      VendorConfig{Provider: "mock", Settings: map[string]any{"reply_text": "engine reply"}},
			Delivery: VendorConfig{Provider: "test"},
		},
		Transports: TransportsConfig{Provider: "test"},
		Context:    ContextConfig{MaxHistory: 4, HistoryWindow: 2},
	}
	e, err := NewEngine(cfg, reg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, tr, sender
}

func waitForSends(t *testing.T, sender *mock.Delivery, n int) []mock.Sent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sent := sender.Sent(); len(sent) >= n {
			return sent
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sends, got %d", n, len(sender.Sent()))
	return nil
}

func TestEngineProcessesInboundMessage(t *testing.T) {
	e, tr, sender := testEngine(t)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer e.Stop()

	tr.Push(message.Utterance{
		RawText:   "hello",
		ChannelID: "whatsapp:+15550001111",
		TraceID:   "t1",
	})

	sent := waitForSends(t, sender, 1)
	if sent[0].Text != "engine reply" {
		t.Errorf("sent text = %q", sent[0].Text)
	}
}

func TestEngineAppendsHistoryAfterDelivery(t *testing.T) {
	e, tr, sender := testEngine(t)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer e.Stop()

	tr.Push(message.Utterance{RawText: "first", ChannelID: "whatsapp:+15550001111", TraceID: "t1"})
	waitForSends(t, sender, 1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hist, err := e.store.Get(context.Background(), "whatsapp:+15550001111")
		if err != nil {
			t.Fatalf("history get: %v", err)
		}
		if len(hist) == 1 {
			if hist[0].Utterance != "first" || hist[0].Reply != "engine reply" {
				t.Fatalf("exchange = %+v", hist[0])
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for history append")
}

type slowGeneration struct{ delay time.Duration }

func (s *slowGeneration) Name() string { return "slow" }

func (s *slowGeneration) Complete(ctx context.Context, _ llm.Request) (llm.Reply, error) {
	select {
	case <-time.After(s.delay):
		return llm.Reply{Text: "drained reply"}, nil
	case <-ctx.Done():
		return llm.Reply{}, ctx.Err()
	}
}

func TestEngineStopDrainsInFlightMessage(t *testing.T) {
	reg := NewProviderRegistry()
	RegisterDefaults(reg)

	tr := transportmock.New()
	sender := &mock.Delivery{}
	reg.RegisterTransport("test", func(Config) (transports.Transport, error) { return tr, nil })
	reg.RegisterDelivery("test", func(Config) (delivery.Delivery, error) { return sender, nil })
	reg.RegisterLLM("slow", func(Config) (llm.GenerationAdapter, error) {
		return &slowGeneration{delay: 50 * time.Millisecond}, nil
	})

	cfg := Config{
		Vendors: VendorsConfig{
			LLM:      VendorConfig{Provider: "slow"},
			Delivery: VendorConfig{Provider: "test"},
		},
		Transports: TransportsConfig{Provider: "test"},
	}
	e, err := NewEngine(cfg, reg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	tr.Push(message.Utterance{RawText: "hello", ChannelID: "whatsapp:+15550001111", TraceID: "t1"})
	if err := e.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 || sent[0].Text != "drained reply" {
		t.Fatalf("message in flight at stop was dropped, sends = %+v", sent)
	}
}

func TestEngineDoubleStart(t *testing.T) {
	e, _, _ := testEngine(t)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer e.Stop()
	if err := e.Start(context.Background()); err == nil {
		t.Fatal("second start must fail")
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	reg := NewProviderRegistry()
	RegisterDefaults(reg)
	if _, err := reg.BuildLLM("nope", Config{}); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}
