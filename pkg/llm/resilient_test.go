package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/resilience"
)

type scriptedAdapter struct {
	replies []Reply
	errs    []error
	calls   int
}

func (s *scriptedAdapter) Name() string { return "scripted" }

func (s *scriptedAdapter) Complete(_ context.Context, _ Request) (Reply, error) {
	i := s.calls
	s.calls++
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	if s.errs[i] != nil {
		return Reply{}, s.errs[i]
	}
	return s.replies[i], nil
}

func TestResilientAdapterRetriesTransientFailure(t *testing.T) {
	inner := &scriptedAdapter{
		replies: []Reply{{}, {Text: "ok"}},
		errs:    []error{errors.New("transient"), nil},
	}
	a := NewResilientAdapter(inner, resilience.NewRetryPolicy(2, time.Millisecond), nil)

	reply, err := a.Complete(context.Background(), Request{UserText: "hi"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply.Text != "ok" {
		t.Errorf("reply = %q", reply.Text)
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}

func TestResilientAdapterExhaustedRetries(t *testing.T) {
	inner := &scriptedAdapter{
		replies: []Reply{{}},
		errs:    []error{errors.New("down")},
	}
	a := NewResilientAdapter(inner, resilience.NewRetryPolicy(1, time.Millisecond), nil)

	_, err := a.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errorsx.HasReason(err, errorsx.ReasonGeneration) {
		t.Errorf("reason = %s", errorsx.Reason(err))
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want original + 1 retry", inner.calls)
	}
}

func TestResilientAdapterOpenBreakerShortCircuits(t *testing.T) {
	inner := &scriptedAdapter{
		replies: []Reply{{}},
		errs:    []error{resilience.RateLimitError{Provider: "test"}},
	}
	breaker := resilience.NewCircuitBreaker(1, time.Minute)
	a := NewResilientAdapter(inner, resilience.NewRetryPolicy(0, time.Millisecond), breaker)

	if _, err := a.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected rate limit error")
	}
	callsBefore := inner.calls

	_, err := a.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected open-breaker error")
	}
	if !errorsx.HasReason(err, errorsx.ReasonGenRateLimit) {
		t.Errorf("reason = %s", errorsx.Reason(err))
	}
	if inner.calls != callsBefore {
		t.Errorf("open breaker must not reach the backend")
	}
}

func TestResilientAdapterCancelledContext(t *testing.T) {
	inner := &scriptedAdapter{replies: []Reply{{Text: "ok"}}, errs: []error{nil}}
	a := NewResilientAdapter(inner, resilience.NewRetryPolicy(2, time.Millisecond), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Complete(ctx, Request{}); err == nil {
		t.Fatal("expected context error")
	}
	if inner.calls != 0 {
		t.Errorf("cancelled context must not reach the backend")
	}
}

type stalledAdapter struct{}

func (stalledAdapter) Name() string { return "stalled" }

func (stalledAdapter) Complete(ctx context.Context, _ Request) (Reply, error) {
	<-ctx.Done()
	return Reply{}, ctx.Err()
}

func TestTranslatorBoundsStalledBackend(t *testing.T) {
	tr := NewTranslatorWithTimeout(stalledAdapter{}, 20*time.Millisecond)

	start := time.Now()
	_, err := tr.TranslateToEnglish(context.Background(), "آپ کیسے ہیں")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("translation blocked %v on a stalled backend", elapsed)
	}
	if !errorsx.HasReason(err, errorsx.ReasonTranslation) {
		t.Errorf("reason = %s", errorsx.Reason(err))
	}
}

func TestTranslatorTrimsReply(t *testing.T) {
	inner := &scriptedAdapter{replies: []Reply{{Text: "  How are you?  "}}, errs: []error{nil}}
	tr := NewTranslator(inner)

	out, err := tr.TranslateToEnglish(context.Background(), "آپ کیسے ہیں")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "How are you?" {
		t.Errorf("out = %q", out)
	}
}

func TestTranslatorPropagatesFailure(t *testing.T) {
	inner := &scriptedAdapter{replies: []Reply{{}}, errs: []error{errors.New("down")}}
	tr := NewTranslator(inner)

	if _, err := tr.TranslateToEnglish(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
}
