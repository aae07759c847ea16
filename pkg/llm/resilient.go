package llm

import (
	"context"

	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/resilience"
)

// ResilientAdapter guards a generation adapter with a retry policy and a
// circuit breaker. Rate-limit responses trip the breaker; other failures
// are retried per policy.
type ResilientAdapter struct {
	inner   GenerationAdapter
	retry   resilience.RetryPolicy
	breaker *resilience.CircuitBreaker
}

func NewResilientAdapter(inner GenerationAdapter, retry resilience.RetryPolicy, breaker *resilience.CircuitBreaker) *ResilientAdapter {
	return &ResilientAdapter{inner: inner, retry: retry, breaker: breaker}
}

func (a *ResilientAdapter) Name() string { return a.inner.Name() }

func (a *ResilientAdapter) Complete(ctx context.Context, req Request) (Reply, error) {
	if a.breaker != nil && !a.breaker.Allow() {
		return Reply{}, errorsx.New(errorsx.ReasonGenRateLimit, "generation circuit open")
	}
	var reply Reply
	err := a.retry.Do(func() error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var callErr error
		reply, callErr = a.inner.Complete(ctx, req)
		return callErr
	})
	if a.breaker != nil {
		if err != nil {
			a.breaker.OnError(err)
		} else {
			a.breaker.OnSuccess()
		}
	}
	if err != nil {
		return Reply{}, errorsx.Wrap(err, errorsx.ReasonGeneration)
	}
	return reply, nil
}
