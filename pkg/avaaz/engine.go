package avaaz

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/adapters/stt"
	"github.com/avaaz-ai/avaaz/pkg/adapters/tts"
	"github.com/avaaz-ai/avaaz/pkg/history"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/logging"
	"github.com/avaaz-ai/avaaz/pkg/message"
	"github.com/avaaz-ai/avaaz/pkg/metrics"
	"github.com/avaaz-ai/avaaz/pkg/observers"
	"github.com/avaaz-ai/avaaz/pkg/pipeline"
	"github.com/avaaz-ai/avaaz/pkg/prompt"
	"github.com/avaaz-ai/avaaz/pkg/redact"
	"github.com/avaaz-ai/avaaz/pkg/resilience"
	"github.com/avaaz-ai/avaaz/pkg/sentiment"
	"github.com/avaaz-ai/avaaz/pkg/transports"
)

// Engine owns the transport, the pipeline, and the per-channel history.
// One engine serves one deployment; each inbound message is processed on
// its own goroutine.
type Engine struct {
	cfg       Config
	transport transports.Transport
	pipe      *pipeline.Pipeline
	store     history.Store
	obs       *metrics.AsyncObserver
	logger    *slog.Logger
	drain     time.Duration

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// DefaultDrainTimeout bounds how long Stop waits for in-flight messages
// before cancelling them.
const DefaultDrainTimeout = 15 * time.Second

func NewEngine(cfg Config, reg *ProviderRegistry) (*Engine, error) {
	if reg == nil {
		reg = NewProviderRegistry()
		RegisterDefaults(reg)
	}
	redact.SetEnabled(cfg.Privacy.RedactPII)
	logger := logging.NewComponentLogger(slog.Default(), "engine")

	generator, err := reg.BuildLLM(cfg.Vendors.LLM.Provider, cfg)
	if err != nil {
		return nil, err
	}
	generator = wrapResilience(generator, cfg.Resilience)

	var translator sentiment.Translator
	if cfg.Sentiment.TranslateBeforeScoring {
		translator = llm.NewTranslatorWithTimeout(generator,
			time.Duration(cfg.Sentiment.TranslateTimeoutMS)*time.Millisecond)
	}
	analyzer := sentiment.NewAnalyzer(cfg.Sentiment.toThresholds(), translator)

	var transcriber stt.SpeechToText
	if strings.TrimSpace(cfg.Vendors.STT.Provider) != "" {
		transcriber, err = reg.BuildSTT(cfg.Vendors.STT.Provider, cfg)
		if err != nil {
			return nil, err
		}
	}
	var synth tts.SpeechSynthesis
	if strings.TrimSpace(cfg.Vendors.TTS.Provider) != "" {
		synth, err = reg.BuildTTS(cfg.Vendors.TTS.Provider, cfg)
		if err != nil {
			return nil, err
		}
	}

	sender, err := reg.BuildDelivery(cfg.Vendors.Delivery.Provider, cfg)
	if err != nil {
		return nil, err
	}
	transport, err := reg.BuildTransport(cfg.Transports.Provider, cfg)
	if err != nil {
		return nil, err
	}

	pipeCfg := cfg.Pipeline.toPipeline()
	obs := metrics.NewAsyncObserver(observers.NewMultiObserver(
		observers.NewLoggerObserver(slog.Default()),
		observers.NewLatencyObserver(slog.Default()),
	), cfg.Observability.AsyncBuffer)

	store := history.NewMemoryStore(cfg.Context.MaxHistory)

	pipe := pipeline.New(pipeline.Options{
		Config:      pipeCfg,
		Analyzer:    analyzer,
		Builder:     prompt.NewBuilder(cfg.Agent.Persona, cfg.Context.HistoryWindow),
		Formatter:   pipeline.NewFormatter(synth, pipeCfg.Timeouts.Synthesize),
		Transcriber: transcriber,
		Generator:   generator,
		Store:       store,
		Sender:      sender,
		Observer:    obs,
	})

	drain := time.Duration(cfg.DrainTimeoutMS) * time.Millisecond
	if drain <= 0 {
		drain = DefaultDrainTimeout
	}

	return &Engine{
		cfg:       cfg,
		transport: transport,
		pipe:      pipe,
		store:     store,
		obs:       obs,
		logger:    logger,
		drain:     drain,
	}, nil
}

func wrapResilience(inner llm.GenerationAdapter, cfg ResilienceConfig) llm.GenerationAdapter {
	retry := resilience.NewRetryPolicy(cfg.Retries, time.Duration(cfg.RetryBackoffMS)*time.Millisecond)
	var breaker *resilience.CircuitBreaker
	if cfg.UseCircuitBreaker {
		breaker = resilience.NewCircuitBreaker(cfg.BreakerThreshold, time.Duration(cfg.BreakerCooldownMS)*time.Millisecond)
	}
	return llm.NewResilientAdapter(inner, retry, breaker)
}

// Start brings up the transport and begins dispatching inbound messages.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return errors.New("engine already started")
	}
	e.started = true
	e.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	if err := e.transport.Start(runCtx); err != nil {
		cancel()
		return err
	}
	if reporter, ok := e.transport.(transports.ReadyReporter); ok {
		attrs := []any{slog.String("transport", e.transport.Name())}
		for k, v := range reporter.ReadyFields() {
			attrs = append(attrs, slog.Any(k, v))
		}
		e.logger.Info("transport ready", attrs...)
	}

	e.wg.Add(1)
	go e.dispatch(runCtx)
	return nil
}

// Stop shuts the transport first so no new messages arrive, lets
// in-flight messages finish within the drain window, then cancels
// whatever remains and flushes the observer. Cancelling before the
// drain would abort every in-flight generation and silently drop the
// messages.
func (e *Engine) Stop() error {
	err := e.transport.Stop()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(e.drain):
		e.logger.Warn("drain timeout, cancelling in-flight messages")
	}
	if e.cancel != nil {
		e.cancel()
	}
	<-done

	e.obs.Close()
	return err
}

func (e *Engine) dispatch(ctx context.Context) {
	defer e.wg.Done()
	for u := range e.transport.Recv() {
		e.wg.Add(1)
		go func(u message.Utterance) {
			defer e.wg.Done()
			e.handle(ctx, u)
		}(u)
	}
}

func (e *Engine) handle(ctx context.Context, u message.Utterance) {
	outcome := e.pipe.Process(ctx, u)
	if !outcome.Delivered() {
		e.logger.Warn("message not delivered",
			slog.String("trace_id", u.TraceID),
			slog.String("state", outcome.State.String()),
			slog.String("reason_code", string(outcome.Reason)))
		return
	}
	// Only successful exchanges become context for future turns.
	if err := e.store.Append(ctx, u.ChannelID, message.Exchange{
		Utterance: outcome.UserText,
		Reply:     outcome.Reply.Text,
	}); err != nil {
		e.logger.Warn("history append failed",
			slog.String("trace_id", u.TraceID),
			slog.String("error", err.Error()))
	}
}
