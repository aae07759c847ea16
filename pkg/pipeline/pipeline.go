// Package pipeline orchestrates one inbound utterance from reception to
// delivery: language detection → sentiment analysis → context assembly →
// prompt construction → generation → formatting. The pipeline holds no
// cross-invocation state; each Process call is an independent task.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/adapters/stt"
	"github.com/avaaz-ai/avaaz/pkg/convo"
	"github.com/avaaz-ai/avaaz/pkg/delivery"
	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/history"
	"github.com/avaaz-ai/avaaz/pkg/language"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/message"
	"github.com/avaaz-ai/avaaz/pkg/metrics"
	"github.com/avaaz-ai/avaaz/pkg/prompt"
	"github.com/avaaz-ai/avaaz/pkg/redact"
	"github.com/avaaz-ai/avaaz/pkg/sentiment"
)

// Fixed user-safe replies. Raw collaborator failures never reach the user.
const (
	DefaultApologyText = "I'm having trouble processing your message. Please try again later."
	DefaultRetypeText  = "I couldn't understand the audio. Could you please type your message?"
)

// Timeouts bound every external collaborator call. A timeout is treated
// identically to a failure of that step.
type Timeouts struct {
	Transcribe  time.Duration
	HistoryRead time.Duration
	Generate    time.Duration
	Synthesize  time.Duration
	Deliver     time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Transcribe <= 0 {
		t.Transcribe = 30 * time.Second
	}
	if t.HistoryRead <= 0 {
		t.HistoryRead = 5 * time.Second
	}
	if t.Generate <= 0 {
		t.Generate = 60 * time.Second
	}
	if t.Synthesize <= 0 {
		t.Synthesize = 15 * time.Second
	}
	if t.Deliver <= 0 {
		t.Deliver = 15 * time.Second
	}
	return t
}

// Config carries pipeline-level policy.
type Config struct {
	Timeouts    Timeouts
	ApologyText string
	RetypeText  string
}

func (c Config) withDefaults() Config {
	c.Timeouts = c.Timeouts.withDefaults()
	if strings.TrimSpace(c.ApologyText) == "" {
		c.ApologyText = DefaultApologyText
	}
	if strings.TrimSpace(c.RetypeText) == "" {
		c.RetypeText = DefaultRetypeText
	}
	return c
}

// Options wires the pipeline's stages and collaborators.
type Options struct {
	Config      Config
	Analyzer    *sentiment.Analyzer
	Builder     *prompt.Builder
	Formatter   *Formatter
	Transcriber stt.SpeechToText
	Generator   llm.GenerationAdapter
	Store       history.Store
	Sender      delivery.Delivery
	Observer    metrics.Observer
}

// Pipeline sequences the processing stages for inbound utterances.
type Pipeline struct {
	cfg         Config
	detector    language.Detector
	analyzer    *sentiment.Analyzer
	builder     *prompt.Builder
	formatter   *Formatter
	transcriber stt.SpeechToText
	generator   llm.GenerationAdapter
	store       history.Store
	sender      delivery.Delivery
	obs         metrics.Observer
	logger      *slog.Logger
}

func New(opts Options) *Pipeline {
	cfg := opts.Config.withDefaults()
	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = sentiment.NewAnalyzer(sentiment.DefaultThresholds(), nil)
	}
	builder := opts.Builder
	if builder == nil {
		builder = prompt.NewBuilder("", 6)
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = NewFormatter(nil, cfg.Timeouts.Synthesize)
	}
	obs := opts.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	return &Pipeline{
		cfg:         cfg,
		detector:    language.NewDetector(),
		analyzer:    analyzer,
		builder:     builder,
		formatter:   formatter,
		transcriber: opts.Transcriber,
		generator:   opts.Generator,
		store:       opts.Store,
		sender:      opts.Sender,
		obs:         obs,
		logger:      slog.Default().With(slog.String("component", "pipeline")),
	}
}

// Outcome is the terminal result of one pipeline invocation.
type Outcome struct {
	State State
	// UserText is the text the reply answered: the raw text for typed
	// messages, the transcript for voice notes.
	UserText string
	Reason   errorsx.ReasonCode
	Reply    *message.OutboundReply
	Err      error
}

// Delivered reports whether the reply reached the delivery collaborator.
func (o Outcome) Delivered() bool { return o.State == StateDelivered }

// Process runs one utterance through the pipeline. It never panics and
// never lets a collaborator error escape: every failure becomes either a
// documented default or a user-safe reply.
func (p *Pipeline) Process(ctx context.Context, u message.Utterance) Outcome {
	log := p.logger.With(
		slog.String("trace_id", u.TraceID),
		slog.String("channel_id", redact.ChannelID(u.ChannelID)),
	)
	tracker := newStateTracker()
	started := time.Now()

	// The delivery address must be known before any fallible step runs,
	// otherwise the apology path has nowhere to go.
	if strings.TrimSpace(u.ChannelID) == "" {
		_ = tracker.to(StateError)
		p.recordOutcome(u, "pipeline_error", started)
		err := errorsx.New(errorsx.ReasonTransportDecode, "utterance has no channel id")
		log.Error("rejecting utterance without channel id")
		return Outcome{State: StateError, Reason: errorsx.ReasonTransportDecode, Err: err}
	}

	text := u.RawText
	if u.HasAudio {
		transcript, err := p.transcribe(ctx, u)
		if err != nil {
			log.Warn("transcription failed", slog.String("error", err.Error()))
			return p.abort(ctx, tracker, u, errorsx.ReasonTranscription, p.cfg.RetypeText, err, log, started)
		}
		if strings.TrimSpace(transcript) == "" {
			// Unintelligible audio bypasses generation entirely; the user
			// is asked to retype, not to retry.
			log.Info("unintelligible audio")
			err := errorsx.New(errorsx.ReasonUnintelligible, "transcription produced no text")
			return p.abort(ctx, tracker, u, errorsx.ReasonUnintelligible, p.cfg.RetypeText, err, log, started)
		}
		text = transcript
		_ = tracker.to(StateTranscribed)
	}

	// Detection and analysis are pure functions of the same immutable
	// input; run them concurrently.
	var (
		lang language.Result
		sent sentiment.Result
	)
	stageStart := time.Now()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		lang = p.detector.DetectWithHint(text, u.SourceLanguageHint)
	}()
	go func() {
		defer wg.Done()
		sent = p.analyzer.Analyze(ctx, text)
	}()
	wg.Wait()
	p.recordStage(u, "analyze", stageStart)
	_ = tracker.to(StateAnalyzed)

	hist := p.readHistory(ctx, u, log)

	analyzed := u
	analyzed.RawText = text
	cctx := convo.Assemble(analyzed, lang, sent, hist, u.Metadata)
	_ = tracker.to(StateAssembled)

	req := p.builder.Build(cctx)
	_ = tracker.to(StatePrompted)

	stageStart = time.Now()
	gctx, cancel := context.WithTimeout(ctx, p.cfg.Timeouts.Generate)
	reply, err := p.generator.Complete(gctx, req)
	cancel()
	p.recordStage(u, "generate", stageStart)
	if err != nil {
		log.Error("generation failed", slog.String("error", err.Error()))
		reason := errorsx.Reason(err)
		if reason == errorsx.ReasonUnknown {
			reason = errorsx.ReasonGeneration
		}
		return p.abort(ctx, tracker, u, reason, p.cfg.ApologyText, err, log, started)
	}
	_ = tracker.to(StateGenerated)

	stageStart = time.Now()
	out := p.formatter.Format(ctx, reply.Text, cctx, u.HasAudio)
	p.recordStage(u, "format", stageStart)
	_ = tracker.to(StateFormatted)

	// A cancelled request means the originating transport is gone:
	// discard the result rather than delivering a reply nobody awaits.
	if ctx.Err() != nil {
		_ = tracker.to(StateError)
		p.recordOutcome(u, "pipeline_error", started)
		log.Info("request cancelled, discarding reply")
		return Outcome{State: StateError, Reason: errorsx.ReasonUnknown, Err: ctx.Err()}
	}

	stageStart = time.Now()
	dctx, cancel := context.WithTimeout(ctx, p.cfg.Timeouts.Deliver)
	err = p.sender.Send(dctx, u.ChannelID, out.Text, out.Audio)
	cancel()
	p.recordStage(u, "deliver", stageStart)
	if err != nil {
		// Fire-and-forget: report, do not retry.
		log.Error("delivery failed", slog.String("error", err.Error()))
		_ = tracker.to(StateError)
		p.recordOutcome(u, "pipeline_error", started)
		return Outcome{
			State:  StateError,
			Reason: errorsx.ReasonDelivery,
			Reply:  &out,
			Err:    errorsx.Wrap(err, errorsx.ReasonDelivery),
		}
	}
	_ = tracker.to(StateDelivered)
	p.recordOutcome(u, "pipeline_done", started)
	log.Info("reply delivered",
		slog.String("language", out.Language.String()),
		slog.Bool("voice", out.Audio != nil))
	return Outcome{State: StateDelivered, UserText: text, Reply: &out}
}

func (p *Pipeline) transcribe(ctx context.Context, u message.Utterance) (string, error) {
	if p.transcriber == nil {
		return "", errorsx.New(errorsx.ReasonTranscription, "no transcriber configured")
	}
	stageStart := time.Now()
	tctx, cancel := context.WithTimeout(ctx, p.cfg.Timeouts.Transcribe)
	defer cancel()
	transcript, err := p.transcriber.Transcribe(tctx, u.Audio)
	p.recordStage(u, "transcribe", stageStart)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonTranscription)
	}
	return transcript, nil
}

// readHistory is best-effort: a failed read logs and proceeds with an
// empty history instead of failing the message.
func (p *Pipeline) readHistory(ctx context.Context, u message.Utterance, log *slog.Logger) []message.Exchange {
	if p.store == nil {
		return nil
	}
	hctx, cancel := context.WithTimeout(ctx, p.cfg.Timeouts.HistoryRead)
	defer cancel()
	hist, err := p.store.Get(hctx, u.ChannelID)
	if err != nil {
		log.Warn("history read failed, continuing without history",
			slog.String("error", err.Error()))
		return nil
	}
	return hist
}

// abort converts a terminal failure into a user-safe reply. Delivery of
// the safe text is skipped when the request was cancelled.
func (p *Pipeline) abort(ctx context.Context, tracker *stateTracker, u message.Utterance, reason errorsx.ReasonCode, safeText string, err error, log *slog.Logger, started time.Time) Outcome {
	_ = tracker.to(StateError)
	p.recordOutcome(u, "pipeline_error", started)
	if ctx.Err() == nil && p.sender != nil {
		dctx, cancel := context.WithTimeout(ctx, p.cfg.Timeouts.Deliver)
		if derr := p.sender.Send(dctx, u.ChannelID, safeText, nil); derr != nil {
			log.Error("failed to deliver safe reply", slog.String("error", derr.Error()))
		}
		cancel()
	}
	return Outcome{State: StateError, Reason: reason, Err: err}
}

func (p *Pipeline) recordStage(u message.Utterance, stage string, start time.Time) {
	p.obs.RecordEvent(metrics.MetricsEvent{
		Name:  "stage_latency_ms",
		Time:  time.Now(),
		Value: float64(time.Since(start).Milliseconds()),
		Tags: map[string]string{
			"stage":    stage,
			"trace_id": u.TraceID,
		},
	})
}

func (p *Pipeline) recordOutcome(u message.Utterance, name string, started time.Time) {
	p.obs.RecordEvent(metrics.MetricsEvent{
		Name:  name,
		Time:  time.Now(),
		Value: float64(time.Since(started).Milliseconds()),
		Tags: map[string]string{
			"trace_id": u.TraceID,
		},
	})
}
