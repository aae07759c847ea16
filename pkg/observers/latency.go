package observers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/metrics"
)

// LatencyObserver aggregates per-stage pipeline latencies by trace and
// logs one summary line when the pipeline finishes.
type LatencyObserver struct {
	mu     sync.Mutex
	traces map[string]*trace
	log    *slog.Logger
}

type trace struct {
	started time.Time
	stages  map[string]float64
}

func NewLatencyObserver(log *slog.Logger) *LatencyObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LatencyObserver{
		traces: make(map[string]*trace),
		log:    log,
	}
}

func (o *LatencyObserver) RecordEvent(ev metrics.MetricsEvent) {
	traceID := ""
	if ev.Tags != nil {
		traceID = ev.Tags["trace_id"]
	}
	if traceID == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.traces[traceID]
	if t == nil {
		t = &trace{started: ev.Time, stages: make(map[string]float64)}
		o.traces[traceID] = t
	}
	switch ev.Name {
	case "stage_latency_ms":
		t.stages[ev.Tags["stage"]] += ev.Value
	case "pipeline_done", "pipeline_error":
		attrs := []any{
			"trace_id", traceID,
			"outcome", ev.Name,
			"total_ms", ev.Time.Sub(t.started).Milliseconds(),
		}
		for stage, ms := range t.stages {
			attrs = append(attrs, "stage_"+stage+"_ms", ms)
		}
		o.log.Info("pipeline_latency", attrs...)
		delete(o.traces, traceID)
	}
}
