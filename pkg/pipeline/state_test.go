package pipeline

import (
	"errors"
	"testing"
)

func TestStateTrackerHappyPathVoice(t *testing.T) {
	tr := newStateTracker()
	path := []State{
		StateTranscribed, StateAnalyzed, StateAssembled,
		StatePrompted, StateGenerated, StateFormatted, StateDelivered,
	}
	for _, next := range path {
		if err := tr.to(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if tr.State() != StateDelivered {
		t.Errorf("final state = %s", tr.State())
	}
}

func TestStateTrackerTextSkipsTranscription(t *testing.T) {
	tr := newStateTracker()
	if err := tr.to(StateAnalyzed); err != nil {
		t.Fatalf("text messages go straight to ANALYZED: %v", err)
	}
}

func TestStateTrackerRejectsSkips(t *testing.T) {
	tr := newStateTracker()
	err := tr.to(StateGenerated)
	if err == nil {
		t.Fatal("RECEIVED -> GENERATED must be rejected")
	}
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("error type = %T", err)
	}
	if ite.From != StateReceived || ite.To != StateGenerated {
		t.Errorf("error = %v", ite)
	}
	if tr.State() != StateReceived {
		t.Errorf("rejected transition must not change state, got %s", tr.State())
	}
}

func TestStateTrackerTerminalStates(t *testing.T) {
	for _, terminal := range []State{StateDelivered, StateError} {
		tr := &stateTracker{current: terminal}
		for next := StateReceived; next <= StateError; next++ {
			if err := tr.to(next); err == nil {
				t.Errorf("%s -> %s should be rejected", terminal, next)
			}
		}
	}
}

func TestStateTrackerErrorFromAnyNonTerminal(t *testing.T) {
	for from := StateReceived; from <= StateFormatted; from++ {
		tr := &stateTracker{current: from}
		if err := tr.to(StateError); err != nil {
			t.Errorf("%s -> ERROR: %v", from, err)
		}
	}
}
