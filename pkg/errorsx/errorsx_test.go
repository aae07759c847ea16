package errorsx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAttachesReason(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, ReasonGeneration)
	if Reason(err) != ReasonGeneration {
		t.Fatalf("expected generation reason, got %s", Reason(err))
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to match base")
	}
}

func TestWrapKeepsFirstReason(t *testing.T) {
	err := Wrap(errors.New("timeout"), ReasonTranscription)
	rewrapped := Wrap(err, ReasonGeneration)
	if Reason(rewrapped) != ReasonTranscription {
		t.Fatalf("expected original reason preserved, got %s", Reason(rewrapped))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonDelivery) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestReasonSurvivesFmtWrap(t *testing.T) {
	err := fmt.Errorf("send reply: %w", New(ReasonDelivery, "network down"))
	if !HasReason(err, ReasonDelivery) {
		t.Fatalf("expected delivery reason through %%w chain")
	}
}

func TestReasonOfPlainError(t *testing.T) {
	if Reason(errors.New("plain")) != ReasonUnknown {
		t.Fatalf("expected unknown reason for plain error")
	}
}
