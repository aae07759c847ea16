package redact

import (
	"strings"
	"testing"
)

func TestTextRedactsWhenEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	out := Text("reach me at ali@example.com or +92 300 1234567")
	if !strings.Contains(out, "[REDACTED_EMAIL]") {
		t.Errorf("expected redacted email in %q", out)
	}
	if !strings.Contains(out, "[REDACTED_PHONE]") {
		t.Errorf("expected redacted phone in %q", out)
	}
}

func TestTextPassthroughWhenDisabled(t *testing.T) {
	SetEnabled(false)
	in := "call +92 300 1234567"
	if out := Text(in); out != in {
		t.Fatalf("expected passthrough, got %q", out)
	}
}

func TestChannelIDKeepsSuffix(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if out := ChannelID("+923001234567"); out != "…4567" {
		t.Fatalf("expected masked suffix, got %q", out)
	}
}
