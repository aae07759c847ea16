package tts

import (
	"context"

	"github.com/avaaz-ai/avaaz/pkg/language"
)

// SpeechSynthesis defines the contract for any synthesis vendor.
// Callers treat synthesis as best-effort: a failure never blocks
// text delivery.
type SpeechSynthesis interface {
	// Name returns the adapter name for logging/metrics.
	Name() string
	// Synthesize renders text in the given language to audio bytes.
	Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error)
}
