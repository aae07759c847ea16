package stt

import "context"

// SpeechToText defines the contract for any transcription vendor.
// An empty transcript with a nil error means the audio was
// unintelligible; the caller decides what to do with that.
type SpeechToText interface {
	// Name returns the adapter name for logging/metrics.
	Name() string
	// Transcribe converts recorded audio into text.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
