package mock

import (
	"context"
	"sync/atomic"

	"github.com/avaaz-ai/avaaz/pkg/language"
)

// SpeechSynthesis is an in-memory synthesizer for tests.
type SpeechSynthesis struct {
	Audio []byte
	Err   error
	calls int64
}

func (s *SpeechSynthesis) Name() string { return "mock_tts" }

func (s *SpeechSynthesis) Synthesize(_ context.Context, _ string, _ language.Language) ([]byte, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Audio != nil {
		return s.Audio, nil
	}
	return []byte("mock audio"), nil
}

func (s *SpeechSynthesis) Calls() int64 { return atomic.LoadInt64(&s.calls) }
