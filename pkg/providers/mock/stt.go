package mock

import (
	"context"
	"sync/atomic"
)

// SpeechToText is an in-memory transcriber for tests.
type SpeechToText struct {
	Transcript string
	Err        error
	calls      int64
}

func (s *SpeechToText) Name() string { return "mock_stt" }

func (s *SpeechToText) Transcribe(context.Context, []byte) (string, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Transcript, nil
}

func (s *SpeechToText) Calls() int64 { return atomic.LoadInt64(&s.calls) }
