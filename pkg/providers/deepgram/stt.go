// Package deepgram transcribes recorded voice notes with Deepgram's
// prerecorded API. WhatsApp voice messages arrive as complete files, so
// batch transcription fits better than a live websocket session.
package deepgram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	listenv1rest "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	restinterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/avaaz-ai/avaaz/pkg/adapters/stt"
	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/logging"
)

type Config struct {
	APIKey   string
	Model    string
	Language string
}

// SpeechToText transcribes a complete audio payload in one request.
type SpeechToText struct {
	cfg    Config
	api    *listenv1rest.Client
	logger *slog.Logger
}

func New(cfg Config) (*SpeechToText, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing deepgram api key")
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	c := client.NewREST(cfg.APIKey, &interfaces.ClientOptions{})
	return &SpeechToText{
		cfg:    cfg,
		api:    listenv1rest.New(c),
		logger: logging.NewComponentLogger(slog.Default(), "deepgram_stt"),
	}, nil
}

func (s *SpeechToText) Name() string { return "deepgram_prerecorded" }

func (s *SpeechToText) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errorsx.New(errorsx.ReasonTranscription, "empty audio payload")
	}

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       s.cfg.Model,
		SmartFormat: true,
	}
	// Language is optional; Deepgram auto-detects when unset, which is
	// what a multilingual inbox wants.
	if s.cfg.Language != "" {
		options.Language = s.cfg.Language
	} else {
		options.DetectLanguage = true
	}

	res, err := s.api.FromStream(ctx, bytes.NewReader(audio), options)
	if err != nil {
		s.logger.Error("transcription request failed",
			slog.Int("size_bytes", len(audio)),
			slog.String("error", err.Error()))
		return "", errorsx.Wrap(err, errorsx.ReasonTranscription)
	}

	transcript := firstTranscript(res)
	s.logger.Debug("transcription complete",
		slog.Int("size_bytes", len(audio)),
		slog.Int("transcript_chars", len(transcript)))
	return transcript, nil
}

func firstTranscript(res *restinterfaces.PreRecordedResponse) string {
	if res == nil || res.Results == nil {
		return ""
	}
	for _, ch := range res.Results.Channels {
		for _, alt := range ch.Alternatives {
			if t := strings.TrimSpace(alt.Transcript); t != "" {
				return t
			}
		}
	}
	return ""
}

var _ stt.SpeechToText = (*SpeechToText)(nil)
