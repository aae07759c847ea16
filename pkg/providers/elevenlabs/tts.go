// Package elevenlabs synthesizes reply audio over ElevenLabs'
// stream-input websocket. Each Synthesize call opens one session, sends
// the full text, and collects chunks until the service marks the
// generation final.
package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/avaaz-ai/avaaz/pkg/adapters/tts"
	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/language"
	"github.com/avaaz-ai/avaaz/pkg/logging"
	"github.com/avaaz-ai/avaaz/pkg/resilience"
)

type Config struct {
	APIKey       string
	ModelID      string
	OutputFormat string
	// VoiceIDs maps each reply language to a voice. A language without
	// an entry falls back to DefaultVoiceID.
	VoiceIDs       map[language.Language]string
	DefaultVoiceID string
}

type SpeechSynthesis struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) (*SpeechSynthesis, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing elevenlabs api key")
	}
	if cfg.DefaultVoiceID == "" {
		return nil, errors.New("missing elevenlabs voice id")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	return &SpeechSynthesis{
		cfg:    cfg,
		logger: logging.NewComponentLogger(slog.Default(), "elevenlabs_tts"),
	}, nil
}

func (s *SpeechSynthesis) Name() string { return "elevenlabs_tts" }

func (s *SpeechSynthesis) Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errorsx.New(errorsx.ReasonSynthesis, "empty text")
	}

	voiceID := s.cfg.VoiceIDs[lang]
	if voiceID == "" {
		voiceID = s.cfg.DefaultVoiceID
	}

	dialer := websocket.Dialer{Proxy: http.ProxyFromEnvironment}
	conn, resp, err := dialer.DialContext(ctx, s.buildURL(voiceID), http.Header{
		"xi-api-key": []string{s.cfg.APIKey},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			s.logger.Error("rate limit exceeded", slog.String("status", resp.Status))
			return nil, errorsx.Wrap(
				resilience.RateLimitError{Provider: "elevenlabs", Message: resp.Status},
				errorsx.ReasonSynRateLimit)
		}
		return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	init := map[string]any{
		"text": " ",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.8,
		},
	}
	// Full text in one message, then an empty text to close the input
	// stream so the service finalizes the generation.
	messages := []map[string]any{
		init,
		{"text": text + " ", "try_trigger_generation": true},
		{"text": ""},
	}
	for _, msg := range messages {
		b, err := json.Marshal(msg)
		if err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
		}
	}

	audio, err := s.collect(conn)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("synthesis complete",
		slog.String("language", lang.String()),
		slog.String("voice_id", voiceID),
		slog.Int("size_bytes", len(audio)))
	return audio, nil
}

func (s *SpeechSynthesis) buildURL(voiceID string) string {
	base := "wss://api.elevenlabs.io/v1/text-to-speech/" + voiceID + "/stream-input"
	q := url.Values{}
	q.Set("model_id", s.cfg.ModelID)
	q.Set("output_format", s.cfg.OutputFormat)
	return base + "?" + q.Encode()
}

func (s *SpeechSynthesis) collect(conn *websocket.Conn) ([]byte, error) {
	var audio []byte
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// A normal close after audio arrived means the generation
			// finished without an explicit isFinal marker.
			if len(audio) > 0 && websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return audio, nil
			}
			return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
		}

		var msg struct {
			Audio   string `json:"audio"`
			IsFinal *bool  `json:"isFinal"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("unexpected websocket payload", slog.String("data", string(data)))
			continue
		}
		if msg.Error != "" {
			return nil, errorsx.New(errorsx.ReasonSynthesis, msg.Error)
		}
		if msg.Audio != "" {
			raw, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
			}
			audio = append(audio, raw...)
		}
		if msg.IsFinal != nil && *msg.IsFinal {
			if len(audio) == 0 {
				return nil, errorsx.New(errorsx.ReasonSynthesis, "generation finished with no audio")
			}
			return audio, nil
		}
	}
}

var _ tts.SpeechSynthesis = (*SpeechSynthesis)(nil)
