package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/adapters/tts"
	"github.com/avaaz-ai/avaaz/pkg/convo"
	"github.com/avaaz-ai/avaaz/pkg/message"
)

// Formatter decides output modality for a generated reply. Synthesis is
// best-effort: it never blocks text delivery.
type Formatter struct {
	synth   tts.SpeechSynthesis
	timeout time.Duration
	logger  *slog.Logger
}

func NewFormatter(synth tts.SpeechSynthesis, timeout time.Duration) *Formatter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Formatter{
		synth:   synth,
		timeout: timeout,
		logger:  slog.Default().With(slog.String("component", "formatter")),
	}
}

// Format builds the outbound reply. The language tag always matches the
// detected input language, regardless of what the generation backend
// actually replied in.
func (f *Formatter) Format(ctx context.Context, replyText string, c convo.Context, voiceRequested bool) message.OutboundReply {
	out := message.OutboundReply{
		Text:     replyText,
		Language: c.Language.Language,
	}
	if !voiceRequested || f.synth == nil {
		return out
	}

	sctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	audio, err := f.synth.Synthesize(sctx, replyText, out.Language)
	if err != nil {
		f.logger.Warn("speech synthesis failed, sending text only",
			slog.String("language", out.Language.String()),
			slog.String("error", err.Error()))
		return out
	}
	out.Audio = audio
	return out
}
