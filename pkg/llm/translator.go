package llm

import (
	"context"
	"strings"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/errorsx"
)

const translatorPrompt = `You are a translation engine. Translate the user's message to English. Output ONLY the translation, with no commentary and no quotation marks.`

// DefaultTranslateTimeout bounds the backend call when no explicit
// timeout is configured.
const DefaultTranslateTimeout = 10 * time.Second

// Translator adapts the generation backend into a best-effort
// to-english translator used ahead of sentiment scoring. Every call is
// bounded by the configured timeout; a stalled backend fails the
// translation instead of the message.
type Translator struct {
	adapter GenerationAdapter
	timeout time.Duration
}

func NewTranslator(adapter GenerationAdapter) *Translator {
	return NewTranslatorWithTimeout(adapter, DefaultTranslateTimeout)
}

func NewTranslatorWithTimeout(adapter GenerationAdapter, timeout time.Duration) *Translator {
	if timeout <= 0 {
		timeout = DefaultTranslateTimeout
	}
	return &Translator{adapter: adapter, timeout: timeout}
}

func (t *Translator) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	if t.adapter == nil {
		return "", errorsx.New(errorsx.ReasonTranslation, "no generation adapter")
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	reply, err := t.adapter.Complete(ctx, Request{
		SystemPrompt: translatorPrompt,
		UserText:     text,
	})
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonTranslation)
	}
	return strings.TrimSpace(reply.Text), nil
}
