package sentiment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"

	"github.com/avaaz-ai/avaaz/pkg/language"
	"github.com/avaaz-ai/avaaz/pkg/redact"
)

// Translator converts text to english ahead of scoring. Best-effort:
// a failed translation falls back to scoring the original text.
type Translator interface {
	TranslateToEnglish(ctx context.Context, text string) (string, error)
}

// Analyzer scores utterances with a VADER lexicon. The lexicon is
// english-calibrated, so non-english input is translated first when a
// translator is available.
type Analyzer struct {
	thresholds Thresholds
	translator Translator
	detector   language.Detector
	logger     *slog.Logger
}

func NewAnalyzer(thresholds Thresholds, translator Translator) *Analyzer {
	return &Analyzer{
		thresholds: thresholds,
		translator: translator,
		detector:   language.NewDetector(),
		logger:     slog.Default().With(slog.String("component", "sentiment")),
	}
}

// Analyze never fails; an empty or unscorable utterance comes back
// neutral/casual with zero scores.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	scored := strings.TrimSpace(text)
	if scored == "" {
		return a.thresholds.resultFor(0, 0)
	}

	if a.translator != nil {
		if res := a.detector.Detect(scored); res.Language != language.English {
			translated, err := a.translator.TranslateToEnglish(ctx, scored)
			if err != nil || strings.TrimSpace(translated) == "" {
				a.logger.Debug("translation fallback",
					slog.String("text", redact.Text(scored)),
					slog.Any("error", err))
			} else {
				scored = translated
			}
		}
	}

	parsed := sentitext.Parse(scored, lexicon.DefaultLexicon)
	score := sentitext.PolarityScore(parsed)

	polarity := clamp(score.Compound, -1, 1)
	subjectivity := clamp(score.Positive+score.Negative, 0, 1)
	return a.thresholds.resultFor(polarity, subjectivity)
}

// Thresholds exposes the active policy, mainly for tests.
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
