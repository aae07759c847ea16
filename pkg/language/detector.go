package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detector classifies text into a supported language. Detection never
// fails: anything unrecognized falls back to english.
type Detector struct{}

func NewDetector() Detector { return Detector{} }

// Detect runs statistical identification first, then script-range
// heuristics, then the english default. Statistical results win over
// script heuristics, which win over the default.
func (Detector) Detect(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Language: English, ConfidenceSource: SourceFallback}
	}

	info := whatlanggo.Detect(text)
	switch info.Lang {
	case whatlanggo.Eng:
		return Result{Language: English, ConfidenceSource: SourceStatistical}
	case whatlanggo.Urd:
		return Result{Language: Urdu, ConfidenceSource: SourceStatistical}
	case whatlanggo.Pan:
		return Result{Language: Punjabi, ConfidenceSource: SourceStatistical}
	}

	if containsArabicScript(text) {
		return Result{Language: Urdu, ConfidenceSource: SourceScriptHeuristic}
	}
	if containsGurmukhiScript(text) {
		return Result{Language: Punjabi, ConfidenceSource: SourceScriptHeuristic}
	}

	return Result{Language: English, ConfidenceSource: SourceFallback}
}

// DetectWithHint consults the channel-supplied language hint only when
// detection would otherwise fall back to the default.
func (d Detector) DetectWithHint(text, hint string) Result {
	res := d.Detect(text)
	if res.ConfidenceSource != SourceFallback {
		return res
	}
	if lang, ok := Parse(hint); ok {
		return Result{Language: lang, ConfidenceSource: SourceFallback}
	}
	return res
}

// Urdu is written in the Arabic script block U+0600..U+06FF.
func containsArabicScript(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// Punjabi (Gurmukhi) occupies U+0A00..U+0A7F.
func containsGurmukhiScript(text string) bool {
	for _, r := range text {
		if r >= 0x0A00 && r <= 0x0A7F {
			return true
		}
	}
	return false
}
