// Package language classifies utterance text into the closed set of
// languages the assistant can reply in.
package language

import "strings"

// Language is one of the supported conversation languages.
type Language string

const (
	English Language = "english"
	Urdu    Language = "urdu"
	Punjabi Language = "punjabi"
)

// Code returns the ISO 639-1 code for the language.
func (l Language) Code() string {
	switch l {
	case Urdu:
		return "ur"
	case Punjabi:
		return "pa"
	default:
		return "en"
	}
}

func (l Language) String() string { return string(l) }

// Parse maps a language name or ISO code to a supported language.
// Punjabi carries an alternate code (pnb, Western Punjabi).
func Parse(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en", "eng":
		return English, true
	case "urdu", "ur", "urd":
		return Urdu, true
	case "punjabi", "pa", "pan", "pnb":
		return Punjabi, true
	}
	return English, false
}

// Source records how a detection result was derived.
type Source string

const (
	SourceStatistical     Source = "statistical"
	SourceScriptHeuristic Source = "script_heuristic"
	SourceFallback        Source = "fallback"
)

// Result is the outcome of language detection for one utterance.
type Result struct {
	Language         Language
	ConfidenceSource Source
}
