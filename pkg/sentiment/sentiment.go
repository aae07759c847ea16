// Package sentiment scores utterance polarity/subjectivity and derives
// the response tone that steers reply style.
package sentiment

// Category buckets polarity into coarse emotional states.
type Category string

const (
	CategoryHappy    Category = "happy"
	CategoryPositive Category = "positive"
	CategoryNeutral  Category = "neutral"
	CategoryNegative Category = "negative"
	CategorySad      Category = "sad"
)

// Tone is the response register derived from exact polarity/subjectivity.
type Tone string

const (
	ToneEnthusiastic Tone = "enthusiastic"
	ToneCheerful     Tone = "cheerful"
	ToneFriendly     Tone = "friendly"
	TonePositive     Tone = "positive"
	ToneCasual       Tone = "casual"
	ToneNeutral      Tone = "neutral"
	ToneGentle       Tone = "gentle"
	ToneConcerned    Tone = "concerned"
	ToneSupportive   Tone = "supportive"
	ToneEmpathetic   Tone = "empathetic"
)

// Result is the full sentiment assessment for one utterance. Category and
// tone are pure functions of (polarity, subjectivity) under the configured
// thresholds.
type Result struct {
	Polarity     float64
	Subjectivity float64
	Category     Category
	Tone         Tone
	IsObjective  bool
	IsSubjective bool
	Intensity    float64
}

// Thresholds is the tuning policy for category and tone boundaries.
// These are configuration-level values, not implementation constants.
type Thresholds struct {
	// Category bounds on polarity.
	Happy    float64 // above: happy
	Positive float64 // above: positive
	Negative float64 // below: negative
	Sad      float64 // below: sad

	// Tone bounds on polarity. The mild bound deliberately differs from
	// the positive/negative category bound.
	ToneStrong float64
	ToneMild   float64

	// Subjectivity split for tone selection and objectivity flags.
	ToneSubjectivity float64
	Objective        float64
	Subjective       float64
}

// DefaultThresholds returns the calibrated policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Happy:            0.6,
		Positive:         0.3,
		Negative:         -0.3,
		Sad:              -0.6,
		ToneStrong:       0.6,
		ToneMild:         0.2,
		ToneSubjectivity: 0.5,
		Objective:        0.4,
		Subjective:       0.6,
	}
}

// CategoryFor buckets a polarity score.
func (t Thresholds) CategoryFor(polarity float64) Category {
	switch {
	case polarity > t.Positive:
		if polarity > t.Happy {
			return CategoryHappy
		}
		return CategoryPositive
	case polarity < t.Negative:
		if polarity < t.Sad {
			return CategorySad
		}
		return CategoryNegative
	default:
		return CategoryNeutral
	}
}

// ToneFor derives the response register from exact polarity and
// subjectivity, not from the category bucket.
func (t Thresholds) ToneFor(polarity, subjectivity float64) Tone {
	subjective := subjectivity > t.ToneSubjectivity
	switch {
	case polarity > t.ToneStrong:
		if subjective {
			return ToneEnthusiastic
		}
		return ToneCheerful
	case polarity > t.ToneMild:
		if subjective {
			return ToneFriendly
		}
		return TonePositive
	case polarity < -t.ToneStrong:
		if subjective {
			return ToneEmpathetic
		}
		return ToneSupportive
	case polarity < -t.ToneMild:
		if subjective {
			return ToneConcerned
		}
		return ToneGentle
	default:
		if subjective {
			return ToneCasual
		}
		return ToneNeutral
	}
}

// resultFor assembles a Result from raw scores.
func (t Thresholds) resultFor(polarity, subjectivity float64) Result {
	return Result{
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Category:     t.CategoryFor(polarity),
		Tone:         t.ToneFor(polarity, subjectivity),
		IsObjective:  subjectivity < t.Objective,
		IsSubjective: subjectivity > t.Subjective,
		Intensity:    abs(polarity),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
