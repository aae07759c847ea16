package sentiment

// Feature names suggested for the reply.
const (
	FeatureEmotionalSupport      = "emotional_support"
	FeaturePositiveReinforcement = "positive_reinforcement"
	FeatureCelebration           = "celebration"
	FeatureEngagement            = "engagement"
	FeatureFacts                 = "facts"
	FeatureStructuredResponse    = "structured_response"
)

// Guidelines describe how a reply should be shaped for a given sentiment.
type Guidelines struct {
	Tone              Tone
	Empathetic        bool
	Enthusiastic      bool
	Formal            bool
	UseEmoji          bool
	ResponseLength    string // "brief" or "detailed"
	SuggestedFeatures []string
}

// ResponseGuidelines maps a sentiment result to reply-shaping flags.
// Pure lookup, no side effects.
func ResponseGuidelines(r Result) Guidelines {
	g := Guidelines{
		Tone:           r.Tone,
		Empathetic:     r.Category == CategorySad || r.Category == CategoryNegative,
		Enthusiastic:   r.Category == CategoryHappy || r.Category == CategoryPositive,
		Formal:         r.IsObjective,
		UseEmoji:       r.IsSubjective && r.Category != CategorySad,
		ResponseLength: "detailed",
	}
	if r.IsObjective {
		g.ResponseLength = "brief"
	}

	switch {
	case r.Category == CategorySad:
		g.SuggestedFeatures = append(g.SuggestedFeatures,
			FeatureEmotionalSupport, FeaturePositiveReinforcement)
	case r.Category == CategoryHappy:
		g.SuggestedFeatures = append(g.SuggestedFeatures,
			FeatureCelebration, FeatureEngagement)
	case r.IsObjective:
		g.SuggestedFeatures = append(g.SuggestedFeatures,
			FeatureFacts, FeatureStructuredResponse)
	}
	return g
}
