package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avaaz-ai/avaaz/pkg/llm"
)

func TestCategoryThresholds(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		polarity float64
		want     Category
	}{
		{0.9, CategoryHappy},
		{0.61, CategoryHappy},
		{0.6, CategoryPositive},
		{0.31, CategoryPositive},
		{0.3, CategoryNeutral},
		{0.0, CategoryNeutral},
		{-0.3, CategoryNeutral},
		{-0.31, CategoryNegative},
		{-0.6, CategoryNegative},
		{-0.61, CategorySad},
		{-1.0, CategorySad},
	}
	for _, tc := range cases {
		if got := th.CategoryFor(tc.polarity); got != tc.want {
			t.Errorf("CategoryFor(%v) = %s, want %s", tc.polarity, got, tc.want)
		}
	}
}

func TestToneTable(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		polarity     float64
		subjectivity float64
		want         Tone
	}{
		{0.7, 0.8, ToneEnthusiastic},
		{0.7, 0.2, ToneCheerful},
		{0.4, 0.8, ToneFriendly},
		{0.4, 0.2, TonePositive},
		{-0.7, 0.8, ToneEmpathetic},
		{-0.7, 0.2, ToneSupportive},
		{-0.4, 0.8, ToneConcerned},
		{-0.4, 0.2, ToneGentle},
		{0.1, 0.8, ToneCasual},
		{0.1, 0.2, ToneNeutral},
		{-0.1, 0.4, ToneNeutral},
	}
	for _, tc := range cases {
		if got := th.ToneFor(tc.polarity, tc.subjectivity); got != tc.want {
			t.Errorf("ToneFor(%v, %v) = %s, want %s", tc.polarity, tc.subjectivity, got, tc.want)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds(), nil)
	first := a.Analyze(context.Background(), "I am so happy today!")
	second := a.Analyze(context.Background(), "I am so happy today!")
	if first != second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestAnalyzeHappyUtterance(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds(), nil)
	res := a.Analyze(context.Background(), "I am so happy today!")
	if res.Polarity <= a.Thresholds().Happy {
		t.Fatalf("expected polarity above happy bound, got %v", res.Polarity)
	}
	if res.Category != CategoryHappy {
		t.Fatalf("expected happy category, got %s", res.Category)
	}
	if res.Tone != ToneEnthusiastic && res.Tone != ToneCheerful {
		t.Fatalf("expected enthusiastic or cheerful tone, got %s", res.Tone)
	}
	if res.Intensity != res.Polarity {
		t.Fatalf("expected intensity to mirror |polarity|")
	}
}

func TestAnalyzeEmptyIsNeutral(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds(), nil)
	res := a.Analyze(context.Background(), "   ")
	if res.Category != CategoryNeutral || res.Tone != ToneNeutral {
		t.Fatalf("expected neutral/neutral, got %s/%s", res.Category, res.Tone)
	}
}

type fakeTranslator struct {
	out string
	err error
}

func (f fakeTranslator) TranslateToEnglish(context.Context, string) (string, error) {
	return f.out, f.err
}

func TestAnalyzeTranslatesNonEnglish(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds(), fakeTranslator{out: "I am so happy today!"})
	res := a.Analyze(context.Background(), "میں آج بہت خوش ہوں")
	if res.Category != CategoryHappy {
		t.Fatalf("expected translated text to score happy, got %s", res.Category)
	}
}

func TestAnalyzeTranslationFailureFallsBack(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds(), fakeTranslator{err: errors.New("offline")})
	res := a.Analyze(context.Background(), "میں آج بہت خوش ہوں")
	// Original text carries no lexicon hits; analysis still succeeds.
	if res.Category != CategoryNeutral {
		t.Fatalf("expected neutral fallback, got %s", res.Category)
	}
}

type stalledBackend struct{}

func (stalledBackend) Name() string { return "stalled" }

func (stalledBackend) Complete(ctx context.Context, _ llm.Request) (llm.Reply, error) {
	<-ctx.Done()
	return llm.Reply{}, ctx.Err()
}

func TestAnalyzeStalledTranslatorDoesNotBlock(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds(), llm.NewTranslatorWithTimeout(stalledBackend{}, 20*time.Millisecond))

	start := time.Now()
	res := a.Analyze(context.Background(), "آپ کیسے ہیں")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("analysis blocked %v on a stalled translator", elapsed)
	}
	if res.Category != CategoryNeutral {
		t.Fatalf("expected neutral fallback, got %s", res.Category)
	}
}

func TestGuidelinesSad(t *testing.T) {
	g := ResponseGuidelines(Result{Category: CategorySad, Tone: ToneEmpathetic})
	if !g.Empathetic {
		t.Errorf("expected empathetic flag for sad")
	}
	if g.UseEmoji {
		t.Errorf("sad replies must not use emoji")
	}
	var support, reinforce bool
	for _, f := range g.SuggestedFeatures {
		if f == FeatureEmotionalSupport {
			support = true
		}
		if f == FeaturePositiveReinforcement {
			reinforce = true
		}
	}
	if !support || !reinforce {
		t.Fatalf("expected emotional_support and positive_reinforcement, got %v", g.SuggestedFeatures)
	}
}

func TestGuidelinesHappyAndObjective(t *testing.T) {
	happy := ResponseGuidelines(Result{Category: CategoryHappy, IsSubjective: true})
	if !happy.Enthusiastic || !happy.UseEmoji {
		t.Errorf("expected enthusiastic emoji-friendly guidelines, got %+v", happy)
	}

	objective := ResponseGuidelines(Result{Category: CategoryNeutral, IsObjective: true})
	if !objective.Formal || objective.ResponseLength != "brief" {
		t.Errorf("expected formal brief guidelines, got %+v", objective)
	}
	var facts bool
	for _, f := range objective.SuggestedFeatures {
		if f == FeatureFacts {
			facts = true
		}
	}
	if !facts {
		t.Errorf("expected facts feature for objective input")
	}
}
