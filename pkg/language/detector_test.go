package language

import "testing"

func TestDetectArabicScriptIsUrdu(t *testing.T) {
	d := NewDetector()
	res := d.Detect("السلام علیکم آپ کیسے ہیں")
	if res.Language != Urdu {
		t.Fatalf("expected urdu, got %s (%s)", res.Language, res.ConfidenceSource)
	}
}

func TestDetectGurmukhiScriptIsPunjabi(t *testing.T) {
	d := NewDetector()
	res := d.Detect("ਸਤ ਸ੍ਰੀ ਅਕਾਲ ਤੁਸੀਂ ਕਿਵੇਂ ਹੋ")
	if res.Language != Punjabi {
		t.Fatalf("expected punjabi, got %s (%s)", res.Language, res.ConfidenceSource)
	}
}

func TestDetectEmptyFallsBackToEnglish(t *testing.T) {
	d := NewDetector()
	res := d.Detect("   ")
	if res.Language != English || res.ConfidenceSource != SourceFallback {
		t.Fatalf("expected english fallback, got %+v", res)
	}
}

func TestDetectEnglish(t *testing.T) {
	d := NewDetector()
	res := d.Detect("Good morning, how is the weather looking today in Lahore?")
	if res.Language != English {
		t.Fatalf("expected english, got %s (%s)", res.Language, res.ConfidenceSource)
	}
}

func TestDetectWithHintOnlyOnFallback(t *testing.T) {
	d := NewDetector()

	res := d.DetectWithHint("?!", "ur")
	if res.Language != Urdu {
		t.Fatalf("expected hint to apply on fallback, got %s", res.Language)
	}

	res = d.DetectWithHint("ਸਤ ਸ੍ਰੀ ਅਕਾਲ ਜੀ", "ur")
	if res.Language != Punjabi {
		t.Fatalf("expected detection to win over hint, got %s", res.Language)
	}
}

func TestParseAlternateCodes(t *testing.T) {
	for _, code := range []string{"pa", "pan", "pnb", "Punjabi"} {
		lang, ok := Parse(code)
		if !ok || lang != Punjabi {
			t.Errorf("Parse(%q) = %s, %v; want punjabi", code, lang, ok)
		}
	}
	if _, ok := Parse("fr"); ok {
		t.Errorf("expected unsupported code to report !ok")
	}
}
