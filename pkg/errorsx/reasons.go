package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// Recoverable: absorbed inside the pipeline with documented defaults.
	ReasonDetection   ReasonCode = "language_detection"
	ReasonAnalysis    ReasonCode = "sentiment_analysis"
	ReasonTranslation ReasonCode = "translation"

	// Terminal for the message: the user gets a safe reply instead.
	ReasonTranscription  ReasonCode = "transcription"
	ReasonUnintelligible ReasonCode = "unintelligible_audio"
	ReasonGeneration     ReasonCode = "generation"
	ReasonGenRateLimit   ReasonCode = "generation_rate_limit"

	// Non-terminal: text delivery proceeds without audio.
	ReasonSynthesis    ReasonCode = "synthesis"
	ReasonSynRateLimit ReasonCode = "synthesis_rate_limit"

	ReasonHistory  ReasonCode = "history_read"
	ReasonDelivery ReasonCode = "delivery_send"

	ReasonTransportDecode           ReasonCode = "webhook_decode"
	ReasonTransportInvalidSignature ReasonCode = "webhook_invalid_signature"
)
