package avaaz

import (
	"fmt"
	"strings"

	"github.com/avaaz-ai/avaaz/pkg/adapters/stt"
	"github.com/avaaz-ai/avaaz/pkg/adapters/tts"
	"github.com/avaaz-ai/avaaz/pkg/delivery"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/transports"
)

type STTFactory func(cfg Config) (stt.SpeechToText, error)
type TTSFactory func(cfg Config) (tts.SpeechSynthesis, error)
type LLMFactory func(cfg Config) (llm.GenerationAdapter, error)
type DeliveryFactory func(cfg Config) (delivery.Delivery, error)
type TransportFactory func(cfg Config) (transports.Transport, error)

type ProviderRegistry struct {
	stt        map[string]STTFactory
	tts        map[string]TTSFactory
	llm        map[string]LLMFactory
	delivery   map[string]DeliveryFactory
	transports map[string]TransportFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		stt:        make(map[string]STTFactory),
		tts:        make(map[string]TTSFactory),
		llm:        make(map[string]LLMFactory),
		delivery:   make(map[string]DeliveryFactory),
		transports: make(map[string]TransportFactory),
	}
}

func (r *ProviderRegistry) RegisterSTT(name string, factory STTFactory) {
	r.stt[normalizeProvider(name)] = factory
}

func (r *ProviderRegistry) RegisterTTS(name string, factory TTSFactory) {
	r.tts[normalizeProvider(name)] = factory
}

func (r *ProviderRegistry) RegisterLLM(name string, factory LLMFactory) {
	r.llm[normalizeProvider(name)] = factory
}

func (r *ProviderRegistry) RegisterDelivery(name string, factory DeliveryFactory) {
	r.delivery[normalizeProvider(name)] = factory
}

func (r *ProviderRegistry) RegisterTransport(name string, factory TransportFactory) {
	r.transports[normalizeProvider(name)] = factory
}

func (r *ProviderRegistry) BuildSTT(provider string, cfg Config) (stt.SpeechToText, error) {
	fn := r.stt[normalizeProvider(provider)]
	if fn == nil {
		return nil, fmt.Errorf("stt provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildTTS(provider string, cfg Config) (tts.SpeechSynthesis, error) {
	fn := r.tts[normalizeProvider(provider)]
	if fn == nil {
		return nil, fmt.Errorf("tts provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildLLM(provider string, cfg Config) (llm.GenerationAdapter, error) {
	fn := r.llm[normalizeProvider(provider)]
	if fn == nil {
		return nil, fmt.Errorf("llm provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildDelivery(provider string, cfg Config) (delivery.Delivery, error) {
	fn := r.delivery[normalizeProvider(provider)]
	if fn == nil {
		return nil, fmt.Errorf("delivery provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildTransport(provider string, cfg Config) (transports.Transport, error) {
	fn := r.transports[normalizeProvider(provider)]
	if fn == nil {
		return nil, fmt.Errorf("transport provider not registered: %s", provider)
	}
	return fn(cfg)
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
