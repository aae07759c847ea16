package avaaz

import (
	"fmt"

	"github.com/avaaz-ai/avaaz/pkg/adapters/stt"
	"github.com/avaaz-ai/avaaz/pkg/adapters/tts"
	"github.com/avaaz-ai/avaaz/pkg/configutil"
	"github.com/avaaz-ai/avaaz/pkg/delivery"
	deliverytwilio "github.com/avaaz-ai/avaaz/pkg/delivery/twilio"
	"github.com/avaaz-ai/avaaz/pkg/language"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/providers/deepgram"
	"github.com/avaaz-ai/avaaz/pkg/providers/deepseek"
	"github.com/avaaz-ai/avaaz/pkg/providers/elevenlabs"
	"github.com/avaaz-ai/avaaz/pkg/providers/mock"
	"github.com/avaaz-ai/avaaz/pkg/transports"
	transportmock "github.com/avaaz-ai/avaaz/pkg/transports/mock"
	transporttwilio "github.com/avaaz-ai/avaaz/pkg/transports/twilio"
)

// RegisterDefaults wires the built-in providers into a registry.
func RegisterDefaults(reg *ProviderRegistry) {
	registerSTTDefaults(reg)
	registerTTSDefaults(reg)
	registerLLMDefaults(reg)
	registerDeliveryDefaults(reg)
	registerTransportDefaults(reg)
}

func registerSTTDefaults(reg *ProviderRegistry) {
	reg.RegisterSTT("deepgram", func(cfg Config) (stt.SpeechToText, error) {
		if err := validateSettings("vendors.stt.settings", cfg.Vendors.STT.Settings, configutil.Schema{
			Required: []string{"api_key"},
			Optional: []string{"model", "language"},
		}); err != nil {
			return nil, err
		}
		var settings struct {
			APIKey   string `mapstructure:"api_key"`
			Model    string `mapstructure:"model"`
			Language string `mapstructure:"language"`
		}
		if err := configutil.DecodeSettings(cfg.Vendors.STT.Settings, &settings); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.stt.settings.api_key"); err != nil {
			return nil, err
		}
		return deepgram.New(deepgram.Config{
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			Language: settings.Language,
		})
	})

	reg.RegisterSTT("mock", func(cfg Config) (stt.SpeechToText, error) {
		var settings struct {
			Transcript string `mapstructure:"transcript"`
		}
		if err := configutil.DecodeSettings(cfg.Vendors.STT.Settings, &settings); err != nil {
			return nil, err
		}
		return &mock.SpeechToText{Transcript: settings.Transcript}, nil
	})
}

func registerTTSDefaults(reg *ProviderRegistry) {
	reg.RegisterTTS("elevenlabs", func(cfg Config) (tts.SpeechSynthesis, error) {
		if err := validateSettings("vendors.tts.settings", cfg.Vendors.TTS.Settings, configutil.Schema{
			Required: []string{"api_key", "voice_id"},
			Optional: []string{"model_id", "output_format", "voice_ids"},
		}); err != nil {
			return nil, err
		}
		var settings struct {
			APIKey       string            `mapstructure:"api_key"`
			VoiceID      string            `mapstructure:"voice_id"`
			ModelID      string            `mapstructure:"model_id"`
			OutputFormat string            `mapstructure:"output_format"`
			VoiceIDs     map[string]string `mapstructure:"voice_ids"`
		}
		if err := configutil.DecodeSettings(cfg.Vendors.TTS.Settings, &settings); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.tts.settings.api_key"); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.VoiceID, "vendors.tts.settings.voice_id"); err != nil {
			return nil, err
		}
		voiceIDs := make(map[language.Language]string, len(settings.VoiceIDs))
		for name, id := range settings.VoiceIDs {
			lang, ok := language.Parse(name)
			if !ok {
				return nil, fmt.Errorf("vendors.tts.settings.voice_ids: unsupported language %q", name)
			}
			voiceIDs[lang] = id
		}
		return elevenlabs.New(elevenlabs.Config{
			APIKey:         settings.APIKey,
			ModelID:        settings.ModelID,
			OutputFormat:   settings.OutputFormat,
			VoiceIDs:       voiceIDs,
			DefaultVoiceID: settings.VoiceID,
		})
	})

	reg.RegisterTTS("mock", func(cfg Config) (tts.SpeechSynthesis, error) {
		return &mock.SpeechSynthesis{}, nil
	})
}

func registerLLMDefaults(reg *ProviderRegistry) {
	reg.RegisterLLM("deepseek", func(cfg Config) (llm.GenerationAdapter, error) {
		if err := validateSettings("vendors.llm.settings", cfg.Vendors.LLM.Settings, configutil.Schema{
			Required: []string{"api_key"},
			Optional: []string{"model", "base_url", "temperature"},
		}); err != nil {
			return nil, err
		}
		var settings struct {
			APIKey      string  `mapstructure:"api_key"`
			Model       string  `mapstructure:"model"`
			BaseURL     string  `mapstructure:"base_url"`
			Temperature float64 `mapstructure:"temperature"`
		}
		if err := configutil.DecodeSettings(cfg.Vendors.LLM.Settings, &settings); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.APIKey, "vendors.llm.settings.api_key"); err != nil {
			return nil, err
		}
		return deepseek.New(deepseek.Config{
			APIKey:      settings.APIKey,
			Model:       settings.Model,
			BaseURL:     settings.BaseURL,
			Temperature: settings.Temperature,
		})
	})

	reg.RegisterLLM("mock", func(cfg Config) (llm.GenerationAdapter, error) {
		var settings struct {
			ReplyText string `mapstructure:"reply_text"`
		}
		if err := configutil.DecodeSettings(cfg.Vendors.LLM.Settings, &settings); err != nil {
			return nil, err
		}
		return mock.NewGeneration(mock.GenerationConfig{ReplyText: settings.ReplyText}), nil
	})
}

func registerDeliveryDefaults(reg *ProviderRegistry) {
	reg.RegisterDelivery("twilio", func(cfg Config) (delivery.Delivery, error) {
		if err := validateSettings("vendors.delivery.settings", cfg.Vendors.Delivery.Settings, configutil.Schema{
			Required: []string{"account_sid", "auth_token", "from_number"},
		}); err != nil {
			return nil, err
		}
		var settings deliverytwilio.Config
		if err := configutil.DecodeSettings(cfg.Vendors.Delivery.Settings, &settings); err != nil {
			return nil, err
		}
		return deliverytwilio.New(settings, nil)
	})

	reg.RegisterDelivery("mock", func(cfg Config) (delivery.Delivery, error) {
		return &mock.Delivery{}, nil
	})
}

func registerTransportDefaults(reg *ProviderRegistry) {
	reg.RegisterTransport("twilio", func(cfg Config) (transports.Transport, error) {
		if err := validateSettings("transports.settings", cfg.Transports.Settings, configutil.Schema{
			Required: []string{"account_sid", "auth_token"},
			Optional: []string{"server_addr", "public_url", "webhook_path", "max_media_bytes"},
		}); err != nil {
			return nil, err
		}
		var settings transporttwilio.Config
		if err := configutil.DecodeSettings(cfg.Transports.Settings, &settings); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.AccountSID, "transports.settings.account_sid"); err != nil {
			return nil, err
		}
		if err := configutil.RequireString(settings.AuthToken, "transports.settings.auth_token"); err != nil {
			return nil, err
		}
		return transporttwilio.New(settings), nil
	})

	reg.RegisterTransport("mock", func(cfg Config) (transports.Transport, error) {
		return transportmock.New(), nil
	})
}

func validateSettings(path string, input map[string]any, schema configutil.Schema) error {
	if err := configutil.ValidateSettings(input, schema); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
