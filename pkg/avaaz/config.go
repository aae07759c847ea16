// Package avaaz wires configuration, providers, and the message pipeline
// into a runnable engine.
package avaaz

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/avaaz-ai/avaaz/pkg/configutil"
	"github.com/avaaz-ai/avaaz/pkg/pipeline"
	"github.com/avaaz-ai/avaaz/pkg/sentiment"
)

type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	// DrainTimeoutMS bounds how long Stop waits for in-flight messages.
	DrainTimeoutMS int                 `mapstructure:"drain_timeout_ms"`
	Agent         AgentConfig         `mapstructure:"agent"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Sentiment     SentimentConfig     `mapstructure:"sentiment"`
	Context       ContextConfig       `mapstructure:"context"`
	Vendors       VendorsConfig       `mapstructure:"vendors"`
	Transports    TransportsConfig    `mapstructure:"transports"`
	Resilience    ResilienceConfig    `mapstructure:"resilience"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Privacy       PrivacyConfig       `mapstructure:"privacy"`
}

type AgentConfig struct {
	Persona string `mapstructure:"persona"`
}

type PipelineConfig struct {
	TranscribeTimeoutMS  int    `mapstructure:"transcribe_timeout_ms"`
	HistoryReadTimeoutMS int    `mapstructure:"history_read_timeout_ms"`
	GenerateTimeoutMS    int    `mapstructure:"generate_timeout_ms"`
	SynthesizeTimeoutMS  int    `mapstructure:"synthesize_timeout_ms"`
	DeliverTimeoutMS     int    `mapstructure:"deliver_timeout_ms"`
	ApologyText          string `mapstructure:"apology_text"`
	RetypeText           string `mapstructure:"retype_text"`
}

func (c PipelineConfig) toPipeline() pipeline.Config {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return pipeline.Config{
		Timeouts: pipeline.Timeouts{
			Transcribe:  ms(c.TranscribeTimeoutMS),
			HistoryRead: ms(c.HistoryReadTimeoutMS),
			Generate:    ms(c.GenerateTimeoutMS),
			Synthesize:  ms(c.SynthesizeTimeoutMS),
			Deliver:     ms(c.DeliverTimeoutMS),
		},
		ApologyText: c.ApologyText,
		RetypeText:  c.RetypeText,
	}
}

type SentimentConfig struct {
	// Polarity cut points, most positive first. Pointers so that an
	// explicit 0.0 boundary is distinguishable from an absent key.
	HappyThreshold    *float64 `mapstructure:"happy_threshold"`
	PositiveThreshold *float64 `mapstructure:"positive_threshold"`
	NegativeThreshold *float64 `mapstructure:"negative_threshold"`
	SadThreshold      *float64 `mapstructure:"sad_threshold"`
	// Translation routes non-english text through the generation
	// backend before scoring.
	TranslateBeforeScoring bool `mapstructure:"translate_before_scoring"`
	TranslateTimeoutMS     int  `mapstructure:"translate_timeout_ms"`
}

func (c SentimentConfig) toThresholds() sentiment.Thresholds {
	t := sentiment.DefaultThresholds()
	t.Happy = configutil.FloatValue(c.HappyThreshold, t.Happy)
	t.Positive = configutil.FloatValue(c.PositiveThreshold, t.Positive)
	t.Negative = configutil.FloatValue(c.NegativeThreshold, t.Negative)
	t.Sad = configutil.FloatValue(c.SadThreshold, t.Sad)
	return t
}

type ContextConfig struct {
	// MaxHistory bounds stored exchanges per channel; HistoryWindow
	// bounds how many of those are rendered into the prompt.
	MaxHistory    int `mapstructure:"max_history"`
	HistoryWindow int `mapstructure:"history_window"`
}

type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type VendorsConfig struct {
	STT      VendorConfig `mapstructure:"stt"`
	TTS      VendorConfig `mapstructure:"tts"`
	LLM      VendorConfig `mapstructure:"llm"`
	Delivery VendorConfig `mapstructure:"delivery"`
}

type TransportsConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type ResilienceConfig struct {
	Retries           int  `mapstructure:"retries"`
	RetryBackoffMS    int  `mapstructure:"retry_backoff_ms"`
	UseCircuitBreaker bool `mapstructure:"use_circuit_breaker"`
	BreakerThreshold  int  `mapstructure:"breaker_threshold"`
	BreakerCooldownMS int  `mapstructure:"breaker_cooldown_ms"`
}

type ObservabilityConfig struct {
	AsyncBuffer int `mapstructure:"async_buffer"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("drain_timeout_ms", 15000)
	v.SetDefault("pipeline.transcribe_timeout_ms", 30000)
	v.SetDefault("pipeline.history_read_timeout_ms", 5000)
	v.SetDefault("pipeline.generate_timeout_ms", 60000)
	v.SetDefault("pipeline.synthesize_timeout_ms", 15000)
	v.SetDefault("pipeline.deliver_timeout_ms", 15000)
	v.SetDefault("sentiment.happy_threshold", 0.6)
	v.SetDefault("sentiment.positive_threshold", 0.3)
	v.SetDefault("sentiment.negative_threshold", -0.3)
	v.SetDefault("sentiment.sad_threshold", -0.6)
	v.SetDefault("sentiment.translate_before_scoring", true)
	v.SetDefault("sentiment.translate_timeout_ms", 10000)
	v.SetDefault("context.max_history", 12)
	v.SetDefault("context.history_window", 6)
	v.SetDefault("resilience.retries", 2)
	v.SetDefault("resilience.retry_backoff_ms", 200)
	v.SetDefault("resilience.use_circuit_breaker", true)
	v.SetDefault("resilience.breaker_threshold", 3)
	v.SetDefault("resilience.breaker_cooldown_ms", 30000)
	v.SetDefault("observability.async_buffer", 256)
	v.SetDefault("privacy.redact_pii", true)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Transports.Provider) == "" {
		return fmt.Errorf("transports.provider is required")
	}
	if strings.TrimSpace(c.Vendors.LLM.Provider) == "" {
		return fmt.Errorf("vendors.llm.provider is required")
	}
	if strings.TrimSpace(c.Vendors.Delivery.Provider) == "" {
		return fmt.Errorf("vendors.delivery.provider is required")
	}
	// STT and TTS are optional: a text-only deployment runs without them.
	return nil
}

func expandEnvStrings(cfg *Config) {
	expandValue(reflect.ValueOf(cfg))
	cfg.Vendors.STT.Settings = expandSettings(cfg.Vendors.STT.Settings)
	cfg.Vendors.TTS.Settings = expandSettings(cfg.Vendors.TTS.Settings)
	cfg.Vendors.LLM.Settings = expandSettings(cfg.Vendors.LLM.Settings)
	cfg.Vendors.Delivery.Settings = expandSettings(cfg.Vendors.Delivery.Settings)
	cfg.Transports.Settings = expandSettings(cfg.Transports.Settings)
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandAny(val[i])
		}
		return val
	case map[string]any:
		for k, v := range val {
			val[k] = expandAny(v)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = expandAny(v)
		}
		return out
	default:
		return v
	}
}

func expandValue(v reflect.Value) {
	if !v.IsValid() {
		return
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		expandValue(v.Elem())
		return
	}
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			expandValue(v.Field(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(os.ExpandEnv(v.String()))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			expandValue(v.Index(i))
		}
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && v.Type().Elem().Kind() == reflect.String {
			for _, key := range v.MapKeys() {
				val := v.MapIndex(key)
				expanded := os.ExpandEnv(val.String())
				v.SetMapIndex(key, reflect.ValueOf(expanded))
			}
		}
	}
}
