// Package config loads the desk configuration from defaults, an optional
// config file, a .env file and SUPPORTDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/supportmesh/desk"
	"github.com/hupe1980/supportmesh/logging"
)

// ErrUnknownProvider is returned for an unsupported model provider.
var ErrUnknownProvider = errors.New("unknown model provider")

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Providers lists the supported model providers.
var Providers = []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic}

// Config holds every setting of the support desk.
type Config struct {
	// Provider selects the model adapter (openai, gemini or anthropic).
	Provider string `mapstructure:"provider"`
	// Model overrides the provider's default model name.
	Model string `mapstructure:"model"`
	// APIKey authenticates against the provider. GEMINI_API_KEY is honored.
	APIKey string `mapstructure:"api_key"`
	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	// Stream requests streamed model responses.
	Stream bool `mapstructure:"stream"`

	// MaxModelCalls bounds model calls per turn (0 = unlimited).
	MaxModelCalls int `mapstructure:"max_model_calls"`
	// RequestTimeout bounds a single turn (0 = none).
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// FailFast ends the session on the first agent error.
	FailFast bool `mapstructure:"fail_fast"`

	Guardrail GuardrailConfig `mapstructure:"guardrail"`
	Log       LogConfig       `mapstructure:"log"`
}

// GuardrailConfig configures guardrail enforcement.
type GuardrailConfig struct {
	Policy     string `mapstructure:"policy"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:      ProviderOpenAI,
		Temperature:   0.7,
		MaxModelCalls: 8,
		Guardrail: GuardrailConfig{
			Policy:     string(desk.PolicyBlock),
			MaxRetries: 1,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Validate checks enumerations and bounds.
func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	if _, err := desk.ParsePolicy(c.Guardrail.Policy); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q (want console or json)", c.Log.Format)
	}
	if c.MaxModelCalls < 0 {
		return fmt.Errorf("max_model_calls must not be negative")
	}
	if c.MaxTokens < 0 || c.MaxTokens > math.MaxInt32 {
		return fmt.Errorf("max_tokens must be between 0 and %d", math.MaxInt32)
	}
	if c.Guardrail.MaxRetries < 0 {
		return fmt.Errorf("guardrail.max_retries must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}
