package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SUPPORTDESK"
	// DotEnvFile is loaded from the working directory when present.
	DotEnvFile = ".env"
	// configName is searched in the working directory when no path is given.
	configName = "supportdesk"
)

// Load builds the configuration. Precedence, lowest first: defaults, the
// config file (path, or supportdesk.{yaml,json,toml} in the working
// directory), SUPPORTDESK_* environment variables. Variables from a .env
// file never override the real environment. GEMINI_API_KEY is accepted as
// the API key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" && isDotEnv(path) {
		if err := loadDotEnv(path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(DotEnvFile); err == nil {
		if err := loadDotEnv(DotEnvFile); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key: %w", err)
	}

	switch {
	case path != "" && !isDotEnv(path):
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	case path == "":
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("stream", d.Stream)
	v.SetDefault("max_model_calls", d.MaxModelCalls)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("fail_fast", d.FailFast)
	v.SetDefault("guardrail.policy", d.Guardrail.Policy)
	v.SetDefault("guardrail.max_retries", d.Guardrail.MaxRetries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func isDotEnv(path string) bool {
	base := filepath.Base(path)
	return base == DotEnvFile || filepath.Ext(base) == ".env"
}

// loadDotEnv exports the variables of a dotenv file into the process
// environment without overriding values that are already set.
func loadDotEnv(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if os.Getenv(name) != "" {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}

	return nil
}
