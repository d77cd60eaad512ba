package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Provider   ProviderConfig
	Generation GenerationConfig
	News       NewsConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type ProviderConfig struct {
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	OpenAIBaseURL    string
	AnthropicBaseURL string
}

type GenerationConfig struct {
	AttemptTimeout string
	MaxRetries     int
}

// Timeout returns the per-attempt deadline for provider calls, falling back
// to 45s when the configured value is unparseable.
func (g GenerationConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(g.AttemptTimeout)
	if err != nil || d <= 0 {
		return 45 * time.Second
	}
	return d
}

type NewsConfig struct {
	FeedTimeout    string
	DefaultCountry string
}

func (n NewsConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(n.FeedTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Provider: ProviderConfig{
			OpenAIBaseURL:    "https://api.openai.com/v1",
			AnthropicBaseURL: "https://api.anthropic.com",
		},
		Generation: GenerationConfig{
			AttemptTimeout: "45s",
			MaxRetries:     2,
		},
		News: NewsConfig{
			FeedTimeout:    "10s",
			DefaultCountry: "United Kingdom",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.draftforge.app) and
// secrets fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/draftforge/config.json
// and secrets live in $XDG_DATA_HOME/draftforge/secrets.json.
//
// Environment variables (DRAFTFORGE_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), NewKeychain())
}

func loadWith(b ConfigBackend, kc Keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Fall back to the platform secret store for API keys still empty.
	if cfg.Provider.OpenAIAPIKey == "" {
		if key, err := kc.Get(keychainService, "openai_api_key"); err == nil && key != "" {
			cfg.Provider.OpenAIAPIKey = key
		}
	}
	if cfg.Provider.AnthropicAPIKey == "" {
		if key, err := kc.Get(keychainService, "anthropic_api_key"); err == nil && key != "" {
			cfg.Provider.AnthropicAPIKey = key
		}
	}

	if cfg.Provider.OpenAIAPIKey == "" {
		msg := "missing required config: OpenAI API key. " +
			"Set it via environment variable DRAFTFORGE_OPENAI_API_KEY" +
			apiKeyHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}
