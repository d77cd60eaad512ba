package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	desc    string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "DRAFTFORGE_SERVER_PORT",
		desc:    "HTTP port the draft API listens on (localhost only)",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "DRAFTFORGE_STORAGE_DATA_DIR",
		desc:    "directory holding the SQLite database and PID file",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "provider.openai_api_key", typ: kString, env: "DRAFTFORGE_OPENAI_API_KEY",
		desc:    "OpenAI API key used for gpt-* draft models",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Provider.OpenAIAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.OpenAIAPIKey },
	},
	{
		key: "provider.anthropic_api_key", typ: kString, env: "DRAFTFORGE_ANTHROPIC_API_KEY",
		desc:    "Anthropic API key used for claude-* draft models",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Provider.AnthropicAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.AnthropicAPIKey },
	},
	{
		key: "provider.openai_base_url", typ: kString, env: "DRAFTFORGE_OPENAI_BASE_URL",
		desc:    "override for the OpenAI API base URL (proxies, gateways)",
		apply:   func(cfg *Config, v any) { cfg.Provider.OpenAIBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.OpenAIBaseURL },
	},
	{
		key: "provider.anthropic_base_url", typ: kString, env: "DRAFTFORGE_ANTHROPIC_BASE_URL",
		desc:    "override for the Anthropic API base URL (proxies, gateways)",
		apply:   func(cfg *Config, v any) { cfg.Provider.AnthropicBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.AnthropicBaseURL },
	},
	{
		key: "generation.attempt_timeout", typ: kString, env: "DRAFTFORGE_GENERATION_ATTEMPT_TIMEOUT",
		desc:    "per-attempt model call timeout, e.g. 45s",
		apply:   func(cfg *Config, v any) { cfg.Generation.AttemptTimeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.AttemptTimeout },
	},
	{
		key: "generation.max_retries", typ: kInt, env: "DRAFTFORGE_GENERATION_MAX_RETRIES",
		desc:    "retries after a failed model call; the last one uses the fallback model",
		apply:   func(cfg *Config, v any) { cfg.Generation.MaxRetries = v.(int) },
		extract: func(cfg Config) any { return cfg.Generation.MaxRetries },
	},
	{
		key: "news.feed_timeout", typ: kString, env: "DRAFTFORGE_NEWS_FEED_TIMEOUT",
		desc:    "timeout for fetching RSS news feeds, e.g. 10s",
		apply:   func(cfg *Config, v any) { cfg.News.FeedTimeout = v.(string) },
		extract: func(cfg Config) any { return cfg.News.FeedTimeout },
	},
	{
		key: "news.default_country", typ: kString, env: "DRAFTFORGE_NEWS_DEFAULT_COUNTRY",
		desc:    "country used for news searches when the profile has none",
		apply:   func(cfg *Config, v any) { cfg.News.DefaultCountry = v.(string) },
		extract: func(cfg Config) any { return cfg.News.DefaultCountry },
	},
	{
		key: "log.level", typ: kString, env: "DRAFTFORGE_LOG_LEVEL",
		desc:    "server log level: info or debug",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
