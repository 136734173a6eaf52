package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the static configuration loaded once at startup from
// config.yaml. Secrets come from the environment, see Secrets.
//
// Numeric fields treat zero as "unset" and fall back to their default,
// so a value of 0 cannot be configured explicitly. Fields where "off"
// is meaningful accept -1 instead (see SessionConfig.TTLSeconds).
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Resolver ResolverConfig `yaml:"resolver"`
	Session  SessionConfig  `yaml:"session"`
	LLM      LLMConfig      `yaml:"llm"`
	Router   RouterConfig   `yaml:"router"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type ResolverConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	MinMatches     int     `yaml:"min_matches"`
}

type SessionConfig struct {
	Backend     string `yaml:"backend"` // memory or redis
	MaxMessages int    `yaml:"max_messages"`
	// TTLSeconds expires idle redis sessions. 0 means the default
	// (3600), -1 keeps sessions without expiry.
	TTLSeconds int `yaml:"ttl_seconds"`
}

// TTL returns the session expiry as a duration, with zero meaning no
// expiry when TTLSeconds is negative.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLSeconds < 0 {
		return 0
	}
	return time.Duration(s.TTLSeconds) * time.Second
}

type LLMConfig struct {
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	SystemPrompt   string  `yaml:"system_prompt"`
}

type RouterConfig struct {
	LookupKeywords []string `yaml:"lookup_keywords"`
	MaxResults     int      `yaml:"max_results"`
}

type TelegramConfig struct {
	APIBase            string `yaml:"api_base"`
	PollTimeoutSeconds int    `yaml:"poll_timeout_seconds"`
	RequestTimeoutSecs int    `yaml:"request_timeout_seconds"`
}

// Load reads configuration from the YAML file and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "stores.json"
	}
	if c.Resolver.FuzzyThreshold == 0 {
		c.Resolver.FuzzyThreshold = 0.75
	}
	if c.Resolver.MinMatches == 0 {
		c.Resolver.MinMatches = 1
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.MaxMessages == 0 {
		c.Session.MaxMessages = 30
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = 3600 // -1 disables expiry, see SessionConfig
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4.1-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 250
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 20
	}
	if len(c.Router.LookupKeywords) == 0 {
		c.Router.LookupKeywords = []string{"where", "find", "store", "shop", "search"}
	}
	if c.Router.MaxResults == 0 {
		c.Router.MaxResults = 3
	}
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = "https://api.telegram.org"
	}
	if c.Telegram.PollTimeoutSeconds == 0 {
		c.Telegram.PollTimeoutSeconds = 30
	}
	if c.Telegram.RequestTimeoutSecs == 0 {
		c.Telegram.RequestTimeoutSecs = 40
	}
}

// Secrets holds values that never belong in config.yaml.
type Secrets struct {
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY" required:"true"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	RedisURL         string `envconfig:"REDIS_URL"`
}

// LoadSecrets reads secrets from environment variables.
func LoadSecrets() (*Secrets, error) {
	var secrets Secrets
	if err := envconfig.Process("", &secrets); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	return &secrets, nil
}
