package engine

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/germanamz/smartbuddy/pkg/completion"
	"github.com/germanamz/smartbuddy/pkg/enforce"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/retry"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up when none is given.
const DefaultConfigFile = "smartbuddy.yaml"

// DefaultAddr is the listen address for the HTTP front-end.
const DefaultAddr = ":8080"

// Config is the top-level engine configuration.
type Config struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Completion CompletionConfig `yaml:"completion"`
	Retry      RetryConfig      `yaml:"retry"`
	Language   LanguageConfig   `yaml:"language"`
	Server     ServerConfig     `yaml:"server"`
}

// ProviderConfig describes the LLM provider.
type ProviderConfig struct {
	Kind    string        `yaml:"kind"`
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"` // Per-call transport timeout (e.g. "60s").
}

// CompletionConfig holds request defaults.
type CompletionConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// RetryConfig controls the transient-failure retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Jitter      float64       `yaml:"jitter"`
}

// LanguageConfig controls the language check.
type LanguageConfig struct {
	Threshold float64           `yaml:"threshold"`
	Default   language.Language `yaml:"default"`
}

// ServerConfig holds HTTP front-end settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// credentialEnv maps provider kinds to the environment variable that supplies
// their API key when the config leaves it empty.
var credentialEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"grok":      "XAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Kind:    "openai",
			Timeout: modeladapter.DefaultTimeout,
		},
		Completion: CompletionConfig{
			Temperature: completion.DefaultTemperature,
			MaxTokens:   completion.DefaultMaxTokens,
		},
		Retry: RetryConfig{
			MaxAttempts: retry.DefaultMaxAttempts,
			BaseDelay:   retry.DefaultBaseDelay,
			MaxDelay:    retry.DefaultMaxDelay,
			Jitter:      retry.DefaultJitter,
		},
		Language: LanguageConfig{
			Threshold: enforce.DefaultThreshold,
			Default:   language.Default,
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and returns the result.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so secrets can live in the environment (e.g. loaded from a
// .env file). A missing file is not an error. Empty credentials and models
// fall back to the provider's environment variables afterwards.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("engine: parse config: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Provider.Kind == "" {
		c.Provider.Kind = "openai"
	}
	if c.Provider.APIKey == "" {
		if name, ok := credentialEnv[c.Provider.Kind]; ok {
			c.Provider.APIKey = os.Getenv(name)
		}
	}
	if c.Provider.Model == "" && c.Provider.Kind == "openai" {
		c.Provider.Model = os.Getenv("OPENAI_MODEL")
	}
	if c.Provider.Model == "" {
		c.Provider.Model = defaultModels[c.Provider.Kind]
	}
}

// Validate checks that the configuration is internally consistent.
// A missing API key is not a validation error: the engine still starts and
// reports the problem on the first request.
func (c Config) Validate() error {
	if c.Provider.Kind == "" {
		return fmt.Errorf("engine: config: provider kind is required")
	}
	if _, ok := getFactory(c.Provider.Kind); !ok {
		return fmt.Errorf("engine: config: unknown provider kind %q", c.Provider.Kind)
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("engine: config: provider timeout must not be negative")
	}

	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return fmt.Errorf("engine: config: completion temperature %v not in [0, 2]", c.Completion.Temperature)
	}
	if c.Completion.MaxTokens < 0 {
		return fmt.Errorf("engine: config: completion max_tokens must not be negative")
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("engine: config: retry max_attempts must be at least 1")
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return fmt.Errorf("engine: config: retry delays must not be negative")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter >= 1 {
		return fmt.Errorf("engine: config: retry jitter %v not in [0, 1)", c.Retry.Jitter)
	}

	if c.Language.Threshold <= 0 || c.Language.Threshold > 1 {
		return fmt.Errorf("engine: config: language threshold %v not in (0, 1]", c.Language.Threshold)
	}
	if c.Language.Default != "" && !c.Language.Default.Valid() {
		return fmt.Errorf("engine: config: %w: %q", language.ErrUnknownLanguage, c.Language.Default)
	}

	return nil
}

// RetryPolicy converts the retry settings into a retry.Policy.
func (c Config) RetryPolicy() retry.Policy {
	p := retry.Default()
	p.MaxAttempts = c.Retry.MaxAttempts
	p.BaseDelay = c.Retry.BaseDelay
	p.MaxDelay = c.Retry.MaxDelay
	p.Jitter = c.Retry.Jitter
	return p
}
