package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server ServerConfig `koanf:"server" yaml:"server"`
	Models ModelsConfig `koanf:"models" yaml:"models"`
	Batch  BatchConfig  `koanf:"batch" yaml:"batch"`
}

type ServerConfig struct {
	Port            int    `koanf:"port" yaml:"port"`
	LogLevel        string `koanf:"log_level" yaml:"log_level"`
	ReadTimeout     string `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type ModelsConfig struct {
	Default        string          `koanf:"default" yaml:"default"`
	RequestTimeout string          `koanf:"request_timeout" yaml:"request_timeout"`
	Registry       []ModelRegistry `koanf:"registry" yaml:"registry"`
}

type ModelRegistry struct {
	Name           string            `koanf:"name" yaml:"name"`
	Provider       string            `koanf:"provider" yaml:"provider"`
	Model          string            `koanf:"model" yaml:"model,omitempty"`
	BaseURL        string            `koanf:"base_url" yaml:"base_url,omitempty"`
	APIKey         string            `koanf:"api_key" yaml:"api_key,omitempty"`
	Headers        map[string]string `koanf:"headers" yaml:"headers,omitempty"`
	MaxTokens      int               `koanf:"max_tokens" yaml:"max_tokens,omitempty"`
	StrictJSON     bool              `koanf:"strict_json" yaml:"strict_json,omitempty"`
	RequestTimeout string            `koanf:"request_timeout" yaml:"request_timeout,omitempty"`
}

type BatchConfig struct {
	Concurrency int `koanf:"concurrency" yaml:"concurrency"`
}

const (
	DefaultServerPort            = 8080
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "30s"
	DefaultServerWriteTimeout    = "90s"
	DefaultServerShutdownTimeout = "10s"
	DefaultModelDefault          = "claude"
	DefaultModelRequestTimeout   = "60s"
	DefaultAnthropicBaseURL      = "https://api.anthropic.com/v1"
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultOllamaBaseURL         = "http://localhost:11434/v1"
	DefaultOllamaAPIKey          = "ollama"
	DefaultBatchConcurrency      = 4
	EnvPrefix                    = "LISTINGAI_"
)

// providerKeyEnv maps provider types to the conventional API key variable.
var providerKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"custom":    "CUSTOM_LLM_API_KEY",
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":             DefaultServerPort,
		"server.log_level":        DefaultServerLogLevel,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"models.default":          DefaultModelDefault,
		"models.request_timeout":  DefaultModelRequestTimeout,
		"models.registry": []ModelRegistry{
			{Name: "claude", Provider: "anthropic", BaseURL: DefaultAnthropicBaseURL},
			{Name: "gpt", Provider: "openai", BaseURL: DefaultOpenAIBaseURL},
			{Name: "local", Provider: "ollama", BaseURL: DefaultOllamaBaseURL, Model: "llama3.1"},
		},
		"batch.concurrency": DefaultBatchConcurrency,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".listingai", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "custom"
		}
		if m.Name == "" {
			cfg.Models.Registry[i].Name = cfg.Models.Registry[i].Provider
		}
	}

	// Post-Process: Inject standard Env Vars if missing
	for provider, envKey := range providerKeyEnv {
		key := os.Getenv(envKey)
		if key == "" {
			continue
		}
		for i, m := range cfg.Models.Registry {
			if m.Provider == provider && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}

	return &cfg, nil
}

// Lookup returns the registry entry with the given name.
func (c ModelsConfig) Lookup(name string) (ModelRegistry, bool) {
	for _, entry := range c.Registry {
		if entry.Name == name {
			return entry, true
		}
	}
	return ModelRegistry{}, false
}
