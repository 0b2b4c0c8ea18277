package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

// RoleConfig overrides one role's prompt set. Empty fields fall back to the
// built-in defaults from DefaultRoles.
type RoleConfig struct {
	System     string   `toml:"system"`
	Template   string   `toml:"template"`
	Args       []string `toml:"args"`
	ReturnJSON bool     `toml:"return_json"`
	UseModel   string   `toml:"use_model"` // language | code | vision
}

type SynthesisConfig struct {
	RetryTimes int    `toml:"retry_times"`
	ForcePages bool   `toml:"force_pages"`
	ErrorExit  bool   `toml:"error_exit"`
	RecordCost bool   `toml:"record_cost"`
	Typography bool   `toml:"typography"`
	RunRoot    string `toml:"run_root"`
	Library    string `toml:"library"` // path to the template library JSON
}

type Config struct {
	Language  LLMConfig             `toml:"language"`
	Code      LLMConfig             `toml:"code"`
	Vision    LLMConfig             `toml:"vision"`
	Roles     map[string]RoleConfig `toml:"roles"`
	Synthesis SynthesisConfig       `toml:"synthesis"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// Default returns a config with the synthesis policy defaults applied.
func Default() *Config {
	return &Config{
		Synthesis: SynthesisConfig{
			RetryTimes: 3,
			ErrorExit:  true,
			RecordCost: true,
			RunRoot:    "runs",
		},
	}
}

// ApplyEnv overrides config fields from environment variables.
func (c *Config) ApplyEnv() {
	for prefix, target := range map[string]*LLMConfig{
		"LANGUAGE": &c.Language,
		"CODE":     &c.Code,
		"VISION":   &c.Vision,
	} {
		if v := os.Getenv(prefix + "_PROVIDER"); v != "" {
			target.Provider = v
		}
		if v := os.Getenv(prefix + "_MODEL"); v != "" {
			target.Model = v
		}
		if v := os.Getenv(prefix + "_API_KEY"); v != "" {
			target.APIKey = v
		}
		if v := os.Getenv(prefix + "_BASE_URL"); v != "" {
			target.BaseURL = v
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		if c.Language.APIKey == "" {
			c.Language.APIKey = v
		}
		if c.Code.APIKey == "" {
			c.Code.APIKey = v
		}
		if c.Vision.APIKey == "" {
			c.Vision.APIKey = v
		}
	}
}
