package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "knowgen.config.yml"

// Engine identifiers accepted in the config and on the command line.
const (
	EngineOpenAI = "openai"
	EngineOllama = "ollama"
)

// ExpertiseLevels maps each valid expertise level to the context note
// injected into prompts for that level.
var ExpertiseLevels = map[string]string{
	"Novice":       "You are new to this topic and need clear, simple guidance.",
	"Intermediate": "You have some experience and are ready for more depth.",
	"Advanced":     "You are comfortable with the topic and want sophisticated techniques.",
	"Expert":       "You are deeply experienced and need highly technical, optimized solutions.",
}

// Categories lists the valid content categories. "Course" selects the
// course prompt-template set; everything else uses the common set.
var Categories = []string{"Tip", "Guide", "Tutorial", "How-to", "Best Practices", "Course"}

// Config defines the structure of knowgen.config.yml.
type Config struct {
	Engine         string       `yaml:"engine"`
	Category       string       `yaml:"category"`
	ExpertiseLevel string       `yaml:"expertise_level"`
	Quantity       int          `yaml:"quantity"`
	Theme          string       `yaml:"theme,omitempty"`
	OutputDir      string       `yaml:"output_dir,omitempty"`
	PromptsDir     string       `yaml:"prompts_dir,omitempty"` // overrides the embedded prompt templates
	OpenAI         OpenAIConfig `yaml:"openai,omitempty"`
	Ollama         OllamaConfig `yaml:"ollama,omitempty"`
	Rates          RatesConfig  `yaml:"rates,omitempty"`
}

// OpenAIConfig holds settings for the OpenAI engine.
type OpenAIConfig struct {
	Model       string  `yaml:"model,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Stream      *bool   `yaml:"stream,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

// OllamaConfig holds settings for the Ollama engine.
type OllamaConfig struct {
	Model  string `yaml:"model,omitempty"`
	Host   string `yaml:"host,omitempty"`
	Stream *bool  `yaml:"stream,omitempty"`
	Think  *bool  `yaml:"think,omitempty"`
}

// RatesConfig holds the per-1K-token prices used for cost reporting.
type RatesConfig struct {
	InputPer1K  float64 `yaml:"input_per_1k,omitempty"`
	OutputPer1K float64 `yaml:"output_per_1k,omitempty"`
}

// Default returns a Config with the same defaults the scaffolded file carries.
func Default() *Config {
	return &Config{
		Engine:         EngineOpenAI,
		Category:       "Tip",
		ExpertiseLevel: "Novice",
		Quantity:       5,
		Theme:          "normal",
		OutputDir:      "output",
		OpenAI: OpenAIConfig{
			Model:       "gpt-4",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Ollama: OllamaConfig{
			Model: "llama3.2",
		},
		Rates: RatesConfig{
			InputPer1K:  0.01,
			OutputPer1K: 0.03,
		},
	}
}

// Load reads knowgen.config.yml from dir, falling back to defaults when the
// file does not exist. The returned config is always validated.
func Load(dir string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes and checks the domain fields. Invalid expertise
// levels and categories are fatal; generation never starts with them.
func (c *Config) Validate() error {
	level := normalizeLevel(c.ExpertiseLevel)
	if _, ok := ExpertiseLevels[level]; !ok {
		return fmt.Errorf("invalid expertise level %q, must be one of: %s",
			c.ExpertiseLevel, strings.Join(levelNames(), ", "))
	}
	c.ExpertiseLevel = level

	if !validCategory(c.Category) {
		return fmt.Errorf("invalid category %q, must be one of: %s",
			c.Category, strings.Join(Categories, ", "))
	}

	switch c.Engine {
	case EngineOpenAI, EngineOllama:
	default:
		return fmt.Errorf("invalid engine %q, must be %q or %q", c.Engine, EngineOpenAI, EngineOllama)
	}

	if c.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", c.Quantity)
	}
	return nil
}

// ContextNote returns the expertise-level description injected into prompts.
func (c *Config) ContextNote() string {
	return ExpertiseLevels[c.ExpertiseLevel]
}

// Model returns the model name for the configured engine.
func (c *Config) Model() string {
	if c.Engine == EngineOllama {
		return c.Ollama.Model
	}
	return c.OpenAI.Model
}

// Streaming reports whether the configured engine should stream. Both
// engines default to streaming, matching the interactive use case.
func (c *Config) Streaming() bool {
	var flag *bool
	if c.Engine == EngineOllama {
		flag = c.Ollama.Stream
	} else {
		flag = c.OpenAI.Stream
	}
	if flag == nil {
		return true
	}
	return *flag
}

func normalizeLevel(level string) string {
	lower := strings.ToLower(strings.TrimSpace(level))
	if lower == "" {
		return ""
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func levelNames() []string {
	names := make([]string, 0, len(ExpertiseLevels))
	for name := range ExpertiseLevels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
