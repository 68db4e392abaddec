package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Catalog  Catalog  `yaml:"catalog"`
	Claim    Claim    `yaml:"claim"`
	Search   Search   `yaml:"search"`
	Detector Detector `yaml:"detector"`
	Explain  Explain  `yaml:"explain"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Catalog struct {
	Trusted      []Source `yaml:"trusted"`
	FactCheckers []Source `yaml:"fact_checkers"`
}

// Source describes one queryable outlet. QueryTemplate contains a {query}
// placeholder that receives the URL-escaped search terms.
type Source struct {
	Name          string `yaml:"name"`
	Domain        string `yaml:"domain"`
	QueryTemplate string `yaml:"query_template"`
	FeedURL       string `yaml:"feed_url"`
	Region        string `yaml:"region"`
}

type Claim struct {
	StopWords          []string       `yaml:"stop_words"`
	QuestionIndicators []string       `yaml:"question_indicators"`
	Overrides          []OverrideRule `yaml:"overrides"`
}

// OverrideRule replaces generic keyword extraction when a known
// misinformation pattern is recognized in the input text.
type OverrideRule struct {
	Name               string   `yaml:"name"`
	Type               string   `yaml:"type"`
	Markers            []string `yaml:"markers"`
	RequiresQuestion   bool     `yaml:"requires_question"`
	Keywords           []string `yaml:"keywords"`
	PivotKeywords      []string `yaml:"pivot_keywords"`
	ConfidenceModifier float64  `yaml:"confidence_modifier"`
}

type Search struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
	MinIntervalMS  int    `yaml:"min_interval_ms"`
	MaxWorkers     int    `yaml:"max_workers"`
}

type Detector struct {
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	APIKeyEnv     string `yaml:"api_key_env"`
	MaxInputBytes int    `yaml:"max_input_bytes"`
}

type Explain struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxTokens   int    `yaml:"max_tokens"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for hoaxcheck.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "hoaxcheck")
}

// DataDir returns the XDG data directory for hoaxcheck.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "hoaxcheck")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/hoaxcheck/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'hoaxcheck init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// LoadDefault parses the embedded default configuration.
func LoadDefault() (*Config, error) {
	return parse(nil)
}

// parse parses YAML bytes into a Config, applying defaults. The source
// catalog and claim lexicons start from the embedded defaults so a minimal
// config file still yields a working pipeline; a config that lists its own
// sources or lexicons replaces them wholesale.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Search: Search{
			TimeoutSeconds: 10,
			UserAgent:      "hoaxcheck/1.0 (news verification)",
			MinIntervalMS:  1000,
			MaxWorkers:     4,
		},
		Detector: Detector{
			Endpoint:      "https://api-inference.huggingface.co/models",
			Model:         "jy46604790/Fake-News-Bert-Detect",
			APIKeyEnv:     "HF_API_TOKEN",
			MaxInputBytes: 2000,
		},
		Explain: Explain{
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   512,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	var defaults struct {
		Catalog Catalog `yaml:"catalog"`
		Claim   Claim   `yaml:"claim"`
	}
	if err := yaml.Unmarshal(DefaultConfigYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.Catalog = defaults.Catalog
	cfg.Claim = defaults.Claim

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if len(cfg.Catalog.Trusted) == 0 {
		return nil, fmt.Errorf("config has no trusted sources")
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
