package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Catalog.Trusted) == 0 {
		t.Error("expected trusted sources to be populated")
	}
	if len(cfg.Catalog.FactCheckers) == 0 {
		t.Error("expected fact-checkers to be populated")
	}
	if len(cfg.Claim.StopWords) == 0 {
		t.Error("expected stop words to be populated")
	}
	if len(cfg.Claim.Overrides) == 0 {
		t.Error("expected override rules to be populated")
	}

	if cfg.Search.TimeoutSeconds != 10 {
		t.Errorf("expected search timeout 10s, got %d", cfg.Search.TimeoutSeconds)
	}
	if cfg.Search.MinIntervalMS != 1000 {
		t.Errorf("expected min interval 1000ms, got %d", cfg.Search.MinIntervalMS)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
explain:
  provider: openai
  openai_model: gpt-4o
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Explain.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Explain.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}

	// Catalog and lexicons fall back to the embedded defaults.
	if len(cfg.Catalog.Trusted) == 0 {
		t.Error("expected default trusted sources")
	}
	if len(cfg.Claim.QuestionIndicators) == 0 {
		t.Error("expected default question indicators")
	}
}

func TestOverrideRuleFields(t *testing.T) {
	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("failed to parse defaults: %v", err)
	}

	rule := cfg.Claim.Overrides[0]
	if rule.Type != "suspicious_geopolitical_claim" {
		t.Errorf("expected suspicious_geopolitical_claim, got %q", rule.Type)
	}
	if !rule.RequiresQuestion {
		t.Error("expected rule to require a question indicator")
	}
	if rule.ConfidenceModifier != -0.4 {
		t.Errorf("expected modifier -0.4, got %v", rule.ConfidenceModifier)
	}
	if len(rule.Keywords) != 1 || len(rule.PivotKeywords) != 2 {
		t.Errorf("unexpected rule keywords: %v / %v", rule.Keywords, rule.PivotKeywords)
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != path {
		t.Errorf("expected %s, got %s", path, resolved)
	}

	if _, err := ResolveConfigPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
