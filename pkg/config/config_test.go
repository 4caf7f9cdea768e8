package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
)

func resetKoanf(t *testing.T) {
	t.Helper()
	k = koanf.New(".")
}

func TestLoadDefaults(t *testing.T) {
	resetKoanf(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Debate.MinMinutes != 2 || cfg.Debate.MaxMinutes != 30 {
		t.Errorf("unexpected duration bounds: %+v", cfg.Debate)
	}
	if cfg.Debate.FirstSpeaker != "fixed" {
		t.Errorf("expected fixed first speaker, got %q", cfg.Debate.FirstSpeaker)
	}
	if cfg.Scoring.StructuralWeight != 0.40 || cfg.Scoring.ConsistencyWeight != 0.10 {
		t.Errorf("unexpected scoring weights: %+v", cfg.Scoring)
	}
	if cfg.Research.Source != "static" {
		t.Errorf("expected static research source, got %q", cfg.Research.Source)
	}
	if cfg.Telemetry.Exporter != "none" {
		t.Errorf("expected telemetry disabled by default, got %q", cfg.Telemetry.Exporter)
	}
}

func TestLoadFromFile(t *testing.T) {
	resetKoanf(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "flaflu.yaml")
	content := []byte(`
log:
  level: debug
debate:
  first_speaker: draw
  draw_seed: 42
llm:
  provider: ollama
  model: llama3
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected file log level, got %q", cfg.Log.Level)
	}
	if cfg.Debate.FirstSpeaker != "draw" || cfg.Debate.DrawSeed != 42 {
		t.Errorf("expected draw policy from file, got %+v", cfg.Debate)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected file llm provider, got %q", cfg.LLM.Provider)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	resetKoanf(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "flaflu.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: ollama\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FLAFLU_LLM__PROVIDER", "mock")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "mock" {
		t.Errorf("expected env override, got %q", cfg.LLM.Provider)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	resetKoanf(t)
	t.Setenv("FLAFLU_DEBATE__FIRST_SPEAKER", "fixed")

	cfg, err := LoadWithOverrides("", []string{
		"debate.first_speaker=draw",
		"debate.draw_seed=7",
		"debate.legacy_research_markers=true",
		"scoring.structural_weight=0.5",
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides failed: %v", err)
	}
	if cfg.Debate.FirstSpeaker != "draw" {
		t.Errorf("expected --set to beat env, got %q", cfg.Debate.FirstSpeaker)
	}
	if cfg.Debate.DrawSeed != 7 {
		t.Errorf("expected numeric coercion, got %d", cfg.Debate.DrawSeed)
	}
	if !cfg.Debate.LegacyResearchMarker {
		t.Errorf("expected boolean coercion")
	}
	if cfg.Scoring.StructuralWeight != 0.5 {
		t.Errorf("expected float coercion, got %v", cfg.Scoring.StructuralWeight)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		set  string
	}{
		{"bad first speaker", "debate.first_speaker=coin"},
		{"bad research source", "research.source=crystal_ball"},
		{"bad exporter", "telemetry.exporter=punchcards"},
		{"bad bounds", "debate.max_minutes=1"},
		{"malformed set", "no-equals-sign"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetKoanf(t)
			if _, err := LoadWithOverrides("", []string{tt.set}); err == nil {
				t.Errorf("expected error for %q", tt.set)
			}
		})
	}
}
