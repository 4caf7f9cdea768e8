// Package config loads the debate system configuration from defaults, an
// optional YAML file, FLAFLU_-prefixed environment variables, and --set
// command-line overrides, in that precedence order.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Debate    DebateConfig    `koanf:"debate"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Research  ResearchConfig  `koanf:"research"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider string `koanf:"provider"` // ollama, mock, none
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

type DebateConfig struct {
	MinMinutes           int    `koanf:"min_minutes"`
	MaxMinutes           int    `koanf:"max_minutes"`
	FirstSpeaker         string `koanf:"first_speaker"` // fixed, draw
	DrawSeed             int64  `koanf:"draw_seed"`
	TurnTimeoutSeconds   int    `koanf:"turn_timeout_seconds"`
	ResearchTimeoutSecs  int    `koanf:"research_timeout_seconds"`
	LegacyResearchMarker bool   `koanf:"legacy_research_markers"`
}

// TurnTimeout returns the per-turn generation boundary.
func (d DebateConfig) TurnTimeout() time.Duration {
	return time.Duration(d.TurnTimeoutSeconds) * time.Second
}

// ResearchTimeout returns the research round-trip boundary.
func (d DebateConfig) ResearchTimeout() time.Duration {
	return time.Duration(d.ResearchTimeoutSecs) * time.Second
}

type ScoringConfig struct {
	StructuralWeight  float64 `koanf:"structural_weight"`
	EvidenceWeight    float64 `koanf:"evidence_weight"`
	RhetoricWeight    float64 `koanf:"rhetoric_weight"`
	ConsistencyWeight float64 `koanf:"consistency_weight"`
}

type ResearchConfig struct {
	Source     string   `koanf:"source"` // static, mcp
	MCPCommand string   `koanf:"mcp_command"`
	MCPArgs    []string `koanf:"mcp_args"`
	MCPTool    string   `koanf:"mcp_tool"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Global k instance
var k = koanf.New(".")

func setDefaults() {
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.provider", "none")
	k.Set("llm.model", "llama3")
	k.Set("llm.base_url", "http://localhost:11434")

	k.Set("debate.min_minutes", 2)
	k.Set("debate.max_minutes", 30)
	k.Set("debate.first_speaker", "fixed")
	k.Set("debate.draw_seed", 0)
	k.Set("debate.turn_timeout_seconds", 30)
	k.Set("debate.research_timeout_seconds", 10)
	k.Set("debate.legacy_research_markers", false)

	k.Set("scoring.structural_weight", 0.40)
	k.Set("scoring.evidence_weight", 0.30)
	k.Set("scoring.rhetoric_weight", 0.20)
	k.Set("scoring.consistency_weight", 0.10)

	k.Set("research.source", "static")
	k.Set("research.mcp_tool", "lookup_team_stats")

	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_endpoint", "localhost:4317")
	k.Set("telemetry.otlp_insecure", true)
}

// Load reads configuration with defaults, an optional YAML file, and
// environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides additionally applies key=value pairs from --set flags,
// which take precedence over everything else.
func LoadWithOverrides(path string, sets []string) (*Config, error) {
	setDefaults()

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (FLAFLU_LOG__LEVEL -> log.level)
	if err := k.Load(env.Provider("FLAFLU_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "FLAFLU_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// 3. Apply --set overrides
	for _, pair := range sets {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want key=value", pair)
		}
		k.Set(strings.TrimSpace(key), coerce(strings.TrimSpace(value)))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// coerce turns override strings into typed values so numeric and boolean
// keys unmarshal cleanly.
func coerce(value string) interface{} {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func (c *Config) validate() error {
	if c.Debate.MinMinutes <= 0 || c.Debate.MaxMinutes < c.Debate.MinMinutes {
		return fmt.Errorf("invalid debate duration bounds: min=%d max=%d",
			c.Debate.MinMinutes, c.Debate.MaxMinutes)
	}
	switch c.Debate.FirstSpeaker {
	case "fixed", "draw":
	default:
		return fmt.Errorf("invalid debate.first_speaker %q, want fixed or draw", c.Debate.FirstSpeaker)
	}
	switch c.Research.Source {
	case "static", "mcp":
	default:
		return fmt.Errorf("invalid research.source %q, want static or mcp", c.Research.Source)
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("invalid telemetry.exporter %q, want none, stdout or otlp", c.Telemetry.Exporter)
	}
	return nil
}
