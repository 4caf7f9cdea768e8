// SPDX-License-Identifier: Apache-2.0

// Command flaflu runs the Fla-Flu multi-agent debate from the terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/agents"
	"github.com/charlenopires/FlaFludeAgentes/pkg/config"
	"github.com/charlenopires/FlaFludeAgentes/pkg/facts"
	"github.com/charlenopires/FlaFludeAgentes/pkg/llm"
	"github.com/charlenopires/FlaFludeAgentes/pkg/research"
	"github.com/charlenopires/FlaFludeAgentes/pkg/schedule"
	"github.com/charlenopires/FlaFludeAgentes/pkg/scoring"
	"github.com/charlenopires/FlaFludeAgentes/pkg/session"
	"github.com/charlenopires/FlaFludeAgentes/pkg/telemetry"
)

const version = "1.0.0"

type globalFlags struct {
	ConfigPath string
	Sets       []string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.LoadWithOverrides(global.ConfigPath, global.Sets)
	if err != nil {
		fatal(err)
	}

	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	shutdown, err := telemetry.InitWithConfig("flaflu", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	switch args[0] {
	case "run":
		runDebate(ctx, global, cfg, args[1:])
	case "agents":
		runAgents(global, cfg, args[1:])
	case "export":
		runExport(ctx, global, cfg, args[1:])
	case "version":
		fmt.Println(version)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--set":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --set")
			}
			flags.Sets = append(flags.Sets, args[i+1])
			i++
		case strings.HasPrefix(arg, "--set="):
			flags.Sets = append(flags.Sets, strings.TrimPrefix(arg, "--set="))
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

// simClock drives a debate in simulated time: each turn jumps the clock by
// a fixed step, so a full debate completes immediately.
type simClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newSimClock(step time.Duration) *simClock {
	return &simClock{now: time.Now(), step: step}
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
}

// newSession wires a debate session from the loaded configuration. A nil
// clock means wall time.
func newSession(cfg *config.Config, clock *simClock) (*session.Session, error) {
	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "ollama":
		provider = llm.NewOllama(cfg.LLM.BaseURL)
	case "mock":
		provider = &llm.MockProvider{Response: "🎤 Argumento gerado para o debate Fla-Flu."}
	case "", "none":
		// Advocates argue from their fallback templates.
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	var gen *llm.Generator
	if provider != nil {
		gen = llm.NewGenerator(provider, cfg.LLM.Model, 0.7)
	}

	var source facts.Source
	switch cfg.Research.Source {
	case "", "static":
		source = facts.NewStaticSource()
	case "mcp":
		mcpSource, err := facts.NewMCPSourceStdio(cfg.Research.MCPCommand, cfg.Research.MCPArgs, cfg.Research.MCPTool)
		if err != nil {
			return nil, fmt.Errorf("mcp fact source: %w", err)
		}
		source = mcpSource
	default:
		return nil, fmt.Errorf("unknown research source %q", cfg.Research.Source)
	}

	metrics, err := telemetry.NewDebateMetrics()
	if err != nil {
		return nil, err
	}

	var now func() time.Time
	if clock != nil {
		now = clock.Now
	}
	return session.New(session.Config{
		Schedule: schedule.Config{
			MinDuration:  time.Duration(cfg.Debate.MinMinutes) * time.Minute,
			MaxDuration:  time.Duration(cfg.Debate.MaxMinutes) * time.Minute,
			FirstSpeaker: cfg.Debate.FirstSpeaker,
			DrawSeed:     cfg.Debate.DrawSeed,
			Now:          now,
		},
		Research: research.Config{
			Researcher:    agents.NamePesquisador,
			Timeout:       cfg.Debate.ResearchTimeout(),
			LegacyMarkers: cfg.Debate.LegacyResearchMarker,
		},
		Weights: scoring.Weights{
			Structural:  cfg.Scoring.StructuralWeight,
			Evidence:    cfg.Scoring.EvidenceWeight,
			Rhetoric:    cfg.Scoring.RhetoricWeight,
			Consistency: cfg.Scoring.ConsistencyWeight,
		},
		TurnTimeout: cfg.Debate.TurnTimeout(),
		Generator:   gen,
		Source:      source,
		Metrics:     metrics,
	})
}

// driveDebate begins the session and advances turns until the deadline.
// With a clock the debate runs in simulated time; otherwise each turn waits
// the real interval.
func driveDebate(ctx context.Context, sess *session.Session, duration, interval time.Duration, clock *simClock, quiet bool) error {
	snap, err := sess.Begin(ctx, duration)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Println(snap.Opening)
		fmt.Println()
	}

	seen := 0
	for {
		if clock != nil {
			clock.tick()
		}
		snap, err = sess.Advance(ctx)
		if err != nil {
			return err
		}
		if !quiet {
			for _, e := range sess.Transcript().Entries()[seen:] {
				fmt.Printf("--- %s [%s] ---\n%s\n\n", e.Speaker, e.Kind, e.Text)
			}
			seen = sess.Transcript().Len()
		}
		if snap.State == schedule.StateFinished {
			return nil
		}
		if clock != nil {
			continue
		}
		select {
		case <-ctx.Done():
			// Interrupted: force the verdict on what was said so far.
			_, err = sess.Advance(context.Background())
			return err
		case <-time.After(interval):
		}
	}
}

func runDebate(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	cmd := newFlagSet("run")
	durationMin := cmd.Int("duration", 4, "debate duration in minutes")
	interval := cmd.Duration("interval", 0, "real pause between turns; 0 runs in simulated time")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}

	var clock *simClock
	if *interval == 0 {
		clock = newSimClock(20 * time.Second)
	}
	sess, err := newSession(cfg, clock)
	if err != nil {
		fatal(err)
	}
	duration := time.Duration(*durationMin) * time.Minute
	if err := driveDebate(ctx, sess, duration, *interval, clock, global.JSON); err != nil {
		fatal(err)
	}

	result, _ := sess.Result()
	if global.JSON {
		printJSON(map[string]interface{}{
			"snapshot":   sess.Snapshot(),
			"verdict":    result,
			"transcript": sess.Transcript().Entries(),
		})
		return
	}

	w := newTabWriter()
	fmt.Fprintln(w, "RANK\tSPEAKER\tTOTAL\tSTRUCTURAL\tEVIDENCE\tRHETORIC\tCONSISTENCY")
	for _, rec := range result.Records {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			rec.Rank, rec.Speaker, rec.Total, rec.Structural, rec.Evidence, rec.Rhetoric, rec.Consistency)
	}
	_ = w.Flush()
	if result.Tie {
		fmt.Println("\nResultado: EMPATE")
	} else {
		fmt.Printf("\nVencedor: %s\n", result.Winner)
	}
}

func runAgents(global globalFlags, cfg *config.Config, args []string) {
	if len(args) == 0 || args[0] != "list" {
		fatal(fmt.Errorf("usage: flaflu agents list"))
	}

	sess, err := newSession(cfg, nil)
	if err != nil {
		fatal(err)
	}
	cards := sess.Directory().Cards()

	if global.JSON {
		printJSON(cards)
		return
	}
	w := newTabWriter()
	fmt.Fprintln(w, "NAME\tVERSION\tLIVENESS\tSKILLS\tDESCRIPTION")
	for _, card := range cards {
		skills := make([]string, 0, len(card.Skills))
		for _, s := range card.Skills {
			skills = append(skills, s.ID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			card.Name, card.Version, card.Liveness, strings.Join(skills, ","), card.Description)
	}
	_ = w.Flush()
}

func runExport(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	cmd := newFlagSet("export")
	format := cmd.String("format", "markdown", "markdown, json, yaml, jsonl, table, or sqlite")
	out := cmd.String("out", "", "output path (default stdout; required for sqlite)")
	durationMin := cmd.Int("duration", 4, "debate duration in minutes")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}
	_ = global

	clock := newSimClock(20 * time.Second)
	sess, err := newSession(cfg, clock)
	if err != nil {
		fatal(err)
	}
	if err := driveDebate(ctx, sess, time.Duration(*durationMin)*time.Minute, 0, clock, true); err != nil {
		fatal(err)
	}

	if *format == "sqlite" {
		if *out == "" {
			fatal(fmt.Errorf("--out is required for sqlite export"))
		}
		if err := sess.Tracker().ExportSQLite(*out); err != nil {
			fatal(err)
		}
		return
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "markdown":
		err = sess.Transcript().WriteMarkdown(w, "")
	case "json":
		err = sess.Transcript().WriteJSON(w)
	case "yaml":
		err = sess.Transcript().WriteYAML(w)
	case "jsonl":
		err = sess.Tracker().WriteJSONL(w)
	case "table":
		err = sess.Tracker().WriteTable(w)
	default:
		err = fmt.Errorf("unknown export format %q", *format)
	}
	if err != nil {
		fatal(err)
	}
}

func printJSON(value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(payload))
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func printUsage() {
	fmt.Print(`flaflu - multi-agent Fla-Flu debate

Usage:
  flaflu [global flags] <command> [args]

Global flags:
  --config <path>      Path to a YAML config file
  --set key=value      Override config (repeatable)
  --json               JSON output

Commands:
  run [--duration N] [--interval D]     Run a full debate and print the verdict
                                        (interval 0 runs in simulated time)
  agents list                           Print the agent directory
  export [--format F] [--out PATH]      Run a debate and export the transcript
                                        (markdown|json|yaml) or the exchange
                                        log (jsonl|table|sqlite)
  version

`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
