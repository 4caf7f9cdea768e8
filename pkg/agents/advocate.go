// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"log/slog"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/llm"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
	"github.com/charlenopires/FlaFludeAgentes/pkg/resilience"
	"github.com/charlenopires/FlaFludeAgentes/pkg/transcript"
)

// persona parameterizes an advocate: the generation prompt plus the templated
// fallback arguments used when no backend answers in time.
type persona struct {
	displayName     string
	description     string
	rival           string
	systemPrompt    string
	initialFallback func(research string) string
	counterFallback func(opponent, research string) string
	skills          []directory.Skill
}

// Advocate is a fan debater. On each turn notification it produces an opening
// or counter argument, generated when a backend is available and templated
// otherwise. It never fails a turn: timeouts and unavailable backends degrade
// to the fallback text.
type Advocate struct {
	name    string
	persona persona
	gen     *llm.Generator
	timeout time.Duration
	logger  *slog.Logger
}

func newAdvocate(name string, p persona, gen *llm.Generator, timeout time.Duration, logger *slog.Logger) *Advocate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advocate{name: name, persona: p, gen: gen, timeout: timeout, logger: logger}
}

// Name returns the advocate's directory name.
func (a *Advocate) Name() string { return a.name }

// Card returns the advocate's directory card.
func (a *Advocate) Card() directory.Card {
	return directory.Card{
		Name:         a.name,
		Description:  a.persona.description,
		Version:      Version,
		Capabilities: []string{"debate", "persuasion"},
		Skills:       a.persona.skills,
	}
}

// Handle processes envelopes addressed to the advocate.
func (a *Advocate) Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error) {
	params, err := protocol.DecodeParams(env)
	if err != nil {
		return nil, err
	}

	switch p := params.(type) {
	case protocol.TurnNotification:
		return a.takeTurn(ctx, env, p)
	case protocol.DebateStarted:
		return protocol.NewResult(env, a.name, map[string]interface{}{
			"status": "ready",
		})
	case protocol.DebateFinished:
		return protocol.NewResult(env, a.name, map[string]interface{}{
			"status": "acknowledged",
		})
	case protocol.ResearchResponse:
		return protocol.NewResult(env, a.name, map[string]interface{}{
			"status": "received",
		})
	case protocol.MessageSend:
		return protocol.NewResult(env, a.name, map[string]interface{}{
			"status": "received",
		})
	case protocol.Ping:
		return pong(env, a.name)
	default:
		return unknownMethod(env)
	}
}

func (a *Advocate) takeTurn(ctx context.Context, env *protocol.Envelope, turn protocol.TurnNotification) (*protocol.Response, error) {
	statement := a.compose(ctx, turn)
	action := "counter_argument"
	if turn.Phase == string(transcript.KindOpening) {
		action = "initial_argument"
	}
	return protocol.NewResult(env, a.name, map[string]interface{}{
		"status":    "turn_taken",
		"action":    action,
		"statement": statement,
	})
}

// compose produces the turn statement, bounded by the configured timeout.
// Generation failures fall back to the persona's templated argument.
func (a *Advocate) compose(ctx context.Context, turn protocol.TurnNotification) string {
	template := &resilience.StaticFallback{Value: a.fallbackFor(turn)}
	if !a.gen.Available() {
		value, _ := template.Execute(ctx, nil)
		return value.(string)
	}

	value, _ := resilience.WithFallback(ctx, func() (interface{}, error) {
		return a.generate(ctx, turn)
	}, resilience.FallbackFunc(func(ctx context.Context, primaryErr error) (interface{}, error) {
		a.logger.Warn("generation failed, using fallback argument",
			"agent", a.name,
			"turn", turn.Turn,
			"error", primaryErr,
		)
		return template.Execute(ctx, primaryErr)
	}))
	text, _ := value.(string)
	return text
}

// generate runs one timeout-bounded completion. An empty statement counts
// as a failure so the fallback kicks in.
func (a *Advocate) generate(ctx context.Context, turn protocol.TurnNotification) (interface{}, error) {
	value, err := resilience.WithTimeoutResult(ctx, resilience.TimeoutConfig{Duration: a.timeout}, func() (interface{}, error) {
		return a.gen.Generate(ctx, a.persona.systemPrompt, a.prompt(turn))
	})
	if err != nil {
		return nil, err
	}
	text, ok := value.(string)
	if !ok || text == "" {
		return nil, errors.New(errors.CodeGenerationUnavailable, "backend returned an empty statement", nil).
			WithRecoverable(true)
	}
	return text, nil
}

func (a *Advocate) fallbackFor(turn protocol.TurnNotification) string {
	if turn.Phase == string(transcript.KindOpening) {
		return a.persona.initialFallback(turn.Research)
	}
	return a.persona.counterFallback(turn.OpponentStatement, turn.Research)
}

func (a *Advocate) prompt(turn protocol.TurnNotification) string {
	if turn.Phase == string(transcript.KindOpening) {
		return "Apresente seu argumento inicial curto (máximo 300 palavras) sobre por que " +
			"seu time é superior ao " + a.persona.rival + ". Use os dados disponíveis: " + turn.Research
	}
	return "O rival argumentou: \"" + clip(turn.OpponentStatement, 200) + "\". " +
		"Crie uma resposta curta (máximo 250 palavras) rebatendo com os dados disponíveis: " + turn.Research
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
