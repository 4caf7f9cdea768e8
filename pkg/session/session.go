// SPDX-License-Identifier: Apache-2.0
// Package session owns one debate end to end: directory, router, tracker,
// transcript, scheduler, research handler, and scoring configuration live
// here instead of in package-level singletons. The front-end drives the
// debate through Begin, Advance, Snapshot, and Reset.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/agents"
	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/facts"
	"github.com/charlenopires/FlaFludeAgentes/pkg/llm"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
	"github.com/charlenopires/FlaFludeAgentes/pkg/research"
	"github.com/charlenopires/FlaFludeAgentes/pkg/router"
	"github.com/charlenopires/FlaFludeAgentes/pkg/schedule"
	"github.com/charlenopires/FlaFludeAgentes/pkg/scoring"
	"github.com/charlenopires/FlaFludeAgentes/pkg/telemetry"
	"github.com/charlenopires/FlaFludeAgentes/pkg/tracker"
	"github.com/charlenopires/FlaFludeAgentes/pkg/transcript"
)

// Config parameterizes a session.
type Config struct {
	// Schedule bounds and sequences the turns.
	Schedule schedule.Config

	// Research configures marker extraction and the lookup round trip.
	Research research.Config

	// Weights for the post-debate evaluation.
	Weights scoring.Weights

	// TurnTimeout bounds each advocate's generation. Zero means unbounded.
	TurnTimeout time.Duration

	// Generator backs the advocates. Nil means fallback arguments only.
	Generator *llm.Generator

	// Source backs the data-lookup agent. Defaults to the static fact table.
	Source facts.Source

	// Metrics is optional; nil disables metric recording.
	Metrics *telemetry.DebateMetrics

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Source == nil {
		c.Source = facts.NewStaticSource()
	}
	if c.Weights == (scoring.Weights{}) {
		c.Weights = scoring.DefaultWeights()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State          schedule.State `json:"state"`
	Turn           int            `json:"turn"`
	CurrentSpeaker string         `json:"current_speaker,omitempty"`
	Remaining      time.Duration  `json:"remaining"`
	PerSpeaker     time.Duration  `json:"per_speaker"`
	Statements     int            `json:"statements"`
	Opening        string         `json:"opening,omitempty"`
	Winner         string         `json:"winner,omitempty"`
	Tie            bool           `json:"tie,omitempty"`
}

// Session is one debate. Safe for concurrent use, though turns are
// serialized: Advance holds the session lock for the whole turn.
type Session struct {
	mu sync.Mutex

	cfg      Config
	dir      *directory.Directory
	rt       *router.Router
	track    *tracker.Tracker
	tr       *transcript.Transcript
	sched    *schedule.Scheduler
	research *research.Handler
	sup      *agents.Supervisor

	started time.Time
	opening string
	result  *scoring.Result
}

// New builds a session and registers the four actors in a fresh directory.
func New(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	track := tracker.New()
	dir := directory.New()
	rt := router.New(dir, track, cfg.Logger)

	tr := transcript.New()
	sched := schedule.New(cfg.Schedule)
	sup := agents.NewSupervisor(sched, tr, cfg.Weights, cfg.Schedule.Sequence, cfg.Logger)

	actors := []interface {
		Name() string
		Card() directory.Card
		Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error)
	}{
		sup,
		agents.NewFlamengo(cfg.Generator, cfg.TurnTimeout, cfg.Logger),
		agents.NewFluminense(cfg.Generator, cfg.TurnTimeout, cfg.Logger),
		agents.NewResearcher(cfg.Source, cfg.Logger),
	}
	for _, actor := range actors {
		if err := dir.Register(actor.Card(), actor); err != nil {
			return nil, err
		}
	}

	return &Session{
		cfg:      cfg,
		dir:      dir,
		rt:       rt,
		track:    track,
		tr:       tr,
		sched:    sched,
		research: research.NewHandler(cfg.Research, rt),
		sup:      sup,
	}, nil
}

// Begin opens the debate: the supervisor validates the duration, starts the
// scheduler, and debate_started is broadcast to the participants.
func (s *Session) Begin(ctx context.Context, duration time.Duration) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := protocol.NewRequest(agents.NameSupervisor, agents.NameSupervisor, protocol.StartDebate{
		DurationMinutes: int(duration.Minutes()),
	})
	if err != nil {
		return Snapshot{}, err
	}
	resp := s.rt.Send(ctx, env)
	if resp.IsError() {
		return Snapshot{}, responseError(resp)
	}

	result := resp.ResultMap()
	s.opening, _ = result["message"].(string)
	s.started = s.now()
	firstSpeaker, _ := result["first_speaker"].(string)
	turnSeconds, _ := result["turn_seconds"].(float64)

	deliveries := s.rt.Broadcast(ctx, agents.NameSupervisor, protocol.DebateStarted{
		Opening:      s.opening,
		FirstSpeaker: firstSpeaker,
		TurnSeconds:  turnSeconds,
	}, nil)
	s.cfg.Metrics.RecordBroadcast(ctx, protocol.MethodDebateStarted, len(deliveries))

	return s.snapshotLocked(), nil
}

// Advance drives exactly one turn: tick the clock, run at most one research
// round trip, notify the current speaker, record the statement, rotate.
// Once the deadline passes it finalizes the debate exactly once and turns
// into a no-op.
func (s *Session) Advance(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == schedule.StateFinished {
		s.finalizeLocked(ctx)
		return s.snapshotLocked(), nil
	}

	_, finished, err := s.sched.Tick(s.now())
	if err != nil {
		return Snapshot{}, err
	}
	if finished {
		s.finalizeLocked(ctx)
		return s.snapshotLocked(), nil
	}

	speaker := s.sched.CurrentSpeaker()
	opponent, researchText := s.prepareTurnLocked(ctx, speaker)

	phase := transcript.KindRebuttal
	if opponent == "" {
		phase = transcript.KindOpening
	}

	snap := s.sched.Snapshot()
	env, err := protocol.NewRequest(agents.NameSupervisor, speaker, protocol.TurnNotification{
		Turn:              snap.Turn,
		Speaker:           speaker,
		Phase:             string(phase),
		OpponentStatement: opponent,
		Research:          researchText,
		RemainingSeconds:  snap.Remaining.Seconds(),
	})
	if err != nil {
		return Snapshot{}, err
	}

	resp := s.rt.Send(ctx, env)
	if resp.IsError() {
		s.cfg.Logger.Warn("turn notification failed, skipping statement",
			"speaker", speaker,
			"turn", snap.Turn,
			"rpc_code", resp.Error.Code,
			"error", resp.Error.Message,
		)
		s.cfg.Metrics.RecordError(ctx, responseError(resp), "session")
	} else if statement, _ := resp.ResultMap()["statement"].(string); statement != "" {
		s.tr.Append(transcript.Entry{
			Speaker: speaker,
			Text:    statement,
			Kind:    phase,
		})
	}

	if err := s.sched.Advance(); err != nil {
		return Snapshot{}, err
	}
	s.cfg.Metrics.RecordTurn(ctx, speaker, snap.Turn)
	return s.snapshotLocked(), nil
}

// prepareTurnLocked resolves the opponent statement the speaker must answer
// and runs the research round trip when that statement carries a marker.
func (s *Session) prepareTurnLocked(ctx context.Context, speaker string) (opponent, researchText string) {
	last, ok := s.tr.LastOpponentStatement(speaker)
	if !ok {
		return "", ""
	}

	query, found := s.research.Extract(last.Text)
	if !found {
		return last.Text, ""
	}

	answer := s.research.Fulfil(ctx, agents.NameSupervisor, speaker, query)
	s.cfg.Metrics.RecordResearch(ctx, answer.Status)
	s.tr.Append(transcript.Entry{
		Speaker: agents.NamePesquisador,
		Text:    answer.Answer,
		Kind:    transcript.KindResearch,
	})
	return last.Text, answer.Answer
}

// finalizeLocked evaluates once, announces the verdict, and appends the
// ruling. Subsequent calls are no-ops.
func (s *Session) finalizeLocked(ctx context.Context) {
	if s.result != nil {
		return
	}
	result := s.sup.Evaluate()
	s.result = &result

	ruling := s.sup.RulingText(result)
	s.tr.Append(transcript.Entry{
		Speaker: agents.NameSupervisor,
		Text:    ruling,
		Kind:    transcript.KindRuling,
	})

	deliveries := s.rt.Broadcast(ctx, agents.NameSupervisor, protocol.DebateFinished{
		Reason:  "time_expired",
		Winner:  result.Winner,
		Tie:     result.Tie,
		Summary: ruling,
	}, nil)
	s.cfg.Metrics.RecordBroadcast(ctx, protocol.MethodDebateFinished, len(deliveries))
	if !s.started.IsZero() {
		s.cfg.Metrics.RecordDebateDuration(ctx, s.now().Sub(s.started))
	}
	s.cfg.Logger.Info("debate finished",
		"winner", result.Winner,
		"tie", result.Tie,
		"statements", s.tr.Len(),
	)
}

// Snapshot returns a read-only view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	sched := s.sched.Snapshot()
	snap := Snapshot{
		State:          sched.State,
		Turn:           sched.Turn,
		CurrentSpeaker: sched.CurrentSpeaker,
		Remaining:      sched.Remaining,
		PerSpeaker:     sched.PerSpeaker,
		Statements:     s.tr.Len(),
		Opening:        s.opening,
	}
	if s.result != nil {
		snap.Winner = s.result.Winner
		snap.Tie = s.result.Tie
	}
	return snap
}

// Result returns the verdict once the debate has been finalized.
func (s *Session) Result() (scoring.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return scoring.Result{}, false
	}
	return *s.result, true
}

// Reset tears the session down to not_started. Directory registrations and
// the exchange log survive; transcript and verdict do not.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Reset()
	s.tr = transcript.New()
	s.result = nil
	s.opening = ""
	s.started = time.Time{}
}

// Transcript exposes the statement log for exports.
func (s *Session) Transcript() *transcript.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr
}

// Tracker exposes the correlation log for exports.
func (s *Session) Tracker() *tracker.Tracker { return s.track }

// Directory exposes the agent directory.
func (s *Session) Directory() *directory.Directory { return s.dir }

func (s *Session) now() time.Time {
	if s.cfg.Schedule.Now != nil {
		return s.cfg.Schedule.Now()
	}
	return time.Now()
}

// responseError rebuilds a typed error from an error envelope. The typed
// code travels in the error data; the RPC code is the fallback.
func responseError(resp *protocol.Response) *errors.DebateError {
	if name, ok := resp.Error.Data["code"].(string); ok && name != "" {
		return errors.New(errors.ErrorCode(name), resp.Error.Message, nil)
	}
	code := errors.CodeInternal
	switch resp.Error.Code {
	case -32001:
		code = errors.CodeRecipientNotFound
	case -32600:
		code = errors.CodeMalformedEnvelope
	case -32601:
		code = errors.CodeMethodNotFound
	case -32602:
		code = errors.CodeInvalidDuration
	case -32002:
		code = errors.CodeTimeout
	}
	return errors.New(code, resp.Error.Message, nil)
}
