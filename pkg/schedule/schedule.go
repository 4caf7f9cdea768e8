// SPDX-License-Identifier: Apache-2.0
// Package schedule implements the debate turn scheduler: a small state machine
// that owns the speaking order, the per-speaker time accounting, and the
// transition to finished when the clock runs out.
package schedule

import (
	"math/rand"
	"sync"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

// State is the scheduler lifecycle phase.
type State string

const (
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StateFinished   State = "finished"
)

// First-speaker selection policies.
const (
	FirstSpeakerFixed = "fixed"
	FirstSpeakerDraw  = "draw"
)

// Config bounds and parameterizes a scheduler.
type Config struct {
	// MinDuration and MaxDuration bound Start. Defaults 2m and 30m.
	MinDuration time.Duration
	MaxDuration time.Duration

	// Sequence is the speaking order. Defaults to the two advocates.
	Sequence []string

	// FirstSpeaker selects who opens: "fixed" takes the first of the
	// sequence, "draw" picks one with the seeded source.
	FirstSpeaker string

	// DrawSeed seeds the draw so runs are reproducible.
	DrawSeed int64

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MinDuration == 0 {
		c.MinDuration = 2 * time.Minute
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = 30 * time.Minute
	}
	if len(c.Sequence) == 0 {
		c.Sequence = []string{"flamengo", "fluminense"}
	}
	if c.FirstSpeaker == "" {
		c.FirstSpeaker = FirstSpeakerFixed
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Snapshot is a read-only view of the scheduler.
type Snapshot struct {
	State          State
	Turn           int
	CurrentSpeaker string
	PerSpeaker     time.Duration
	Remaining      time.Duration
	Elapsed        map[string]time.Duration
}

// Scheduler sequences turns between the configured speakers.
// Safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	state    State
	index    int
	turn     int
	duration time.Duration
	split    time.Duration
	elapsed  map[string]time.Duration
	lastMark time.Time
}

// New creates a scheduler in the not_started state.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:     cfg.withDefaults(),
		state:   StateNotStarted,
		elapsed: make(map[string]time.Duration),
	}
}

// Start activates the scheduler for a debate of the given total duration.
// The deadline is split evenly across the speakers; durations outside the
// configured bounds fail with INVALID_DURATION, a second Start while active
// fails with ALREADY_ACTIVE.
func (s *Scheduler) Start(duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		return errors.New(errors.CodeAlreadyActive, "debate already active", nil)
	case StateFinished:
		// Finished is terminal. Reset is the only way back to not_started.
		return errors.New(errors.CodeAlreadyActive, "debate finished, reset before starting again", nil).
			WithContext("state", string(s.state))
	}
	if duration < s.cfg.MinDuration || duration > s.cfg.MaxDuration {
		return errors.New(errors.CodeInvalidDuration, "duration outside allowed bounds", nil).
			WithContext("duration", duration.String()).
			WithContext("min", s.cfg.MinDuration.String()).
			WithContext("max", s.cfg.MaxDuration.String())
	}

	s.state = StateActive
	s.turn = 0
	s.duration = duration
	s.split = duration / time.Duration(len(s.cfg.Sequence))
	s.elapsed = make(map[string]time.Duration, len(s.cfg.Sequence))
	for _, name := range s.cfg.Sequence {
		s.elapsed[name] = 0
	}
	s.index = s.firstIndex()
	s.lastMark = s.cfg.Now()
	return nil
}

func (s *Scheduler) firstIndex() int {
	if s.cfg.FirstSpeaker == FirstSpeakerDraw {
		src := rand.New(rand.NewSource(s.cfg.DrawSeed))
		return src.Intn(len(s.cfg.Sequence))
	}
	return 0
}

// Advance closes the current turn: elapsed time is accrued to the current
// speaker and the floor passes to the next one in the sequence, modulo its
// length. Only valid while active.
func (s *Scheduler) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return errors.New(errors.CodeNotStarted, "debate not active", nil).
			WithContext("state", string(s.state))
	}

	s.accrue(s.cfg.Now())
	s.index = (s.index + 1) % len(s.cfg.Sequence)
	s.turn++
	return nil
}

// accrue charges wall time since the last mark to the current speaker.
// Callers hold the lock.
func (s *Scheduler) accrue(now time.Time) {
	if now.After(s.lastMark) {
		s.elapsed[s.cfg.Sequence[s.index]] += now.Sub(s.lastMark)
	}
	s.lastMark = now
}

// Tick recomputes remaining time at now and transitions to finished when it
// reaches zero. The transition happens exactly once; ticking a finished
// scheduler is a no-op, ticking before Start fails with NOT_STARTED.
func (s *Scheduler) Tick(now time.Time) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateNotStarted:
		return 0, false, errors.New(errors.CodeNotStarted, "debate has not been started", nil)
	case StateFinished:
		return 0, true, nil
	}

	s.accrue(now)
	remaining := s.duration - s.totalElapsed()
	if remaining <= 0 {
		s.state = StateFinished
		return 0, true, nil
	}
	return remaining, false, nil
}

func (s *Scheduler) totalElapsed() time.Duration {
	var total time.Duration
	for _, d := range s.elapsed {
		total += d
	}
	return total
}

// CurrentSpeaker returns the speaker holding the floor. Empty before start.
func (s *Scheduler) CurrentSpeaker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNotStarted {
		return ""
	}
	return s.cfg.Sequence[s.index]
}

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PerSpeaker returns the evenly-split time allotted to each speaker.
func (s *Scheduler) PerSpeaker() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.split
}

// Snapshot returns a read-only view including per-speaker elapsed copies.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := make(map[string]time.Duration, len(s.elapsed))
	for name, d := range s.elapsed {
		elapsed[name] = d
	}
	snap := Snapshot{
		State:      s.state,
		Turn:       s.turn,
		PerSpeaker: s.split,
		Elapsed:    elapsed,
	}
	if s.state != StateNotStarted {
		snap.CurrentSpeaker = s.cfg.Sequence[s.index]
	}
	if s.state == StateActive {
		snap.Remaining = s.duration - s.totalElapsed()
		if snap.Remaining < 0 {
			snap.Remaining = 0
		}
	}
	return snap
}

// Reset tears the scheduler down to not_started.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateNotStarted
	s.index = 0
	s.turn = 0
	s.duration = 0
	s.split = 0
	s.elapsed = make(map[string]time.Duration)
}
