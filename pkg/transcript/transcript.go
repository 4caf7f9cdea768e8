// SPDX-License-Identifier: Apache-2.0
// Package transcript keeps the append-only record of debate statements.
// The transcript is the sole input to scoring and to the last-opponent
// lookup, so entries are immutable once appended.
package transcript

import (
	"sync"
	"time"
)

// Kind classifies a transcript entry.
type Kind string

const (
	KindOpening  Kind = "opening"
	KindRebuttal Kind = "rebuttal"
	KindResearch Kind = "research"
	KindRuling   Kind = "ruling"
)

// Entry is one recorded statement.
type Entry struct {
	Speaker   string    `json:"speaker" yaml:"speaker"`
	Text      string    `json:"text" yaml:"text"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Transcript is an append-only statement log. Safe for concurrent use.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Append records a statement. A zero timestamp is stamped with the current time.
func (t *Transcript) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
}

// Entries returns a copy of all entries in append order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// LastBy returns the most recent entry by the given speaker.
func (t *Transcript) LastBy(speaker string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Speaker == speaker {
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// LastOpponentStatement returns the most recent opening or rebuttal entry
// spoken by anyone other than the given speaker. Research and ruling entries
// never count as opponent statements.
func (t *Transcript) LastOpponentStatement(speaker string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if e.Speaker == speaker {
			continue
		}
		if e.Kind != KindOpening && e.Kind != KindRebuttal {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

// TextBy concatenates all opening and rebuttal text spoken by one speaker,
// separated by newlines. Used by scoring.
func (t *Transcript) TextBy(speaker string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := ""
	for _, e := range t.entries {
		if e.Speaker != speaker {
			continue
		}
		if e.Kind != KindOpening && e.Kind != KindRebuttal {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += e.Text
	}
	return out
}
