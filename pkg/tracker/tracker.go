// SPDX-License-Identifier: Apache-2.0
// Package tracker records every envelope exchange for correlation and audit.
// The log is append-only and in-memory; exports materialize it on demand.
package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Direction distinguishes requests from responses in the log.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// Entry is one recorded exchange leg.
type Entry struct {
	CorrelationID string    `json:"correlation_id"`
	Direction     Direction `json:"direction"`
	EnvelopeID    string    `json:"envelope_id"`
	Method        string    `json:"method"`
	FromAgent     string    `json:"from_agent"`
	ToAgent       string    `json:"to_agent"`
	ErrorCode     int       `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Tracker is an append-only correlation log. Safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// NewID mints a correlation id for a fresh request/response pair.
func (t *Tracker) NewID() string {
	return uuid.NewString()
}

// Record appends an entry. A zero timestamp is stamped with the current time.
func (t *Tracker) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
}

// Flow returns the entries sharing a correlation id, in record order.
func (t *Tracker) Flow(correlationID string) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Entry
	for _, e := range t.entries {
		if e.CorrelationID == correlationID {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of the full log in record order.
func (t *Tracker) All() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded entries.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
