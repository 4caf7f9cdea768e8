// SPDX-License-Identifier: Apache-2.0
// Package directory keeps the registry of debate agents: their cards, their
// envelope handlers, and their last observed liveness.
package directory

import (
	"context"
	"sync"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
)

// Liveness is the last observed health of a registered agent.
type Liveness string

const (
	LivenessRegistered  Liveness = "registered"
	LivenessReachable   Liveness = "reachable"
	LivenessUnreachable Liveness = "unreachable"
	LivenessError       Liveness = "error"
)

// Skill advertises a single capability of an agent.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
}

// Card is the self-description an agent publishes on registration.
type Card struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities,omitempty"`
	Skills       []Skill  `json:"skills,omitempty"`
	Liveness     Liveness `json:"liveness"`
}

// Handler processes an envelope addressed to its agent and returns the
// response envelope. Implementations must not mutate the request.
type Handler interface {
	Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, env *protocol.Envelope) (*protocol.Response, error) {
	return f(ctx, env)
}

type entry struct {
	card    Card
	handler Handler
}

// Directory is an in-memory, insertion-ordered agent registry. Entries are
// never deleted while a session runs; liveness is the only mutable field.
type Directory struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		entries: make(map[string]*entry),
	}
}

// Register adds an agent under its card name. Names are unique; a second
// registration under the same name fails with DUPLICATE_AGENT.
func (d *Directory) Register(card Card, handler Handler) error {
	if card.Name == "" {
		return errors.New(errors.CodeMalformedEnvelope, "card name is required", nil)
	}
	if handler == nil {
		return errors.New(errors.CodeInternal, "handler is required", nil).
			WithContext("agent", card.Name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.entries[card.Name]; exists {
		return errors.New(errors.CodeDuplicateAgent, "agent already registered", nil).
			WithContext("agent", card.Name)
	}
	card.Liveness = LivenessRegistered
	d.entries[card.Name] = &entry{card: card, handler: handler}
	d.order = append(d.order, card.Name)
	return nil
}

// Lookup returns the card and handler for a registered agent.
func (d *Directory) Lookup(name string) (Card, Handler, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[name]
	if !ok {
		return Card{}, nil, errors.New(errors.CodeUnknownAgent, "agent not registered", nil).
			WithContext("agent", name).
			WithRecoverable(true)
	}
	return e.card, e.handler, nil
}

// Card returns a copy of the named agent's card.
func (d *Directory) Card(name string) (Card, error) {
	card, _, err := d.Lookup(name)
	return card, err
}

// Names returns the registered agent names in insertion order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Cards returns card copies in insertion order.
func (d *Directory) Cards() []Card {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Card, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.entries[name].card)
	}
	return out
}

// Len returns the number of registered agents.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// MarkLiveness records the outcome of a health probe.
func (d *Directory) MarkLiveness(name string, liveness Liveness) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[name]
	if !ok {
		return errors.New(errors.CodeUnknownAgent, "agent not registered", nil).
			WithContext("agent", name)
	}
	e.card.Liveness = liveness
	return nil
}

// CheckAll probes every registered agent with a ping envelope and updates its
// liveness. Probe failures mark the agent, never abort the sweep.
func (d *Directory) CheckAll(ctx context.Context, prober string) map[string]Liveness {
	out := make(map[string]Liveness)
	for _, name := range d.Names() {
		_, handler, err := d.Lookup(name)
		if err != nil {
			continue
		}
		liveness := d.probe(ctx, prober, name, handler)
		_ = d.MarkLiveness(name, liveness)
		out[name] = liveness
	}
	return out
}

func (d *Directory) probe(ctx context.Context, prober, name string, handler Handler) Liveness {
	env, err := protocol.NewRequest(prober, name, protocol.Ping{})
	if err != nil {
		return LivenessError
	}
	resp, err := handler.Handle(ctx, env)
	switch {
	case err != nil:
		return LivenessUnreachable
	case resp.IsError():
		return LivenessError
	default:
		return LivenessReachable
	}
}
