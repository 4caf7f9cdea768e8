// SPDX-License-Identifier: Apache-2.0
package directory

import (
	"context"
	"fmt"
	"testing"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
)

func okHandler(name string) Handler {
	return HandlerFunc(func(_ context.Context, env *protocol.Envelope) (*protocol.Response, error) {
		return protocol.NewResult(env, name, map[string]interface{}{"status": "ok"})
	})
}

func TestRegisterAndLookup(t *testing.T) {
	d := New()
	card := Card{
		Name:        "flamengo",
		Description: "torcedor fanático do Flamengo",
		Version:     "1.0.0",
		Skills: []Skill{
			{ID: "argue", Name: "Argumentação", Description: "defende o Flamengo"},
		},
	}
	if err := d.Register(card, okHandler("flamengo")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, handler, err := d.Lookup("flamengo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handler == nil {
		t.Fatalf("expected handler")
	}
	if got.Liveness != LivenessRegistered {
		t.Errorf("expected liveness registered, got %v", got.Liveness)
	}
	if len(got.Skills) != 1 || got.Skills[0].ID != "argue" {
		t.Errorf("expected skills preserved, got %+v", got.Skills)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	d := New()
	if err := d.Register(Card{Name: "juiz"}, okHandler("juiz")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := d.Register(Card{Name: "juiz"}, okHandler("juiz"))
	if !errors.HasCode(err, errors.CodeDuplicateAgent) {
		t.Errorf("expected DUPLICATE_AGENT, got %v", err)
	}
}

func TestLookupUnknownOnEmptyDirectory(t *testing.T) {
	d := New()
	_, _, err := d.Lookup("flamengo")
	if !errors.HasCode(err, errors.CodeUnknownAgent) {
		t.Errorf("expected UNKNOWN_AGENT, got %v", err)
	}
}

func TestNamesInsertionOrder(t *testing.T) {
	d := New()
	want := []string{"supervisor", "flamengo", "fluminense", "pesquisador"}
	for _, name := range want {
		if err := d.Register(Card{Name: name}, okHandler(name)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got := d.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCheckAll(t *testing.T) {
	d := New()
	if err := d.Register(Card{Name: "alive"}, okHandler("alive")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Register(Card{Name: "dead"}, HandlerFunc(func(_ context.Context, _ *protocol.Envelope) (*protocol.Response, error) {
		return nil, fmt.Errorf("connection refused")
	})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := d.CheckAll(context.Background(), "supervisor")
	if got["alive"] != LivenessReachable {
		t.Errorf("expected alive reachable, got %v", got["alive"])
	}
	if got["dead"] != LivenessUnreachable {
		t.Errorf("expected dead unreachable, got %v", got["dead"])
	}

	card, _ := d.Card("alive")
	if card.Liveness != LivenessReachable {
		t.Errorf("expected liveness persisted on card, got %v", card.Liveness)
	}
}

func TestMarkLivenessUnknown(t *testing.T) {
	d := New()
	err := d.MarkLiveness("ghost", LivenessError)
	if !errors.HasCode(err, errors.CodeUnknownAgent) {
		t.Errorf("expected UNKNOWN_AGENT, got %v", err)
	}
}
