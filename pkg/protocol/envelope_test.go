// SPDX-License-Identifier: Apache-2.0
package protocol

import (
	"encoding/json"
	"testing"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope("supervisor", "flamengo", MethodTurnNotification, map[string]interface{}{
		"turn":    1,
		"speaker": "flamengo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.JSONRPC != "2.0" {
		t.Errorf("expected jsonrpc 2.0, got %q", env.JSONRPC)
	}
	if env.Protocol != Version {
		t.Errorf("expected protocol %q, got %q", Version, env.Protocol)
	}
	if env.ID == "" {
		t.Errorf("expected generated id")
	}
	if env.Timestamp.IsZero() {
		t.Errorf("expected timestamp to be set")
	}
	if got := env.ParamsMap()["speaker"]; got != "flamengo" {
		t.Errorf("expected speaker param, got %v", got)
	}
	if err := env.Validate(); err != nil {
		t.Errorf("expected valid envelope, got %v", err)
	}
}

func TestEnvelopeIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		env, err := NewRequest("a", "b", Ping{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[env.ID] {
			t.Fatalf("duplicate envelope id %q", env.ID)
		}
		seen[env.ID] = true
	}
}

func TestValidate(t *testing.T) {
	base := func() *Envelope {
		env, _ := NewRequest("a", "b", Ping{})
		return env
	}

	tests := []struct {
		name   string
		mutate func(*Envelope)
	}{
		{"wrong jsonrpc", func(e *Envelope) { e.JSONRPC = "1.0" }},
		{"missing id", func(e *Envelope) { e.ID = "" }},
		{"missing method", func(e *Envelope) { e.Method = "" }},
		{"missing to_agent", func(e *Envelope) { e.ToAgent = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := base()
			tt.mutate(env)
			err := env.Validate()
			if !errors.HasCode(err, errors.CodeMalformedEnvelope) {
				t.Errorf("expected MALFORMED_ENVELOPE, got %v", err)
			}
		})
	}
}

func TestResponseMirrorsRequestID(t *testing.T) {
	env, err := NewRequest("supervisor", "researcher", ResearchRequest{
		Query:     "quantos títulos brasileiros?",
		Requester: "flamengo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := NewResult(env, "researcher", map[string]interface{}{"status": "success"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ID != env.ID {
		t.Errorf("expected response id %q, got %q", env.ID, resp.ID)
	}
	if resp.ToAgent != "supervisor" {
		t.Errorf("expected response addressed to sender, got %q", resp.ToAgent)
	}
	if resp.IsError() {
		t.Errorf("expected success response")
	}
}

func TestNewErrorResponse(t *testing.T) {
	env, _ := NewRequest("supervisor", "ghost", Ping{})
	derr := errors.New(errors.CodeRecipientNotFound, "agent not found", nil).
		WithContext("to_agent", "ghost")

	resp := NewErrorResponse(env, "router", derr)
	if !resp.IsError() {
		t.Fatalf("expected error response")
	}
	if resp.Error.Code != -32001 {
		t.Errorf("expected code -32001, got %d", resp.Error.Code)
	}
	if resp.ID != env.ID {
		t.Errorf("expected request id mirrored")
	}
	if resp.Error.Data["to_agent"] != "ghost" {
		t.Errorf("expected error data to carry context")
	}
}

func TestDecodeParamsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"start_debate", StartDebate{DurationMinutes: 10, Topic: "maior do Rio"}},
		{"turn_notification", TurnNotification{Turn: 3, Speaker: "fluminense", Phase: "rebuttal", OpponentStatement: "o Flamengo é maior", RemainingSeconds: 42.5}},
		{"research_request", ResearchRequest{Query: "títulos do Fluminense", Requester: "fluminense"}},
		{"research_response", ResearchResponse{Status: "success", Answer: "4 brasileiros", Query: "títulos", Sources: []string{"base de fatos"}}},
		{"debate_finished", DebateFinished{Reason: "tempo esgotado", Winner: "flamengo", Tie: false, Summary: "vitória por evidências"}},
		{"ping", Ping{}},
		{"message_send", MessageSend{Text: "olá"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewRequest("a", "b", tt.params)
			if err != nil {
				t.Fatalf("unexpected encode error: %v", err)
			}
			decoded, err := DecodeParams(env)
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if decoded.Method() != tt.params.Method() {
				t.Errorf("expected method %q, got %q", tt.params.Method(), decoded.Method())
			}
		})
	}
}

func TestDecodeParamsFields(t *testing.T) {
	env, err := NewRequest("supervisor", "flamengo", TurnNotification{
		Turn:              2,
		Speaker:           "flamengo",
		Phase:             "rebuttal",
		OpponentStatement: "PESQUISADOR: quantos títulos tem o Fluminense?",
		Research:          "4 brasileiros",
		RemainingSeconds:  180,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := DecodeParams(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tn, ok := decoded.(TurnNotification)
	if !ok {
		t.Fatalf("expected TurnNotification, got %T", decoded)
	}
	if tn.Turn != 2 || tn.Speaker != "flamengo" || tn.Phase != "rebuttal" {
		t.Errorf("unexpected fields: %+v", tn)
	}
	if tn.OpponentStatement != "PESQUISADOR: quantos títulos tem o Fluminense?" {
		t.Errorf("opponent statement not preserved: %q", tn.OpponentStatement)
	}
	if tn.RemainingSeconds != 180 {
		t.Errorf("expected remaining 180, got %v", tn.RemainingSeconds)
	}
}

func TestDecodeParamsUnknownMethod(t *testing.T) {
	env, err := NewEnvelope("a", "b", "no_such_method", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = DecodeParams(env)
	if !errors.HasCode(err, errors.CodeMethodNotFound) {
		t.Errorf("expected METHOD_NOT_FOUND, got %v", err)
	}
}

func TestEnvelopeMarshalJSON(t *testing.T) {
	env, err := NewRequest("supervisor", "fluminense", MessageSend{Text: "sua vez"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["jsonrpc"] != "2.0" {
		t.Errorf("expected jsonrpc on the wire, got %v", decoded["jsonrpc"])
	}
	params, ok := decoded["params"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected params object, got %T", decoded["params"])
	}
	if params["text"] != "sua vez" {
		t.Errorf("expected text param, got %v", params["text"])
	}
}
