// SPDX-License-Identifier: Apache-2.0
package facts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

func TestStaticSourceTitles(t *testing.T) {
	s := NewStaticSource()
	ans, err := s.Search(context.Background(), "Quantos títulos brasileiros tem o Flamengo?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Status != StatusSuccess {
		t.Fatalf("expected success, got %q", ans.Status)
	}
	if !strings.Contains(ans.Text, "8 títulos") {
		t.Errorf("expected brasileirão titles, got %q", ans.Text)
	}
	if len(ans.Sources) == 0 {
		t.Errorf("expected sources on success")
	}
}

func TestStaticSourceTopics(t *testing.T) {
	s := NewStaticSource()
	tests := []struct {
		query    string
		fragment string
	}{
		{"quem são os ídolos do Fluminense?", "Didi"},
		{"qual a história do Flamengo? quando foi fundado?", "1895"},
		{"como está a fase atual do Fluminense?", "LIBERTADORES 2023"},
		{"títulos do fluminense", "4 títulos"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ans, err := s.Search(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ans.Status != StatusSuccess {
				t.Fatalf("expected success, got %q (%s)", ans.Status, ans.Text)
			}
			if !strings.Contains(ans.Text, tt.fragment) {
				t.Errorf("expected %q in answer, got %q", tt.fragment, ans.Text)
			}
		})
	}
}

func TestStaticSourceUnknownTeam(t *testing.T) {
	s := NewStaticSource()
	ans, err := s.Search(context.Background(), "quantos títulos tem o Botafogo?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Status != StatusNotFound {
		t.Errorf("expected not_found, got %q", ans.Status)
	}
}

type stubToolCaller struct {
	lastName string
	lastArgs interface{}
	result   *mcp.CallToolResult
	err      error
	calls    int
}

func (s *stubToolCaller) CallTool(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.calls++
	s.lastName = req.Params.Name
	s.lastArgs = req.Params.Arguments
	return s.result, s.err
}

func (s *stubToolCaller) Close() error { return nil }

func TestMCPSourceSearch(t *testing.T) {
	caller := &stubToolCaller{
		result: &mcp.CallToolResult{
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "O Flamengo tem 3 Libertadores."}},
		},
	}
	s := NewMCPSource(caller, "lookup_team_stats")

	ans, err := s.Search(context.Background(), "libertadores do flamengo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Status != StatusSuccess {
		t.Errorf("expected success, got %q", ans.Status)
	}
	if ans.Text != "O Flamengo tem 3 Libertadores." {
		t.Errorf("unexpected text %q", ans.Text)
	}
	if caller.lastName != "lookup_team_stats" {
		t.Errorf("expected tool name propagated, got %q", caller.lastName)
	}
	args, ok := caller.lastArgs.(map[string]interface{})
	if !ok || args["query"] != "libertadores do flamengo" {
		t.Errorf("expected query argument, got %v", caller.lastArgs)
	}
}

func TestMCPSourceToolError(t *testing.T) {
	caller := &stubToolCaller{
		result: &mcp.CallToolResult{IsError: true},
	}
	s := NewMCPSource(caller, "lookup_team_stats")

	ans, err := s.Search(context.Background(), "qualquer pergunta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Status != StatusNotFound {
		t.Errorf("expected not_found on tool error, got %q", ans.Status)
	}
}

func TestMCPSourceTransportFailureRetriesThenFails(t *testing.T) {
	caller := &stubToolCaller{err: fmt.Errorf("broken pipe")}
	s := NewMCPSource(caller, "lookup_team_stats", WithRetry(2, 1))

	_, err := s.Search(context.Background(), "pergunta")
	if !errors.HasCode(err, errors.CodeResearchUnavailable) {
		t.Fatalf("expected RESEARCH_UNAVAILABLE, got %v", err)
	}
	if caller.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", caller.calls)
	}
}
