package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

func TestMockProvider(t *testing.T) {
	mock := &MockProvider{Response: "O Flamengo é gigante"}
	resp, err := mock.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "argumente"}},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "O Flamengo é gigante" {
		t.Errorf("Expected scripted content, got '%s'", resp.Content)
	}
}

func TestScriptedMockProviderSequence(t *testing.T) {
	mock := NewScriptedMockProvider("test-model", "primeiro", "segundo")
	for _, want := range []string{"primeiro", "segundo"} {
		resp, err := mock.Chat(context.Background(), ChatRequest{})
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if resp.Content != want {
			t.Errorf("expected %q, got %q", want, resp.Content)
		}
	}
	if _, err := mock.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Errorf("expected error after script exhausted")
	}
	if mock.CallCount != 3 {
		t.Errorf("expected 3 calls, got %d", mock.CallCount)
	}
}

func TestGeneratorWithoutBackend(t *testing.T) {
	g := NewGenerator(nil, "", 0)
	if g.Available() {
		t.Errorf("expected no backend available")
	}
	_, err := g.Generate(context.Background(), "persona", "prompt")
	if !errors.HasCode(err, errors.CodeGenerationUnavailable) {
		t.Errorf("expected GENERATION_UNAVAILABLE, got %v", err)
	}
}

func TestGeneratorWrapsProviderError(t *testing.T) {
	g := NewGenerator(&FailingMockProvider{}, "m", 0.7)
	_, err := g.Generate(context.Background(), "persona", "prompt")
	if !errors.HasCode(err, errors.CodeGenerationUnavailable) {
		t.Errorf("expected GENERATION_UNAVAILABLE, got %v", err)
	}
	if !errors.AsDebateError(err).Recoverable {
		t.Errorf("expected recoverable error")
	}
}

func TestGeneratorSendsPersonaAndPrompt(t *testing.T) {
	var captured ChatRequest
	mock := &MockProvider{ChatFunc: func(_ context.Context, req ChatRequest) (*ChatResponse, error) {
		captured = req
		return &ChatResponse{Content: "ok"}, nil
	}}
	g := NewGenerator(mock, "llama3", 0.9)

	out, err := g.Generate(context.Background(), "torcedor do Flamengo", "responda ao rival")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("unexpected content %q", out)
	}
	if captured.Model != "llama3" || captured.Temperature != 0.9 {
		t.Errorf("model settings not propagated: %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != RoleSystem || captured.Messages[1].Role != RoleUser {
		t.Errorf("expected system+user messages, got %+v", captured.Messages)
	}
}

func TestOllamaProviderChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Stream {
			t.Errorf("expected non-streaming request")
		}
		json.NewEncoder(w).Encode(ollamaResponse{
			Message:         Message{Role: RoleAssistant, Content: "resposta"},
			Done:            true,
			EvalCount:       5,
			PromptEvalCount: 7,
		})
	}))
	defer server.Close()

	p := NewOllama(server.URL)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:    "llama3",
		Messages: []Message{{Role: RoleUser, Content: "oi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "resposta" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestOllamaProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllama(server.URL)
	if _, err := p.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Errorf("expected error on server failure")
	}
}
