// SPDX-License-Identifier: Apache-2.0
package router

import (
	"context"
	"testing"

	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
	"github.com/charlenopires/FlaFludeAgentes/pkg/tracker"
)

func echoHandler(name string) directory.Handler {
	return directory.HandlerFunc(func(_ context.Context, env *protocol.Envelope) (*protocol.Response, error) {
		return protocol.NewResult(env, name, map[string]interface{}{
			"echo": env.Method,
		})
	})
}

func newTestRouter(t *testing.T, agents map[string]directory.Handler) (*Router, *tracker.Tracker) {
	t.Helper()
	dir := directory.New()
	// Fixed registration order for deterministic broadcast.
	for _, name := range []string{"supervisor", "flamengo", "fluminense", "pesquisador"} {
		handler, ok := agents[name]
		if !ok {
			continue
		}
		if err := dir.Register(directory.Card{Name: name}, handler); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	track := tracker.New()
	return New(dir, track, nil), track
}

func TestSendDelivers(t *testing.T) {
	r, track := newTestRouter(t, map[string]directory.Handler{
		"flamengo": echoHandler("flamengo"),
	})

	env, err := protocol.NewRequest("supervisor", "flamengo", protocol.Ping{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp := r.Send(context.Background(), env)
	if resp.IsError() {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	if resp.ID != env.ID {
		t.Errorf("expected response id to mirror request")
	}
	if resp.ResultMap()["echo"] != protocol.MethodPing {
		t.Errorf("unexpected result %v", resp.ResultMap())
	}

	// Request and response legs share one correlation id.
	all := track.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 tracked entries, got %d", len(all))
	}
	if all[0].CorrelationID != all[1].CorrelationID {
		t.Errorf("expected shared correlation id")
	}
	flow := track.Flow(all[0].CorrelationID)
	if len(flow) != 2 || flow[0].Direction != tracker.DirectionRequest || flow[1].Direction != tracker.DirectionResponse {
		t.Errorf("unexpected flow: %+v", flow)
	}
}

func TestSendRecipientNotFound(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"flamengo": echoHandler("flamengo"),
	})

	env, _ := protocol.NewRequest("supervisor", "juiz", protocol.Ping{})
	resp := r.Send(context.Background(), env)
	if !resp.IsError() {
		t.Fatalf("expected error response")
	}
	if resp.Error.Code != -32001 {
		t.Errorf("expected -32001, got %d", resp.Error.Code)
	}
}

func TestSendMalformedEnvelope(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"flamengo": echoHandler("flamengo"),
	})

	env, _ := protocol.NewRequest("supervisor", "flamengo", protocol.Ping{})
	env.Method = ""
	resp := r.Send(context.Background(), env)
	if !resp.IsError() {
		t.Fatalf("expected error response")
	}
	if resp.Error.Code != -32600 {
		t.Errorf("expected -32600, got %d", resp.Error.Code)
	}
}

func TestSendHandlerPanicCaptured(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"flamengo": directory.HandlerFunc(func(_ context.Context, _ *protocol.Envelope) (*protocol.Response, error) {
			panic("argumento explosivo")
		}),
	})

	env, _ := protocol.NewRequest("supervisor", "flamengo", protocol.Ping{})
	resp := r.Send(context.Background(), env)
	if !resp.IsError() {
		t.Fatalf("expected error response, not a panic")
	}
	if resp.Error.Code != -32603 {
		t.Errorf("expected -32603, got %d", resp.Error.Code)
	}
}

func TestSendHandlerTypedError(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"flamengo": directory.HandlerFunc(func(_ context.Context, _ *protocol.Envelope) (*protocol.Response, error) {
			return nil, errors.New(errors.CodeMethodNotFound, "não falo disso", nil)
		}),
	})

	env, _ := protocol.NewRequest("supervisor", "flamengo", protocol.Ping{})
	resp := r.Send(context.Background(), env)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("expected -32601, got %+v", resp.Error)
	}
}

func TestSendHandlerGRPCStatus(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"flamengo": directory.HandlerFunc(func(_ context.Context, _ *protocol.Envelope) (*protocol.Response, error) {
			return nil, status.Error(grpccodes.Unimplemented, "método desconhecido")
		}),
	})

	env, _ := protocol.NewRequest("supervisor", "flamengo", protocol.Ping{})
	resp := r.Send(context.Background(), env)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("expected gRPC Unimplemented mapped to -32601, got %+v", resp.Error)
	}
}

func TestBroadcastFanOut(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"supervisor":  echoHandler("supervisor"),
		"flamengo":    echoHandler("flamengo"),
		"fluminense":  echoHandler("fluminense"),
		"pesquisador": echoHandler("pesquisador"),
	})

	got := r.Broadcast(context.Background(), "supervisor", protocol.DebateStarted{
		Opening:      "começou",
		FirstSpeaker: "flamengo",
	}, nil)

	if len(got) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(got))
	}
	if _, ok := got["supervisor"]; ok {
		t.Errorf("sender must not receive its own broadcast")
	}
	for name, resp := range got {
		if resp.IsError() {
			t.Errorf("recipient %s: unexpected error %+v", name, resp.Error)
		}
	}
}

func TestBroadcastExclude(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"supervisor":  echoHandler("supervisor"),
		"flamengo":    echoHandler("flamengo"),
		"fluminense":  echoHandler("fluminense"),
		"pesquisador": echoHandler("pesquisador"),
	})

	got := r.Broadcast(context.Background(), "supervisor", protocol.Ping{}, map[string]bool{"pesquisador": true})
	if len(got) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(got))
	}
	if _, ok := got["pesquisador"]; ok {
		t.Errorf("excluded agent must not be reached")
	}
}

func TestBroadcastPartialFailure(t *testing.T) {
	r, _ := newTestRouter(t, map[string]directory.Handler{
		"supervisor": echoHandler("supervisor"),
		"flamengo":   echoHandler("flamengo"),
		"fluminense": directory.HandlerFunc(func(_ context.Context, _ *protocol.Envelope) (*protocol.Response, error) {
			panic("fora do ar")
		}),
	})

	got := r.Broadcast(context.Background(), "supervisor", protocol.Ping{}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(got))
	}
	if got["flamengo"].IsError() {
		t.Errorf("healthy recipient must succeed")
	}
	if !got["fluminense"].IsError() {
		t.Errorf("failed recipient must carry its own error envelope")
	}
}
