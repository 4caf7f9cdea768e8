// SPDX-License-Identifier: Apache-2.0
// Package router delivers envelopes between registered agents. Delivery
// failures come back as error response envelopes, never as panics or hard
// failures: the debate degrades, it does not crash.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/charlenopires/FlaFludeAgentes/pkg/directory"
	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
	"github.com/charlenopires/FlaFludeAgentes/pkg/tracker"
)

const tracerName = "flaflu/router"

// Router routes envelopes through the directory and records every exchange
// in the correlation tracker.
type Router struct {
	dir    *directory.Directory
	track  *tracker.Tracker
	logger *slog.Logger
}

// New creates a router over a directory and tracker.
func New(dir *directory.Directory, track *tracker.Tracker, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{dir: dir, track: track, logger: logger}
}

// Send delivers one envelope and returns the response. An unresolvable
// recipient, a malformed envelope, a handler error, or a handler panic all
// produce an error response envelope.
func (r *Router) Send(ctx context.Context, env *protocol.Envelope) *protocol.Response {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "router.send",
		trace.WithAttributes(
			attribute.String("a2a.method", safeMethod(env)),
			attribute.String("a2a.from", safeFrom(env)),
			attribute.String("a2a.to", safeTo(env)),
		))
	defer span.End()

	correlationID := r.track.NewID()
	resp := r.deliver(ctx, env, correlationID)
	r.recordResponse(correlationID, env, resp)
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Error.Message)
		span.SetAttributes(attribute.Int("a2a.error_code", resp.Error.Code))
		r.logger.Warn("envelope delivery failed",
			"method", safeMethod(env),
			"to_agent", safeTo(env),
			"rpc_code", resp.Error.Code,
			"error", resp.Error.Message)
	}
	return resp
}

func (r *Router) deliver(ctx context.Context, env *protocol.Envelope, correlationID string) *protocol.Response {
	if err := env.Validate(); err != nil {
		return protocol.NewErrorResponse(env, "router", errors.AsDebateError(err))
	}
	r.track.Record(tracker.Entry{
		CorrelationID: correlationID,
		Direction:     tracker.DirectionRequest,
		EnvelopeID:    env.ID,
		Method:        env.Method,
		FromAgent:     env.FromAgent,
		ToAgent:       env.ToAgent,
	})

	_, handler, err := r.dir.Lookup(env.ToAgent)
	if err != nil {
		return protocol.NewErrorResponse(env, "router",
			errors.New(errors.CodeRecipientNotFound, "recipient not found", err).
				WithContext("to_agent", env.ToAgent).
				WithRecoverable(true))
	}

	resp, err := r.invoke(ctx, handler, env)
	if err != nil {
		return protocol.NewErrorResponse(env, env.ToAgent, mapHandlerError(err))
	}
	if resp == nil {
		return protocol.NewErrorResponse(env, env.ToAgent,
			errors.New(errors.CodeInternal, "handler returned no response", nil))
	}
	return resp
}

// invoke calls the handler with panic capture.
func (r *Router) invoke(ctx context.Context, handler directory.Handler, env *protocol.Envelope) (resp *protocol.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = errors.New(errors.CodeInternal, "handler panicked", fmt.Errorf("%v", rec)).
				WithContext("to_agent", env.ToAgent).
				WithContext("method", env.Method)
		}
	}()
	return handler.Handle(ctx, env)
}

func (r *Router) recordResponse(correlationID string, env *protocol.Envelope, resp *protocol.Response) {
	entry := tracker.Entry{
		CorrelationID: correlationID,
		Direction:     tracker.DirectionResponse,
		EnvelopeID:    resp.ID,
		Method:        safeMethod(env),
		FromAgent:     resp.FromAgent,
		ToAgent:       resp.ToAgent,
	}
	if resp.IsError() {
		entry.ErrorCode = resp.Error.Code
		entry.ErrorMessage = resp.Error.Message
	}
	r.track.Record(entry)
}

// Broadcast fans an envelope out to every registered agent except the sender
// and the exclude set, in directory insertion order. Each recipient gets its
// own response; failures stay per-recipient and never abort the fan-out.
func (r *Router) Broadcast(ctx context.Context, sender string, params protocol.Params, exclude map[string]bool) map[string]*protocol.Response {
	out := make(map[string]*protocol.Response)
	for _, name := range r.dir.Names() {
		if name == sender || exclude[name] {
			continue
		}
		env, err := protocol.NewRequest(sender, name, params)
		if err != nil {
			out[name] = protocol.NewErrorResponse(nil, "router", errors.AsDebateError(err))
			continue
		}
		out[name] = r.Send(ctx, env)
	}
	return out
}

// mapHandlerError folds handler errors into the typed taxonomy. gRPC status
// errors keep their semantics: NotFound maps to the agent-not-found code,
// InvalidArgument to invalid params, Unimplemented to method-not-found.
func mapHandlerError(err error) *errors.DebateError {
	if de, ok := err.(*errors.DebateError); ok {
		return de
	}
	if st, ok := status.FromError(err); ok && st.Code() != grpccodes.OK && st.Code() != grpccodes.Unknown {
		switch st.Code() {
		case grpccodes.NotFound:
			return errors.New(errors.CodeRecipientNotFound, st.Message(), err)
		case grpccodes.InvalidArgument:
			return errors.New(errors.CodeInvalidDuration, st.Message(), err)
		case grpccodes.Unimplemented:
			return errors.New(errors.CodeMethodNotFound, st.Message(), err)
		case grpccodes.DeadlineExceeded:
			return errors.New(errors.CodeTimeout, st.Message(), err)
		}
	}
	return errors.New(errors.CodeInternal, "handler failed", err)
}

func safeMethod(env *protocol.Envelope) string {
	if env == nil {
		return ""
	}
	return env.Method
}

func safeFrom(env *protocol.Envelope) string {
	if env == nil {
		return ""
	}
	return env.FromAgent
}

func safeTo(env *protocol.Envelope) string {
	if env == nil {
		return ""
	}
	return env.ToAgent
}
