// SPDX-License-Identifier: Apache-2.0
// Package protocol defines the A2A message envelope exchanged between debate
// agents. Envelopes follow the JSON-RPC 2.0 shape with agent routing metadata
// so the in-process exchange stays wire-faithful.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

// Version tags every envelope with the protocol revision in use.
const Version = "A2A-v1.0"

// JSONRPCVersion is the JSON-RPC revision carried on the wire.
const JSONRPCVersion = "2.0"

// Envelope is a request message between two agents.
type Envelope struct {
	JSONRPC   string           `json:"jsonrpc"`
	ID        string           `json:"id"`
	Method    string           `json:"method"`
	Params    *structpb.Struct `json:"params,omitempty"`
	FromAgent string           `json:"from_agent"`
	ToAgent   string           `json:"to_agent"`
	Timestamp time.Time        `json:"timestamp"`
	Protocol  string           `json:"protocol"`
}

// RPCError is the error member of a response envelope.
type RPCError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Response is the reply to an Envelope. Exactly one of Result or Error is set.
type Response struct {
	JSONRPC   string           `json:"jsonrpc"`
	ID        string           `json:"id"`
	Result    *structpb.Struct `json:"result,omitempty"`
	Error     *RPCError        `json:"error,omitempty"`
	FromAgent string           `json:"from_agent"`
	ToAgent   string           `json:"to_agent"`
	Timestamp time.Time        `json:"timestamp"`
	Protocol  string           `json:"protocol"`
}

// NewEnvelope builds a request envelope with a fresh id and the current time.
func NewEnvelope(from, to, method string, params map[string]interface{}) (*Envelope, error) {
	payload, err := structpb.NewStruct(normalizeStructMap(params))
	if err != nil {
		return nil, errors.New(errors.CodeMalformedEnvelope, "params not representable as struct", err).
			WithContext("method", method)
	}
	return &Envelope{
		JSONRPC:   JSONRPCVersion,
		ID:        uuid.NewString(),
		Method:    method,
		Params:    payload,
		FromAgent: from,
		ToAgent:   to,
		Timestamp: time.Now().UTC(),
		Protocol:  Version,
	}, nil
}

// NewRequest builds an envelope from a typed params variant.
func NewRequest(from, to string, params Params) (*Envelope, error) {
	return NewEnvelope(from, to, params.Method(), params.toMap())
}

// Validate checks the structural invariants of an envelope.
func (e *Envelope) Validate() error {
	switch {
	case e == nil:
		return errors.New(errors.CodeMalformedEnvelope, "nil envelope", nil)
	case e.JSONRPC != JSONRPCVersion:
		return errors.New(errors.CodeMalformedEnvelope, "jsonrpc must be 2.0", nil).
			WithContext("jsonrpc", e.JSONRPC)
	case e.ID == "":
		return errors.New(errors.CodeMalformedEnvelope, "missing id", nil)
	case e.Method == "":
		return errors.New(errors.CodeMalformedEnvelope, "missing method", nil).
			WithContext("id", e.ID)
	case e.ToAgent == "":
		return errors.New(errors.CodeMalformedEnvelope, "missing to_agent", nil).
			WithContext("id", e.ID)
	}
	return nil
}

// ParamsMap returns the params as a plain map. Nil params yield an empty map.
func (e *Envelope) ParamsMap() map[string]interface{} {
	if e.Params == nil {
		return map[string]interface{}{}
	}
	return e.Params.AsMap()
}

// MarshalJSON flattens structpb params into plain JSON.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	type wire struct {
		JSONRPC   string                 `json:"jsonrpc"`
		ID        string                 `json:"id"`
		Method    string                 `json:"method"`
		Params    map[string]interface{} `json:"params,omitempty"`
		FromAgent string                 `json:"from_agent"`
		ToAgent   string                 `json:"to_agent"`
		Timestamp time.Time              `json:"timestamp"`
		Protocol  string                 `json:"protocol"`
	}
	w := wire{
		JSONRPC:   e.JSONRPC,
		ID:        e.ID,
		Method:    e.Method,
		FromAgent: e.FromAgent,
		ToAgent:   e.ToAgent,
		Timestamp: e.Timestamp,
		Protocol:  e.Protocol,
	}
	if e.Params != nil {
		w.Params = e.Params.AsMap()
	}
	return json.Marshal(w)
}

// NewResult builds a success response mirroring the request's id.
func NewResult(req *Envelope, from string, result map[string]interface{}) (*Response, error) {
	payload, err := structpb.NewStruct(normalizeStructMap(result))
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "result not representable as struct", err)
	}
	return &Response{
		JSONRPC:   JSONRPCVersion,
		ID:        req.ID,
		Result:    payload,
		FromAgent: from,
		ToAgent:   req.FromAgent,
		Timestamp: time.Now().UTC(),
		Protocol:  Version,
	}, nil
}

// NewErrorResponse builds an error response from a typed debate error.
func NewErrorResponse(req *Envelope, from string, derr *errors.DebateError) *Response {
	resp := &Response{
		JSONRPC:   JSONRPCVersion,
		Timestamp: time.Now().UTC(),
		Protocol:  Version,
		FromAgent: from,
		Error: &RPCError{
			Code:    derr.RPCCode,
			Message: derr.Message,
			Data:    map[string]interface{}{"code": string(derr.Code)},
		},
	}
	if req != nil {
		resp.ID = req.ID
		resp.ToAgent = req.FromAgent
	}
	for k, v := range derr.Context {
		resp.Error.Data[k] = v
	}
	return resp
}

// IsError reports whether the response carries an error member.
func (r *Response) IsError() bool {
	return r != nil && r.Error != nil
}

// ResultMap returns the result as a plain map. Nil result yields an empty map.
func (r *Response) ResultMap() map[string]interface{} {
	if r == nil || r.Result == nil {
		return map[string]interface{}{}
	}
	return r.Result.AsMap()
}

// MarshalJSON flattens the structpb result into plain JSON.
func (r *Response) MarshalJSON() ([]byte, error) {
	type wire struct {
		JSONRPC   string                 `json:"jsonrpc"`
		ID        string                 `json:"id"`
		Result    map[string]interface{} `json:"result,omitempty"`
		Error     *RPCError              `json:"error,omitempty"`
		FromAgent string                 `json:"from_agent"`
		ToAgent   string                 `json:"to_agent"`
		Timestamp time.Time              `json:"timestamp"`
		Protocol  string                 `json:"protocol"`
	}
	w := wire{
		JSONRPC:   r.JSONRPC,
		ID:        r.ID,
		Error:     r.Error,
		FromAgent: r.FromAgent,
		ToAgent:   r.ToAgent,
		Timestamp: r.Timestamp,
		Protocol:  r.Protocol,
	}
	if r.Result != nil {
		w.Result = r.Result.AsMap()
	}
	return json.Marshal(w)
}

// normalizeStructMap coerces values into the subset structpb accepts.
func normalizeStructMap(values map[string]interface{}) map[string]interface{} {
	if values == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(values))
	for key, value := range values {
		out[key] = normalizeStructValue(value)
	}
	return out
}

func normalizeStructValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case nil, bool, string, float64:
		return typed
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return typed.Seconds()
	case []string:
		out := make([]interface{}, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, v := range typed {
			out[i] = normalizeStructValue(v)
		}
		return out
	case map[string]interface{}:
		return normalizeStructMap(typed)
	default:
		// Last resort: round-trip through JSON.
		raw, err := json.Marshal(typed)
		if err != nil {
			return nil
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil
		}
		return generic
	}
}
