// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for the
// debate system. Error codes map onto JSON-RPC protocol error codes so that
// routing failures can be surfaced as structured error envelopes.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies debate-system errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeDuplicateAgent indicates an agent name was registered twice.
	CodeDuplicateAgent ErrorCode = "DUPLICATE_AGENT"

	// CodeUnknownAgent indicates a directory lookup for an absent agent.
	CodeUnknownAgent ErrorCode = "UNKNOWN_AGENT"

	// CodeRecipientNotFound indicates an envelope addressed to an agent
	// that does not resolve in the directory.
	CodeRecipientNotFound ErrorCode = "RECIPIENT_NOT_FOUND"

	// CodeInvalidDuration indicates a debate duration outside the
	// configured bounds.
	CodeInvalidDuration ErrorCode = "INVALID_DURATION"

	// CodeNotStarted indicates a scheduler operation before start.
	CodeNotStarted ErrorCode = "NOT_STARTED"

	// CodeAlreadyActive indicates start was called on an active debate.
	CodeAlreadyActive ErrorCode = "ALREADY_ACTIVE"

	// CodeGenerationUnavailable indicates the text-generation backend is
	// not configured or not reachable.
	CodeGenerationUnavailable ErrorCode = "GENERATION_UNAVAILABLE"

	// CodeResearchUnavailable indicates the data-lookup actor could not
	// answer. It is a sentinel condition, never a hard failure.
	CodeResearchUnavailable ErrorCode = "RESEARCH_UNAVAILABLE"

	// CodeMalformedEnvelope indicates an envelope missing a required field.
	CodeMalformedEnvelope ErrorCode = "MALFORMED_ENVELOPE"

	// CodeMethodNotFound indicates an envelope method no handler accepts.
	CodeMethodNotFound ErrorCode = "METHOD_NOT_FOUND"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"
)

// DebateError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type DebateError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	RPCCode     int // JSON-RPC error code for error envelopes
}

// Error implements the error interface.
func (e *DebateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *DebateError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *DebateError) MarshalJSON() ([]byte, error) {
	type Alias DebateError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new DebateError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *DebateError {
	return &DebateError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
		RPCCode: codeToRPCCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *DebateError) WithContext(key string, value interface{}) *DebateError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *DebateError) WithRecoverable(recoverable bool) *DebateError {
	e.Recoverable = recoverable
	return e
}

// AsDebateError attempts to convert an error to a DebateError.
// Returns the error as DebateError if it is one, or wraps it otherwise.
func AsDebateError(err error) *DebateError {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DebateError); ok {
		return de
	}
	return New(CodeInternal, "wrapped error", err)
}

// HasCode reports whether err is a DebateError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	de, ok := err.(*DebateError)
	return ok && de.Code == code
}

// codeToRPCCode maps error codes to JSON-RPC error codes. The values follow
// the standard RPC fault taxonomy: -32601 method not found, -32602 invalid
// params, -32603 internal, with -32001 reserved for agent-not-found.
func codeToRPCCode(code ErrorCode) int {
	switch code {
	case CodeUnknownAgent, CodeRecipientNotFound:
		return -32001
	case CodeMalformedEnvelope:
		return -32600
	case CodeMethodNotFound:
		return -32601
	case CodeInvalidDuration:
		return -32602
	case CodeTimeout:
		return -32002
	default:
		return -32603
	}
}
