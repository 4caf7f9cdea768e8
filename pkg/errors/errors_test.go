// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("network timeout")
	de := New(CodeTimeout, "reply generation timed out", cause)

	if de.Code != CodeTimeout {
		t.Errorf("expected CodeTimeout, got %v", de.Code)
	}
	if de.Message != "reply generation timed out" {
		t.Errorf("expected message 'reply generation timed out', got %q", de.Message)
	}
	if de.Err != cause {
		t.Errorf("expected cause to be preserved")
	}
	if !errors.Is(de, cause) {
		t.Errorf("expected errors.Is to work with wrapped error")
	}
}

func TestWithContext(t *testing.T) {
	de := New(CodeRecipientNotFound, "delivery failed", nil)
	de.WithContext("to_agent", "juiz").
		WithContext("method", "message/send")

	if de.Context["to_agent"] != "juiz" {
		t.Errorf("expected context to_agent to be 'juiz'")
	}
	if de.Context["method"] != "message/send" {
		t.Errorf("expected context method to be set")
	}
}

func TestWithRecoverable(t *testing.T) {
	de := New(CodeGenerationUnavailable, "backend offline", nil)
	if de.Recoverable {
		t.Errorf("expected recoverable to be false by default")
	}

	de.WithRecoverable(true)
	if !de.Recoverable {
		t.Errorf("expected recoverable to be true after WithRecoverable")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		de       *DebateError
		expected string
	}{
		{
			name:     "with cause",
			de:       New(CodeTimeout, "turn timed out", errors.New("deadline exceeded")),
			expected: "[TIMEOUT] turn timed out: deadline exceeded",
		},
		{
			name:     "without cause",
			de:       New(CodeUnknownAgent, "agent not registered", nil),
			expected: "[UNKNOWN_AGENT] agent not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.de.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAsDebateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "already DebateError",
			err:      New(CodeNotStarted, "no active debate", nil),
			expected: CodeNotStarted,
		},
		{
			name:     "generic error",
			err:      errors.New("generic error"),
			expected: CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := AsDebateError(tt.err)
			if tt.expected == "" {
				if de != nil {
					t.Errorf("expected nil for nil error")
				}
			} else {
				if de == nil {
					t.Errorf("expected non-nil DebateError")
				} else if de.Code != tt.expected {
					t.Errorf("expected %v, got %v", tt.expected, de.Code)
				}
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	de := New(CodeResearchUnavailable, "lookup actor absent", nil)
	if !HasCode(de, CodeResearchUnavailable) {
		t.Errorf("expected HasCode to match")
	}
	if HasCode(de, CodeTimeout) {
		t.Errorf("expected HasCode to reject a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("expected HasCode to reject a plain error")
	}
}

func TestMarshalJSON(t *testing.T) {
	de := New(CodeRecipientNotFound, "delivery failed", errors.New("no such agent"))
	de.WithContext("to_agent", "juiz").
		WithRecoverable(true)

	data, err := json.Marshal(de)
	if err != nil {
		t.Fatalf("unexpected error marshaling: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unexpected error unmarshaling: %v", err)
	}

	if result["code"] != "RECIPIENT_NOT_FOUND" {
		t.Errorf("expected code 'RECIPIENT_NOT_FOUND', got %v", result["code"])
	}
	if result["recoverable"] != true {
		t.Errorf("expected recoverable true")
	}
}

func TestRPCCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{CodeUnknownAgent, -32001},
		{CodeRecipientNotFound, -32001},
		{CodeMalformedEnvelope, -32600},
		{CodeMethodNotFound, -32601},
		{CodeInvalidDuration, -32602},
		{CodeTimeout, -32002},
		{CodeInternal, -32603},
		{CodeAlreadyActive, -32603},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			de := New(tt.code, "test", nil)
			if de.RPCCode != tt.expected {
				t.Errorf("expected rpc code %d, got %d", tt.expected, de.RPCCode)
			}
		})
	}
}
