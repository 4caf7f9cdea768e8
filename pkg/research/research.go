// SPDX-License-Identifier: Apache-2.0
// Package research implements the in-line research sub-protocol: advocates
// embed a marker in their statement, the supervisor extracts the query and
// runs a bounded round trip to the data-lookup agent before the next turn.
package research

import (
	"context"
	"strings"
	"time"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
	"github.com/charlenopires/FlaFludeAgentes/pkg/protocol"
	"github.com/charlenopires/FlaFludeAgentes/pkg/resilience"
)

// MarkerPrefix is the canonical research marker: the keyword followed by the
// query, running to the end of the line.
const MarkerPrefix = "PESQUISADOR:"

// Legacy bracket markers, accepted only when enabled in config.
const (
	legacyOpen  = "[PESQUISA]"
	legacyClose = "[/PESQUISA]"
)

// SentinelAnswer is returned whenever the lookup agent cannot answer.
// It is a normal debate datum, never an error.
const SentinelAnswer = "Não há dados disponíveis sobre essa consulta."

// Sender delivers an envelope and returns the response. The router satisfies
// this; tests substitute fakes.
type Sender interface {
	Send(ctx context.Context, env *protocol.Envelope) *protocol.Response
}

// Config parameterizes the research round trip.
type Config struct {
	// Researcher is the directory name of the data-lookup agent.
	Researcher string

	// Timeout bounds the round trip. Zero means no boundary.
	Timeout time.Duration

	// LegacyMarkers additionally accepts the bracket pair convention.
	LegacyMarkers bool
}

func (c Config) withDefaults() Config {
	if c.Researcher == "" {
		c.Researcher = "pesquisador"
	}
	return c
}

// ExtractRequest scans a statement for a research marker and returns the
// trimmed query. The canonical keyword prefix is matched case-insensitively;
// when legacy markers are enabled the earliest marker in the text wins.
func ExtractRequest(text string, legacy bool) (string, bool) {
	prefixQuery, prefixAt := extractPrefix(text)
	if !legacy {
		if prefixAt < 0 {
			return "", false
		}
		return prefixQuery, true
	}

	legacyQuery, legacyAt := extractLegacy(text)
	switch {
	case prefixAt < 0 && legacyAt < 0:
		return "", false
	case prefixAt < 0:
		return legacyQuery, true
	case legacyAt < 0:
		return prefixQuery, true
	case legacyAt < prefixAt:
		return legacyQuery, true
	default:
		return prefixQuery, true
	}
}

// extractPrefix finds the canonical marker and returns the query running to
// the end of the line, plus the marker position. Position -1 means absent.
func extractPrefix(text string) (string, int) {
	upper := strings.ToUpper(text)
	at := strings.Index(upper, MarkerPrefix)
	if at < 0 {
		return "", -1
	}
	rest := text[at+len(MarkerPrefix):]
	if eol := strings.IndexByte(rest, '\n'); eol >= 0 {
		rest = rest[:eol]
	}
	return strings.TrimSpace(rest), at
}

// extractLegacy finds the bracket pair and returns the enclosed query.
func extractLegacy(text string) (string, int) {
	upper := strings.ToUpper(text)
	open := strings.Index(upper, legacyOpen)
	if open < 0 {
		return "", -1
	}
	rest := text[open+len(legacyOpen):]
	if end := strings.Index(strings.ToUpper(rest), legacyClose); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), open
}

// Handler runs research round trips through a sender.
type Handler struct {
	cfg    Config
	sender Sender
}

// NewHandler creates a research handler.
func NewHandler(cfg Config, sender Sender) *Handler {
	return &Handler{cfg: cfg.withDefaults(), sender: sender}
}

// Extract applies the handler's marker configuration to a statement.
func (h *Handler) Extract(text string) (string, bool) {
	return ExtractRequest(text, h.cfg.LegacyMarkers)
}

// Fulfil runs one bounded research round trip on behalf of a requester.
// Any failure, error envelope, or timeout degrades to the sentinel answer;
// the debate never stalls on research.
func (h *Handler) Fulfil(ctx context.Context, supervisor, requester, query string) protocol.ResearchResponse {
	sentinel := protocol.ResearchResponse{
		Status: "not_found",
		Answer: SentinelAnswer,
		Query:  query,
	}

	env, err := protocol.NewRequest(supervisor, h.cfg.Researcher, protocol.ResearchRequest{
		Query:     query,
		Requester: requester,
	})
	if err != nil {
		return sentinel
	}

	value, err := resilience.WithTimeoutResult(ctx, resilience.TimeoutConfig{Duration: h.cfg.Timeout}, func() (interface{}, error) {
		resp := h.sender.Send(ctx, env)
		if resp.IsError() {
			return nil, errors.New(errors.CodeResearchUnavailable, resp.Error.Message, nil).
				WithContext("rpc_code", resp.Error.Code).
				WithRecoverable(true)
		}
		return resp, nil
	})
	if err != nil {
		return sentinel
	}

	resp := value.(*protocol.Response)
	result := resp.ResultMap()
	answer, _ := result["answer"].(string)
	status, _ := result["status"].(string)
	if answer == "" || status == "" {
		return sentinel
	}
	out := protocol.ResearchResponse{
		Status: status,
		Answer: answer,
		Query:  query,
	}
	if raw, ok := result["sources"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out.Sources = append(out.Sources, s)
			}
		}
	}
	return out
}
