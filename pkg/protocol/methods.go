// SPDX-License-Identifier: Apache-2.0
package protocol

import (
	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

// Envelope method names. The set is closed; unknown methods decode to
// METHOD_NOT_FOUND at the handler boundary.
const (
	MethodStartDebate      = "start_debate"
	MethodDebateStarted    = "debate_started"
	MethodTurnNotification = "turn_notification"
	MethodResearchRequest  = "research_request"
	MethodResearchResponse = "research_response"
	MethodDebateFinished   = "debate_finished"
	MethodAnalyzeDebate    = "analyze_debate"
	MethodPing             = "ping"
	MethodMessageSend      = "message/send"
)

// Params is a typed envelope payload. Each variant knows its method name and
// how to flatten itself into wire params.
type Params interface {
	Method() string
	toMap() map[string]interface{}
}

// StartDebate asks the supervisor to open a debate.
type StartDebate struct {
	DurationMinutes int
	Topic           string
}

func (StartDebate) Method() string { return MethodStartDebate }

func (p StartDebate) toMap() map[string]interface{} {
	return map[string]interface{}{
		"duration_minutes": p.DurationMinutes,
		"topic":            p.Topic,
	}
}

// DebateStarted announces a debate opening to all participants.
type DebateStarted struct {
	Opening      string
	FirstSpeaker string
	TurnSeconds  float64
}

func (DebateStarted) Method() string { return MethodDebateStarted }

func (p DebateStarted) toMap() map[string]interface{} {
	return map[string]interface{}{
		"opening":       p.Opening,
		"first_speaker": p.FirstSpeaker,
		"turn_seconds":  p.TurnSeconds,
	}
}

// TurnNotification hands the floor to one advocate.
type TurnNotification struct {
	Turn              int
	Speaker           string
	Phase             string
	OpponentStatement string
	Research          string
	RemainingSeconds  float64
}

func (TurnNotification) Method() string { return MethodTurnNotification }

func (p TurnNotification) toMap() map[string]interface{} {
	return map[string]interface{}{
		"turn":               p.Turn,
		"speaker":            p.Speaker,
		"phase":              p.Phase,
		"opponent_statement": p.OpponentStatement,
		"research":           p.Research,
		"remaining_seconds":  p.RemainingSeconds,
	}
}

// ResearchRequest asks the data-lookup agent a factual question.
type ResearchRequest struct {
	Query     string
	Requester string
}

func (ResearchRequest) Method() string { return MethodResearchRequest }

func (p ResearchRequest) toMap() map[string]interface{} {
	return map[string]interface{}{
		"query":     p.Query,
		"requester": p.Requester,
	}
}

// ResearchResponse carries the data-lookup answer back.
type ResearchResponse struct {
	Status  string
	Answer  string
	Query   string
	Sources []string
}

func (ResearchResponse) Method() string { return MethodResearchResponse }

func (p ResearchResponse) toMap() map[string]interface{} {
	return map[string]interface{}{
		"status":  p.Status,
		"answer":  p.Answer,
		"query":   p.Query,
		"sources": p.Sources,
	}
}

// DebateFinished announces the end of the debate and the verdict.
type DebateFinished struct {
	Reason  string
	Winner  string
	Tie     bool
	Summary string
}

func (DebateFinished) Method() string { return MethodDebateFinished }

func (p DebateFinished) toMap() map[string]interface{} {
	return map[string]interface{}{
		"reason":  p.Reason,
		"winner":  p.Winner,
		"tie":     p.Tie,
		"summary": p.Summary,
	}
}

// AnalyzeDebate asks the supervisor for the scored verdict.
type AnalyzeDebate struct{}

func (AnalyzeDebate) Method() string { return MethodAnalyzeDebate }

func (AnalyzeDebate) toMap() map[string]interface{} {
	return map[string]interface{}{}
}

// Ping probes an agent for liveness.
type Ping struct{}

func (Ping) Method() string { return MethodPing }

func (Ping) toMap() map[string]interface{} {
	return map[string]interface{}{}
}

// MessageSend carries free-form text between agents.
type MessageSend struct {
	Text string
}

func (MessageSend) Method() string { return MethodMessageSend }

func (p MessageSend) toMap() map[string]interface{} {
	return map[string]interface{}{
		"text": p.Text,
	}
}

// DecodeParams reconstructs the typed variant carried by an envelope.
// Unknown methods yield METHOD_NOT_FOUND.
func DecodeParams(env *Envelope) (Params, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	m := env.ParamsMap()
	switch env.Method {
	case MethodStartDebate:
		return StartDebate{
			DurationMinutes: intField(m, "duration_minutes"),
			Topic:           stringField(m, "topic"),
		}, nil
	case MethodDebateStarted:
		return DebateStarted{
			Opening:      stringField(m, "opening"),
			FirstSpeaker: stringField(m, "first_speaker"),
			TurnSeconds:  floatField(m, "turn_seconds"),
		}, nil
	case MethodTurnNotification:
		return TurnNotification{
			Turn:              intField(m, "turn"),
			Speaker:           stringField(m, "speaker"),
			Phase:             stringField(m, "phase"),
			OpponentStatement: stringField(m, "opponent_statement"),
			Research:          stringField(m, "research"),
			RemainingSeconds:  floatField(m, "remaining_seconds"),
		}, nil
	case MethodResearchRequest:
		return ResearchRequest{
			Query:     stringField(m, "query"),
			Requester: stringField(m, "requester"),
		}, nil
	case MethodResearchResponse:
		return ResearchResponse{
			Status:  stringField(m, "status"),
			Answer:  stringField(m, "answer"),
			Query:   stringField(m, "query"),
			Sources: stringSliceField(m, "sources"),
		}, nil
	case MethodDebateFinished:
		return DebateFinished{
			Reason:  stringField(m, "reason"),
			Winner:  stringField(m, "winner"),
			Tie:     boolField(m, "tie"),
			Summary: stringField(m, "summary"),
		}, nil
	case MethodAnalyzeDebate:
		return AnalyzeDebate{}, nil
	case MethodPing:
		return Ping{}, nil
	case MethodMessageSend:
		return MessageSend{
			Text: stringField(m, "text"),
		}, nil
	default:
		return nil, errors.New(errors.CodeMethodNotFound, "unknown method", nil).
			WithContext("method", env.Method)
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func intField(m map[string]interface{}, key string) int {
	return int(floatField(m, key))
}

func boolField(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func stringSliceField(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
