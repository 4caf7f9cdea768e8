// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for debate telemetry. These follow OpenTelemetry
// naming conventions where applicable.
const (
	// Envelope attributes
	AttrEnvelopeID     = "a2a.envelope.id"
	AttrEnvelopeMethod = "a2a.method"
	AttrEnvelopeFrom   = "a2a.from_agent"
	AttrEnvelopeTo     = "a2a.to_agent"
	AttrCorrelationID  = "a2a.correlation_id"

	// Turn attributes
	AttrTurnNumber  = "flaflu.turn.number"
	AttrTurnSpeaker = "flaflu.turn.speaker"
	AttrTurnPhase   = "flaflu.turn.phase"

	// Debate session attributes
	AttrDebateState    = "flaflu.debate.state"
	AttrDebateDuration = "flaflu.debate.duration_seconds"
	AttrDebateWinner   = "flaflu.debate.winner"

	// Research attributes
	AttrResearchQuery  = "flaflu.research.query"
	AttrResearchStatus = "flaflu.research.status"
	AttrResearchSource = "flaflu.research.source" // "static", "mcp"

	// Error attributes
	AttrErrorCode        = "flaflu.error.code"
	AttrErrorRecoverable = "flaflu.error.recoverable"

	// LLM attributes (standard gen_ai conventions)
	AttrLLMModel        = "gen_ai.request.model"
	AttrLLMProvider     = "gen_ai.system"
	AttrLLMTokensInput  = "gen_ai.usage.input_tokens"
	AttrLLMTokensOutput = "gen_ai.usage.output_tokens"
)

// EnvelopeAttributes returns common attributes for envelope delivery spans.
func EnvelopeAttributes(id, method, from, to string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrEnvelopeMethod, method),
		attribute.String(AttrEnvelopeFrom, from),
		attribute.String(AttrEnvelopeTo, to),
	}
	if id != "" {
		attrs = append(attrs, attribute.String(AttrEnvelopeID, id))
	}
	return attrs
}

// TurnAttributes returns attributes for turn execution spans.
func TurnAttributes(turn int, speaker, phase string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrTurnNumber, turn),
		attribute.String(AttrTurnSpeaker, speaker),
	}
	if phase != "" {
		attrs = append(attrs, attribute.String(AttrTurnPhase, phase))
	}
	return attrs
}

// ResearchAttributes returns attributes for research round-trip spans. The
// query is truncated so oversized statements never bloat span payloads.
func ResearchAttributes(query, status, source string) []attribute.KeyValue {
	if len(query) > 200 {
		query = query[:200] + "..."
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrResearchQuery, query),
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrResearchStatus, status))
	}
	if source != "" {
		attrs = append(attrs, attribute.String(AttrResearchSource, source))
	}
	return attrs
}

// LLMAttributes returns attributes for generation spans.
func LLMAttributes(model, provider string, inputTokens, outputTokens int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLLMModel, model),
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	if inputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensInput, inputTokens))
	}
	if outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensOutput, outputTokens))
	}
	return attrs
}
