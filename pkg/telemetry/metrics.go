// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides OpenTelemetry bootstrap, trace-aware logging,
// and debate metrics for the Fla-Flu agent system.
package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

// DebateMetrics tracks turn throughput, research round trips, broadcast
// fan-out, and error rates for a running debate.
type DebateMetrics struct {
	// turnCounter counts completed turns by speaker
	turnCounter metric.Int64Counter

	// researchCounter counts research round trips by outcome status
	researchCounter metric.Int64Counter

	// broadcastCounter counts envelopes delivered during broadcasts
	broadcastCounter metric.Int64Counter

	// errorCounter counts errors by code and component
	errorCounter metric.Int64Counter

	// durationHistogram records total debate duration in seconds
	durationHistogram metric.Float64Histogram
}

// NewDebateMetrics creates the debate metric instruments on the global meter.
func NewDebateMetrics() (*DebateMetrics, error) {
	meter := otel.Meter("flaflu/debate")

	turnCounter, err := meter.Int64Counter(
		"flaflu.debate.turns",
		metric.WithDescription("Completed debate turns by speaker"),
	)
	if err != nil {
		return nil, err
	}

	researchCounter, err := meter.Int64Counter(
		"flaflu.research.roundtrips",
		metric.WithDescription("Research round trips by outcome status"),
	)
	if err != nil {
		return nil, err
	}

	broadcastCounter, err := meter.Int64Counter(
		"flaflu.broadcast.deliveries",
		metric.WithDescription("Envelopes delivered during broadcast fan-out"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"flaflu.errors.total",
		metric.WithDescription("Errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"flaflu.debate.duration_seconds",
		metric.WithDescription("Total debate duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &DebateMetrics{
		turnCounter:       turnCounter,
		researchCounter:   researchCounter,
		broadcastCounter:  broadcastCounter,
		errorCounter:      errorCounter,
		durationHistogram: durationHistogram,
	}, nil
}

// RecordTurn counts a completed turn for the given speaker.
func (dm *DebateMetrics) RecordTurn(ctx context.Context, speaker string, turn int) {
	if dm == nil {
		return
	}
	dm.turnCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrTurnSpeaker, speaker),
			attribute.Int(AttrTurnNumber, turn),
		),
	)
}

// RecordResearch counts a research round trip with its outcome status
// ("success", "not_found", or "error").
func (dm *DebateMetrics) RecordResearch(ctx context.Context, status string) {
	if dm == nil {
		return
	}
	dm.researchCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrResearchStatus, status),
		),
	)
}

// RecordBroadcast counts delivered envelopes for a broadcast of the given
// method.
func (dm *DebateMetrics) RecordBroadcast(ctx context.Context, method string, delivered int) {
	if dm == nil || delivered <= 0 {
		return
	}
	dm.broadcastCounter.Add(ctx, int64(delivered),
		metric.WithAttributes(
			attribute.String(AttrEnvelopeMethod, method),
		),
	)
}

// RecordError counts an error against a component. Typed debate errors
// contribute their code and recoverability; anything else counts as UNKNOWN.
func (dm *DebateMetrics) RecordError(ctx context.Context, err error, component string) {
	if dm == nil || err == nil {
		return
	}
	code := "UNKNOWN"
	recoverable := "unknown"
	if de, ok := err.(*errors.DebateError); ok {
		code = string(de.Code)
		recoverable = strconv.FormatBool(de.Recoverable)
	}
	dm.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrErrorCode, code),
			attribute.String("component", component),
			attribute.String("recoverable", recoverable),
		),
	)
}

// RecordDebateDuration records the wall-clock duration of a finished debate.
func (dm *DebateMetrics) RecordDebateDuration(ctx context.Context, d time.Duration) {
	if dm == nil || d <= 0 {
		return
	}
	dm.durationHistogram.Record(ctx, d.Seconds())
}
