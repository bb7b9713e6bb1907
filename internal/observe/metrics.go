// Package observe records guidance pipeline metrics through the
// OpenTelemetry metrics API. InitProvider bridges them to Prometheus so they
// can be scraped at /metrics; tests build Metrics over a ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/teslashibe/vocalpath"

// Metrics holds the instruments. All methods are safe for concurrent use.
type Metrics struct {
	CycleDuration   metric.Float64Histogram
	Cycles          metric.Int64Counter
	Detections      metric.Int64Counter
	InferenceErrors metric.Int64Counter // attribute: adapter
	Phrases         metric.Int64Counter // attribute: kind
	Transitions     metric.Int64Counter // attributes: from, to
	SideTasks       metric.Int64Counter // attribute: outcome
	FramesDropped   metric.Int64Counter
	ActiveSessions  metric.Int64UpDownCounter
}

// cycleBuckets are in seconds; a cycle is one inference plus scheduling.
var cycleBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.15, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CycleDuration, err = m.Float64Histogram("vocalpath.cycle.duration",
		metric.WithDescription("Duration of one detection and guidance cycle."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(cycleBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Cycles, err = m.Int64Counter("vocalpath.cycles",
		metric.WithDescription("Completed detection cycles."),
	); err != nil {
		return nil, err
	}
	if met.Detections, err = m.Int64Counter("vocalpath.detections",
		metric.WithDescription("Detections kept after gating and NMS."),
	); err != nil {
		return nil, err
	}
	if met.InferenceErrors, err = m.Int64Counter("vocalpath.inference.errors",
		metric.WithDescription("Failed detector or decoder runs by adapter."),
	); err != nil {
		return nil, err
	}
	if met.Phrases, err = m.Int64Counter("vocalpath.phrases",
		metric.WithDescription("Guidance phrases spoken by kind."),
	); err != nil {
		return nil, err
	}
	if met.Transitions, err = m.Int64Counter("vocalpath.transitions",
		metric.WithDescription("Interaction mode changes."),
	); err != nil {
		return nil, err
	}
	if met.SideTasks, err = m.Int64Counter("vocalpath.side_tasks",
		metric.WithDescription("Currency side tasks by outcome."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("vocalpath.frames.dropped",
		metric.WithDescription("Frames overwritten before the detector read them."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("vocalpath.active_sessions",
		metric.WithDescription("Guidance sessions with an acquired camera."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordCycle records one finished cycle.
func (m *Metrics) RecordCycle(ctx context.Context, d time.Duration, detections int) {
	m.CycleDuration.Record(ctx, d.Seconds())
	m.Cycles.Add(ctx, 1)
	m.Detections.Add(ctx, int64(detections))
}

// RecordInferenceError counts a failed inference.
func (m *Metrics) RecordInferenceError(ctx context.Context, adapter string) {
	m.InferenceErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("adapter", adapter)))
}

// RecordPhrase counts a spoken guidance phrase.
func (m *Metrics) RecordPhrase(ctx context.Context, kind string) {
	m.Phrases.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordTransition counts a mode change.
func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	m.Transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordSideTask counts a finished side task.
func (m *Metrics) RecordSideTask(ctx context.Context, outcome string) {
	m.SideTasks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordFramesDropped adds n dropped frames.
func (m *Metrics) RecordFramesDropped(ctx context.Context, n int64) {
	if n > 0 {
		m.FramesDropped.Add(ctx, n)
	}
}

// AddActiveSessions moves the active session gauge by delta.
func (m *Metrics) AddActiveSessions(ctx context.Context, delta int64) {
	m.ActiveSessions.Add(ctx, delta)
}
