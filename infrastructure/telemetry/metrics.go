// Package telemetry provides observability infrastructure including
// OpenTelemetry metrics support for the framing runtime.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	stepInvocations  metric.Int64Counter
	phaseTransitions metric.Int64Counter
	extractionRuns   metric.Int64Counter
	degradedWrites   metric.Int64Counter
	recordSaves      metric.Int64Counter
	errors           metric.Int64Counter

	// Histograms
	stepDuration     metric.Float64Histogram
	pipelineDuration metric.Float64Histogram
	turnDuration     metric.Float64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeSessions metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/framing-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Attributes are default attributes to attach to all metrics.
	Attributes []attribute.KeyValue
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/framing-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	// Counters
	mp.stepInvocations, err = mp.meter.Int64Counter(
		"framing.step.invocations",
		metric.WithDescription("Number of inference step invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return err
	}

	mp.phaseTransitions, err = mp.meter.Int64Counter(
		"framing.phase.transitions",
		metric.WithDescription("Number of dialogue phase transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return err
	}

	mp.extractionRuns, err = mp.meter.Int64Counter(
		"framing.extraction.runs",
		metric.WithDescription("Number of per-phase extraction runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	mp.degradedWrites, err = mp.meter.Int64Counter(
		"framing.store.degraded_writes",
		metric.WithDescription("Number of failed best-effort session store writes"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return err
	}

	mp.recordSaves, err = mp.meter.Int64Counter(
		"framing.record.saves",
		metric.WithDescription("Number of record store saves"),
		metric.WithUnit("{save}"),
	)
	if err != nil {
		return err
	}

	mp.errors, err = mp.meter.Int64Counter(
		"framing.errors",
		metric.WithDescription("Number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	// Histograms
	mp.stepDuration, err = mp.meter.Float64Histogram(
		"framing.step.duration",
		metric.WithDescription("Duration of inference step invocations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.pipelineDuration, err = mp.meter.Float64Histogram(
		"framing.pipeline.duration",
		metric.WithDescription("Duration of full pipeline runs"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.turnDuration, err = mp.meter.Float64Histogram(
		"framing.turn.duration",
		metric.WithDescription("Duration of dialogue turns"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	// Gauges (UpDownCounters)
	mp.activeSessions, err = mp.meter.Int64UpDownCounter(
		"framing.sessions.active",
		metric.WithDescription("Number of active dialogue sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordStepInvocation records one inference step invocation.
func (mp *MetricsProvider) RecordStepInvocation(ctx context.Context, stepID string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("step.id", stepID),
		attribute.Bool("success", success),
	}

	mp.stepInvocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.stepDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error.type", "step_invocation"),
			attribute.String("step.id", stepID),
		))
	}
}

// RecordPhaseTransition records a dialogue phase transition.
func (mp *MetricsProvider) RecordPhaseTransition(ctx context.Context, fromPhase, toPhase string, sessionID string) {
	attrs := []attribute.KeyValue{
		attribute.String("phase.from", fromPhase),
		attribute.String("phase.to", toPhase),
		attribute.String("session.id", sessionID),
	}

	mp.phaseTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExtractionRun records one per-phase extraction run.
func (mp *MetricsProvider) RecordExtractionRun(ctx context.Context, phase string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("phase", phase),
		attribute.Bool("success", success),
	}

	mp.extractionRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDegradedWrite records a failed best-effort session store write.
func (mp *MetricsProvider) RecordDegradedWrite(ctx context.Context, sessionID string) {
	attrs := []attribute.KeyValue{
		attribute.String("session.id", sessionID),
	}

	mp.degradedWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRecordSave records a record store save.
func (mp *MetricsProvider) RecordRecordSave(ctx context.Context, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}

	mp.recordSaves.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordError records an error.
func (mp *MetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
	attrs := []attribute.KeyValue{
		attribute.String("error.type", errorType),
	}
	for k, v := range details {
		attrs = append(attrs, attribute.String(k, v))
	}

	mp.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPipelineDuration records the duration of a full pipeline run.
func (mp *MetricsProvider) RecordPipelineDuration(ctx context.Context, duration time.Duration, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}

	mp.pipelineDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordTurnDuration records the duration of a dialogue turn.
func (mp *MetricsProvider) RecordTurnDuration(ctx context.Context, duration time.Duration, phase string) {
	attrs := []attribute.KeyValue{
		attribute.String("phase", phase),
	}

	mp.turnDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (mp *MetricsProvider) IncrementActiveSessions(ctx context.Context) {
	mp.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (mp *MetricsProvider) DecrementActiveSessions(ctx context.Context) {
	mp.activeSessions.Add(ctx, -1)
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordStepInvocation is a no-op.
func (n *NoopMetricsProvider) RecordStepInvocation(ctx context.Context, stepID string, success bool, duration time.Duration) {
}

// RecordPhaseTransition is a no-op.
func (n *NoopMetricsProvider) RecordPhaseTransition(ctx context.Context, fromPhase, toPhase string, sessionID string) {
}

// RecordExtractionRun is a no-op.
func (n *NoopMetricsProvider) RecordExtractionRun(ctx context.Context, phase string, success bool) {
}

// RecordDegradedWrite is a no-op.
func (n *NoopMetricsProvider) RecordDegradedWrite(ctx context.Context, sessionID string) {}

// RecordRecordSave is a no-op.
func (n *NoopMetricsProvider) RecordRecordSave(ctx context.Context, success bool) {}

// RecordError is a no-op.
func (n *NoopMetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
}

// RecordPipelineDuration is a no-op.
func (n *NoopMetricsProvider) RecordPipelineDuration(ctx context.Context, duration time.Duration, success bool) {
}

// RecordTurnDuration is a no-op.
func (n *NoopMetricsProvider) RecordTurnDuration(ctx context.Context, duration time.Duration, phase string) {
}

// IncrementActiveSessions is a no-op.
func (n *NoopMetricsProvider) IncrementActiveSessions(ctx context.Context) {}

// DecrementActiveSessions is a no-op.
func (n *NoopMetricsProvider) DecrementActiveSessions(ctx context.Context) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordStepInvocation(ctx context.Context, stepID string, success bool, duration time.Duration)
	RecordPhaseTransition(ctx context.Context, fromPhase, toPhase string, sessionID string)
	RecordExtractionRun(ctx context.Context, phase string, success bool)
	RecordDegradedWrite(ctx context.Context, sessionID string)
	RecordRecordSave(ctx context.Context, success bool)
	RecordError(ctx context.Context, errorType string, details map[string]string)
	RecordPipelineDuration(ctx context.Context, duration time.Duration, success bool)
	RecordTurnDuration(ctx context.Context, duration time.Duration, phase string)
	IncrementActiveSessions(ctx context.Context)
	DecrementActiveSessions(ctx context.Context)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
