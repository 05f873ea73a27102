package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricLines          = "uilogstat.lines"
	metricDroppedLines   = "uilogstat.lines.dropped"
	metricRecords        = "uilogstat.records"
	metricDocuments      = "uilogstat.documents"
	metricUndoUnits      = "uilogstat.undo.units"
	metricPhaseDuration  = "uilogstat.phase.duration.seconds"
	metricSessionInstances = "uilogstat.session.instances"

	attrKind        = "kind"
	attrAttribution = "attribution"
	attrPhase       = "phase"
	attrState       = "state"
)

// durationBucketBoundaries covers 1ms to 10min batch phases.
var durationBucketBoundaries = []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// RunMetrics holds the OTel instruments for one analysis run.
type RunMetrics struct {
	lines         metric.Int64Counter
	droppedLines  metric.Int64Counter
	records       metric.Int64Counter
	documents     metric.Int64Counter
	undoUnits     metric.Int64Counter
	instances     metric.Int64Counter
	phaseDuration metric.Float64Histogram
}

// RunStats holds the counters of a finished run, decoupled from the replay
// types.
type RunStats struct {
	RecordsByKind    map[string]int
	Lines            int
	DroppedLines     int
	Instances        int
	Documents        int
	MalformedClosed  int
	Unclosed         int
	UndoUnits        int
	UnknownUndoUnits int
}

// NewRunMetrics creates run metric instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	lines, err := mt.Int64Counter(metricLines,
		metric.WithDescription("Log lines read"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLines, err)
	}

	dropped, err := mt.Int64Counter(metricDroppedLines,
		metric.WithDescription("Log lines without a session key dropped by the reorderer"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDroppedLines, err)
	}

	records, err := mt.Int64Counter(metricRecords,
		metric.WithDescription("Parsed records by kind"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecords, err)
	}

	documents, err := mt.Int64Counter(metricDocuments,
		metric.WithDescription("Documents by close state"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDocuments, err)
	}

	undo, err := mt.Int64Counter(metricUndoUnits,
		metric.WithDescription("Undo units by attribution"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricUndoUnits, err)
	}

	instances, err := mt.Int64Counter(metricSessionInstances,
		metric.WithDescription("Session instances found by the reorderer"),
		metric.WithUnit("{instance}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSessionInstances, err)
	}

	phase, err := mt.Float64Histogram(metricPhaseDuration,
		metric.WithDescription("Run phase duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPhaseDuration, err)
	}

	return &RunMetrics{
		lines:         lines,
		droppedLines:  dropped,
		records:       records,
		documents:     documents,
		undoUnits:     undo,
		instances:     instances,
		phaseDuration: phase,
	}, nil
}

// RecordPhase records how long one phase took.
// Safe to call on a nil receiver (no-op).
func (rm *RunMetrics) RecordPhase(ctx context.Context, phase string, d time.Duration) {
	if rm == nil {
		return
	}

	rm.phaseDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrPhase, phase)))
}

// RecordRun records the counters of a completed run.
// Safe to call on a nil receiver (no-op).
func (rm *RunMetrics) RecordRun(ctx context.Context, stats RunStats) {
	if rm == nil {
		return
	}

	rm.lines.Add(ctx, int64(stats.Lines))
	rm.droppedLines.Add(ctx, int64(stats.DroppedLines))
	rm.instances.Add(ctx, int64(stats.Instances))

	for kind, n := range stats.RecordsByKind {
		rm.records.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrKind, kind)))
	}

	rm.documents.Add(ctx, int64(stats.Documents), metric.WithAttributes(attribute.String(attrState, "closed")))
	rm.documents.Add(ctx, int64(stats.MalformedClosed), metric.WithAttributes(attribute.String(attrState, "malformed")))
	rm.documents.Add(ctx, int64(stats.Unclosed), metric.WithAttributes(attribute.String(attrState, "unclosed")))

	known := stats.UndoUnits - stats.UnknownUndoUnits
	rm.undoUnits.Add(ctx, int64(known), metric.WithAttributes(attribute.String(attrAttribution, "command")))
	rm.undoUnits.Add(ctx, int64(stats.UnknownUndoUnits), metric.WithAttributes(attribute.String(attrAttribution, "unknown")))
}
