// Package pipeline wires the reorder, replay and aggregate stages into one
// batch run over a materialized log.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/uilogstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/uilogstat/pkg/config"
	"github.com/Sumatoshi-tech/uilogstat/pkg/logio"
	"github.com/Sumatoshi-tech/uilogstat/pkg/logline"
	"github.com/Sumatoshi-tech/uilogstat/pkg/observability"
	"github.com/Sumatoshi-tech/uilogstat/pkg/reorder"
	"github.com/Sumatoshi-tech/uilogstat/pkg/replay"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

const tracerName = "uilogstat"

// Phase names, used for spans and the phase duration metric.
const (
	PhaseRead      = "read"
	PhaseReorder   = "reorder"
	PhaseReplay    = "replay"
	PhaseAggregate = "aggregate"
	PhaseReport    = "report"
)

// Engine runs the analysis. The zero value of Tracer, Logger and Metrics is
// usable.
type Engine struct {
	Config  *config.Config
	Tracer  trace.Tracer
	Logger  *slog.Logger
	Metrics *observability.RunMetrics
}

// Result is everything one run produced.
type Result struct {
	Reordered     *reorder.Result
	Aggregator    *aggregate.Aggregator
	Tables        *report.TableSet
	RecordsByKind map[string]int
	Replay        replay.Stats
	Lines         int
}

// Summary returns the human-readable run summary.
func (r *Result) Summary() aggregate.Summary {
	return r.Aggregator.Summary()
}

// New returns an Engine for cfg.
func New(cfg *config.Config) *Engine {
	return &Engine{Config: cfg}
}

func (e *Engine) tracer() trace.Tracer {
	if e.Tracer != nil {
		return e.Tracer
	}

	return otel.Tracer(tracerName)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}

	return slog.New(slog.DiscardHandler)
}

// phase runs fn inside a span and records its duration.
func (e *Engine) phase(ctx context.Context, name string, fn func(ctx context.Context, span trace.Span) error) error {
	ctx, span := e.tracer().Start(ctx, "uilogstat."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx, span)
	elapsed := time.Since(start)

	e.Metrics.RecordPhase(ctx, name, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	e.logger().InfoContext(ctx, "phase done", slog.String("phase", name), slog.Duration("elapsed", elapsed))

	return nil
}

// ReadFile loads the log at path.
func (e *Engine) ReadFile(ctx context.Context, path string) ([]string, error) {
	maxLine, err := e.Config.Replay.MaxLineBytes()
	if err != nil {
		return nil, err
	}

	var lines []string

	err = e.phase(ctx, PhaseRead, func(_ context.Context, span trace.Span) error {
		var readErr error

		lines, readErr = logio.ReadFile(path, maxLine)
		span.SetAttributes(attribute.String("log.path", path), attribute.Int("log.lines", len(lines)))

		return readErr
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return lines, nil
}

// Reorder demultiplexes lines into contiguous session-instance runs.
func (e *Engine) Reorder(ctx context.Context, lines []string) (*reorder.Result, error) {
	var res *reorder.Result

	err := e.phase(ctx, PhaseReorder, func(ctx context.Context, span trace.Span) error {
		var reorderErr error

		res, reorderErr = reorder.Lines(lines, reorder.Options{SplitReusedKits: e.Config.Replay.SplitReusedKits})
		if reorderErr != nil {
			return reorderErr
		}

		span.SetAttributes(
			attribute.Int("reorder.instances", res.Instances),
			attribute.Int("reorder.dropped", res.Dropped),
		)

		if res.Dropped > 0 {
			e.logger().DebugContext(ctx, "lines without session key dropped", slog.Int("count", res.Dropped))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Run reads the log at path and analyzes it.
func (e *Engine) Run(ctx context.Context, path string) (*Result, error) {
	lines, err := e.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return e.Analyze(ctx, path, lines)
}

// Analyze reorders, replays and aggregates lines. source names the input in
// the produced table set.
func (e *Engine) Analyze(ctx context.Context, source string, lines []string) (*Result, error) {
	reordered, err := e.Reorder(ctx, lines)
	if err != nil {
		return nil, err
	}

	cfg := e.Config
	normalizer := logline.NewNormalizer(cfg.Replay.Normalize.Families, cfg.Replay.Normalize.StripArguments)
	agg := aggregate.New(aggregate.Options{
		ExtensionClasses:  cfg.Aggregate.ExtensionClasses,
		SubmatrixSize:     cfg.Aggregate.SubmatrixSize,
		TypingBucketWidth: cfg.Aggregate.TypingBucketWidth,
		TypingBucketCount: cfg.Aggregate.TypingBucketCount,
	})

	res := &Result{
		Lines:         len(lines),
		Reordered:     reordered,
		Aggregator:    agg,
		RecordsByKind: make(map[string]int),
	}

	var records []logline.Record

	err = e.phase(ctx, PhaseReplay, func(ctx context.Context, span trace.Span) error {
		r := replay.New(agg, replay.Options{
			Normalizer:     normalizer,
			Logger:         e.logger(),
			TypingCommand:  cfg.Replay.TypingCommand,
			UnknownCommand: cfg.Replay.UnknownCommand,
			EditCommands:   cfg.Replay.EditCommands,
		})

		records = make([]logline.Record, 0, len(reordered.Lines))

		for i, line := range reordered.Lines {
			rec, parseErr := logline.Parse(line, i+1)
			if parseErr != nil {
				return fmt.Errorf("replay: %w", parseErr)
			}

			res.RecordsByKind[rec.Kind.String()]++
			records = append(records, rec)
			r.Feed(ctx, rec)
		}

		res.Replay = r.Close(ctx)

		span.SetAttributes(
			attribute.Int("replay.records", res.Replay.Records),
			attribute.Int("replay.documents", res.Replay.Documents),
			attribute.Int("replay.unclosed", res.Replay.Unclosed),
		)

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.phase(ctx, PhaseAggregate, func(_ context.Context, span trace.Span) error {
		agg.SetIssued(replay.IssuedCounts(records, normalizer))
		res.Tables = agg.TableSet(source)

		seen, used := agg.FileOpCounts()
		span.SetAttributes(
			attribute.Int("aggregate.tables", len(res.Tables.Tables)),
			attribute.Int("aggregate.file_ops", seen),
			attribute.Int("aggregate.file_ops_timed", used),
		)

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.Metrics.RecordRun(ctx, res.runStats())

	return res, nil
}

// Report hands the table set to sink.
func (e *Engine) Report(ctx context.Context, sink report.Sink, set *report.TableSet) error {
	return e.phase(ctx, PhaseReport, func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("report.run_id", set.RunID))

		err := sink.Write(ctx, set)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		return nil
	})
}

func (r *Result) runStats() observability.RunStats {
	return observability.RunStats{
		RecordsByKind:    r.RecordsByKind,
		Lines:            r.Lines,
		DroppedLines:     r.Reordered.Dropped,
		Instances:        r.Reordered.Instances,
		Documents:        r.Replay.Documents,
		MalformedClosed:  r.Replay.MalformedClosed,
		Unclosed:         r.Replay.Unclosed,
		UndoUnits:        r.Replay.UndoUnits,
		UnknownUndoUnits: r.Replay.UnknownUndoUnits,
	}
}
