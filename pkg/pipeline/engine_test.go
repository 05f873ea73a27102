package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/uilogstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/uilogstat/pkg/config"
	"github.com/Sumatoshi-tech/uilogstat/pkg/logio"
	"github.com/Sumatoshi-tech/uilogstat/pkg/logline"
	"github.com/Sumatoshi-tech/uilogstat/pkg/observability"
	"github.com/Sumatoshi-tech/uilogstat/pkg/pipeline"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// Two interleaved documents plus a line with no session key.
var interleaved = []string{
	"log-start-time: t0 kit=a",
	"log-start-time: t0 kit=b",
	"kit=a user=1 rep=1 load size=1234 ext=odt dur=0.5",
	"kit=b user=1 rep=3 cmd:textinput",
	"kit=a user=1 rep=5 dur=1.0 cmd:textinput",
	"stray line without a session",
	"kit=b user=1 rep=3 undo-count-change:+3",
	"kit=a user=1 rep=1 save size=1300 ext=odt dur=0.25",
	"kit=b user=1 rep=2 undo-count-change:-2",
	"log-end-time: t1 kit=a",
	"log-end-time: t1 kit=b",
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	return cfg
}

func TestEngine_Analyze(t *testing.T) {
	t.Parallel()

	engine := pipeline.New(testConfig(t))

	res, err := engine.Analyze(context.Background(), "mem", interleaved)
	require.NoError(t, err)

	assert.Equal(t, len(interleaved), res.Lines)
	assert.Equal(t, 1, res.Reordered.Dropped)
	assert.Equal(t, 2, res.Reordered.Instances)
	assert.Equal(t, 2, res.Replay.Documents)
	assert.Equal(t, 4, res.RecordsByKind[logline.KindCommand.String()])

	undo := res.Aggregator.Undo()
	require.Len(t, undo, 1)
	assert.Equal(t, aggregate.UndoEntry{Command: "textinput", Undone: 2, Issued: 8}, undo[0])

	summary := res.Summary()
	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, 2, summary.EditedDocuments)

	assert.Equal(t, "mem", res.Tables.Source)
	assert.NotEmpty(t, res.Tables.RunID)

	cats, ok := res.Tables.Table(aggregate.TableCategories)
	require.True(t, ok)
	assert.Equal(t, aggregate.CategoryEdit, cats.RowLabels()[0])
}

func TestEngine_ParseErrorAborts(t *testing.T) {
	t.Parallel()

	engine := pipeline.New(testConfig(t))

	_, err := engine.Analyze(context.Background(), "mem", []string{
		"log-start-time: t0 kit=1",
		"kit=zz user=0 rep=1 cmd:textinput",
	})

	var parseErr *logline.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
}

func TestEngine_RunCompressedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ui.log.zst")
	require.NoError(t, logio.WriteFile(path, interleaved))

	engine := pipeline.New(testConfig(t))

	res, err := engine.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Tables.Source)
	assert.Equal(t, 2, res.Replay.Documents)
}

func TestEngine_MetricsAndLogs(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewRunMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var logs bytes.Buffer

	providers, err := observability.InitWithWriter(observability.DefaultConfig(), &logs)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	engine := pipeline.New(testConfig(t))
	engine.Metrics = metrics
	engine.Logger = providers.Logger
	engine.Tracer = providers.Tracer

	res, err := engine.Analyze(context.Background(), "mem", interleaved)
	require.NoError(t, err)
	require.NoError(t, engine.Report(context.Background(), &report.JSONSink{W: &bytes.Buffer{}}, res.Tables))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}

	assert.Contains(t, names, "uilogstat.lines")
	assert.Contains(t, names, "uilogstat.phase.duration.seconds")

	out := logs.String()
	for _, phase := range []string{pipeline.PhaseReorder, pipeline.PhaseReplay, pipeline.PhaseAggregate, pipeline.PhaseReport} {
		assert.True(t, strings.Contains(out, "phase="+phase), phase)
	}
}

type failingSink struct{}

var errSinkDown = errors.New("sink down")

func (failingSink) Write(context.Context, *report.TableSet) error { return errSinkDown }

func TestEngine_ReportError(t *testing.T) {
	t.Parallel()

	engine := pipeline.New(testConfig(t))

	res, err := engine.Analyze(context.Background(), "mem", interleaved)
	require.NoError(t, err)

	err = engine.Report(context.Background(), failingSink{}, res.Tables)
	require.ErrorIs(t, err, errSinkDown)
}
