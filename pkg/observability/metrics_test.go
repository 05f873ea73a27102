package observability_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/uilogstat/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.RunMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rm, err := observability.NewRunMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return rm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestRunMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	rm, reader := setupTestMeter(t)

	rm.RecordRun(context.Background(), observability.RunStats{
		Lines:            100,
		DroppedLines:     4,
		Instances:        3,
		Documents:        2,
		Unclosed:         1,
		UndoUnits:        7,
		UnknownUndoUnits: 5,
		RecordsByKind:    map[string]int{"command": 60, "other": 10},
	})

	data := collectMetrics(t, reader)

	assert.Equal(t, int64(100), sumOf(t, findMetric(data, "uilogstat.lines")))
	assert.Equal(t, int64(4), sumOf(t, findMetric(data, "uilogstat.lines.dropped")))
	assert.Equal(t, int64(3), sumOf(t, findMetric(data, "uilogstat.session.instances")))
	assert.Equal(t, int64(70), sumOf(t, findMetric(data, "uilogstat.records")))
	assert.Equal(t, int64(3), sumOf(t, findMetric(data, "uilogstat.documents")))
	assert.Equal(t, int64(7), sumOf(t, findMetric(data, "uilogstat.undo.units")))
}

func TestRunMetrics_RecordPhase(t *testing.T) {
	t.Parallel()

	rm, reader := setupTestMeter(t)

	rm.RecordPhase(context.Background(), "replay", 250*time.Millisecond)

	m := findMetric(collectMetrics(t, reader), "uilogstat.phase.duration.seconds")
	require.NotNil(t, m)

	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestRunMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var rm *observability.RunMetrics

	assert.NotPanics(t, func() {
		rm.RecordRun(context.Background(), observability.RunStats{Lines: 1})
		rm.RecordPhase(context.Background(), "read", time.Second)
	})
}

func TestWriteMetricsFile(t *testing.T) {
	t.Parallel()

	mp, registry, err := observability.NewPrometheusMeterProvider(nil)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	rm, err := observability.NewRunMetrics(mp.Meter("test"))
	require.NoError(t, err)

	rm.RecordRun(context.Background(), observability.RunStats{Lines: 42})

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, observability.WriteMetricsFile(registry, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var found bool

	for line := range strings.SplitSeq(string(content), "\n") {
		if strings.HasPrefix(line, "uilogstat_lines") && strings.HasSuffix(line, " 42") {
			found = true
		}
	}

	assert.True(t, found, string(content))
}
