package logio_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/uilogstat/pkg/logio"
)

const maxLine = 1 << 20

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := map[string]logio.Compression{
		"a.log":     logio.None,
		"a.log.lz4": logio.LZ4,
		"a.log.zst": logio.Zstd,
		"a.ZSTD":    logio.Zstd,
		"a.log.gz":  logio.Gzip,
	}

	for path, want := range tests {
		assert.Equal(t, want, logio.Detect(path), path)
	}
}

func TestReorderedPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ui.log.reordered", logio.ReorderedPath("ui.log"))
	assert.Equal(t, "ui.log.reordered", logio.ReorderedPath("ui.log.gz"))
	assert.Equal(t, filepath.Join("d", "ui.log.reordered"), logio.ReorderedPath(filepath.Join("d", "ui.log.zst")))
}

func TestRoundTripCompressions(t *testing.T) {
	t.Parallel()

	lines := []string{
		"log-start-time: t0 kit=1",
		"kit=1 user=0 rep=1 cmd:textinput",
		"log-end-time: t1 kit=1",
	}

	for _, name := range []string{"plain.log", "ui.log.lz4", "ui.log.zst", "ui.log.gz"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, logio.WriteFile(path, lines))

			got, err := logio.ReadFile(path, maxLine)
			require.NoError(t, err)
			assert.Equal(t, lines, got)
		})
	}
}

func TestReadLines_CRLFAndTrailingLine(t *testing.T) {
	t.Parallel()

	got, err := logio.ReadLines(strings.NewReader("a\r\nb\nc"), maxLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestReadLines_TooLong(t *testing.T) {
	t.Parallel()

	_, err := logio.ReadLines(strings.NewReader("ok\n"+strings.Repeat("x", 64)+"\n"), 16)
	require.ErrorIs(t, err, logio.ErrLineTooLong)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := logio.ReadFile(filepath.Join(t.TempDir(), "absent.log"), maxLine)
	require.Error(t, err)
}
