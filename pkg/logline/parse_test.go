package logline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/uilogstat/pkg/logline"
)

func TestParse_SessionMarkers(t *testing.T) {
	t.Parallel()

	start, err := logline.Parse("log-start-time: 2024-03-01T10:00:00 kit=1f", 1)
	require.NoError(t, err)
	assert.Equal(t, logline.KindSessionStart, start.Kind)
	assert.True(t, start.HasKit)
	assert.Equal(t, uint64(0x1f), start.Kit)
	assert.Equal(t, "1f", start.RawKit)
	assert.False(t, start.HasUser)

	end, err := logline.Parse("log-end-time: 2024-03-01T10:05:00 kit=1f", 9)
	require.NoError(t, err)
	assert.Equal(t, logline.KindSessionEnd, end.Kind)
	assert.Equal(t, 9, end.Line)
}

func TestParse_Command(t *testing.T) {
	t.Parallel()

	rec, err := logline.Parse("kit=a2 user=3 rep=5 dur=1.5 cmd:textinput", 4)
	require.NoError(t, err)

	assert.Equal(t, logline.KindCommand, rec.Kind)
	assert.Equal(t, uint64(0xa2), rec.Kit)
	assert.Equal(t, 3, rec.User)
	assert.True(t, rec.HasUser)
	assert.Equal(t, 5, rec.Repeat)
	assert.True(t, rec.HasDuration)
	assert.InDelta(t, 1.5, rec.Duration, 1e-9)
	assert.Equal(t, "textinput", rec.Payload)
	assert.False(t, rec.IsFileOp())
}

func TestParse_TrailingHeaderFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		user    int
		repeat  int
		dur     float64
		payload string
	}{
		{
			name:    "duration after command",
			line:    "kit=a user=1 rep=5 cmd:textinput dur=1.0",
			user:    1,
			repeat:  5,
			dur:     1.0,
			payload: "textinput",
		},
		{
			name:    "all fields after command",
			line:    "kit=a cmd:bold user=2 rep=3 dur=0.5",
			user:    2,
			repeat:  3,
			dur:     0.5,
			payload: "bold",
		},
		{
			name:    "arguments kept",
			line:    "kit=a user=1 rep=1 cmd:.uno:Zoom dur=2 100%",
			user:    1,
			repeat:  1,
			dur:     2,
			payload: ".uno:Zoom 100%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := logline.Parse(tt.line, 1)
			require.NoError(t, err)

			assert.Equal(t, logline.KindCommand, rec.Kind)
			assert.True(t, rec.HasUser)
			assert.Equal(t, tt.user, rec.User)
			assert.Equal(t, tt.repeat, rec.Repeat)
			assert.True(t, rec.HasDuration)
			assert.InDelta(t, tt.dur, rec.Duration, 1e-9)
			assert.Equal(t, tt.payload, rec.Payload)
		})
	}
}

func TestParse_CommandWithArguments(t *testing.T) {
	t.Parallel()

	rec, err := logline.Parse("kit=a2 user=0 rep=1 cmd:.uno:FontHeight {\"Height\": 12}", 1)
	require.NoError(t, err)

	assert.Equal(t, logline.KindCommand, rec.Kind)
	assert.Equal(t, ".uno:FontHeight {\"Height\": 12}", rec.Payload)
}

func TestParse_UndoDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		line  string
		delta int
	}{
		{name: "push", line: "kit=1 user=2 rep=3 undo-count-change:+3", delta: 3},
		{name: "pop", line: "kit=1 user=2 rep=2 undo-count-change:-2", delta: -2},
		{name: "count_from_rep", line: "kit=1 user=2 rep=4 undo-count-change:-", delta: -4},
		{name: "explicit_overrides_rep", line: "kit=1 user=2 rep=1 undo-count-change:+7", delta: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := logline.Parse(tt.line, 1)
			require.NoError(t, err)
			assert.Equal(t, logline.KindUndoCountDelta, rec.Kind)
			assert.Equal(t, tt.delta, rec.UndoDelta)
		})
	}
}

func TestParse_UndoDeltaWithoutSign(t *testing.T) {
	t.Parallel()

	rec, err := logline.Parse("kit=1 user=2 rep=3 undo-count-change:3", 1)
	require.NoError(t, err)
	assert.Equal(t, logline.KindOther, rec.Kind)
}

func TestParse_FileOp(t *testing.T) {
	t.Parallel()

	rec, err := logline.Parse("kit=1 user=0 rep=1 load size=1234 ext=.ODT dur=0.42", 1)
	require.NoError(t, err)

	require.True(t, rec.IsFileOp())
	assert.Equal(t, logline.VerbLoad, rec.File.Verb)
	assert.Equal(t, "odt", rec.File.Ext)
	assert.Equal(t, int64(1234), rec.File.Size)
	assert.True(t, rec.File.HasSize)
	assert.True(t, rec.HasDuration)
	assert.InDelta(t, 0.42, rec.Duration, 1e-9)
	assert.Equal(t, "load", rec.Payload)
}

func TestParse_FileOpWithoutDuration(t *testing.T) {
	t.Parallel()

	rec, err := logline.Parse("kit=1 user=0 rep=1 save size=10 ext=docx", 1)
	require.NoError(t, err)

	require.True(t, rec.IsFileOp())
	assert.False(t, rec.HasDuration)
}

func TestParse_Degraded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		kind logline.Kind
	}{
		{name: "empty", line: "   ", kind: logline.KindOther},
		{name: "no_user", line: "kit=1 rep=1 cmd:bold", kind: logline.KindOther},
		{name: "bad_user", line: "kit=1 user=x rep=1 cmd:bold", kind: logline.KindOther},
		{name: "unknown_tail", line: "kit=1 user=1 rep=1 jsdialog", kind: logline.KindOther},
		{name: "no_kit", line: "user=1 rep=1 cmd:bold", kind: logline.KindCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := logline.Parse(tt.line, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, rec.Kind)
		})
	}
}

func TestParse_BadRepAndDurationDegrade(t *testing.T) {
	t.Parallel()

	rec, err := logline.Parse("kit=1 user=1 rep=abc dur=soon cmd:bold", 1)
	require.NoError(t, err)

	assert.Equal(t, logline.KindCommand, rec.Kind)
	assert.Equal(t, 0, rec.Repeat)
	assert.False(t, rec.HasDuration)
}

func TestParse_InvalidKitIsFatal(t *testing.T) {
	t.Parallel()

	_, err := logline.Parse("kit=zz user=1 rep=1 cmd:bold", 17)
	require.Error(t, err)

	var perr *logline.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 17, perr.Line)
	assert.Equal(t, "kit", perr.Field)
	assert.Equal(t, "zz", perr.Value)
	require.ErrorIs(t, err, logline.ErrInvalidKit)
	assert.Contains(t, err.Error(), "line 17")
}

func TestParse_EmptyKitIsFatal(t *testing.T) {
	t.Parallel()

	_, err := logline.Parse("log-end-time: now kit=", 3)
	require.ErrorIs(t, err, logline.ErrInvalidKit)
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "command", logline.KindCommand.String())
	assert.Equal(t, "undo_count_delta", logline.KindUndoCountDelta.String())
	assert.Equal(t, "unknown", logline.Kind(42).String())
}
