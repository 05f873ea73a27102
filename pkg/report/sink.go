package report

import (
	"errors"
	"fmt"
	"io"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatPlot   = "plot"
	FormatSQLite = "sqlite"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrMissingPath is returned when a file-backed format has no destination.
var ErrMissingPath = errors.New("output path required")

// SinkOptions carry what the formats need besides the writer.
type SinkOptions struct {
	Path    string
	Theme   string
	Heat    HeatScale
	NoColor bool
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML, FormatPlot, FormatSQLite}
}

// NewSink returns the sink for format writing to w.
func NewSink(format string, w io.Writer, opts SinkOptions) (Sink, error) {
	switch format {
	case FormatText, "":
		return &TextSink{W: w, Heat: opts.Heat, NoColor: opts.NoColor}, nil
	case FormatJSON:
		return &JSONSink{W: w}, nil
	case FormatYAML:
		return &YAMLSink{W: w}, nil
	case FormatPlot:
		return &PlotSink{W: w, Theme: opts.Theme, Heat: opts.Heat}, nil
	case FormatSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPath, format)
		}

		return &SQLiteSink{Path: opts.Path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
