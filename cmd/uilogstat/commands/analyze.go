package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uilogstat/pkg/config"
	"github.com/Sumatoshi-tech/uilogstat/pkg/logio"
	"github.com/Sumatoshi-tech/uilogstat/pkg/observability"
	"github.com/Sumatoshi-tech/uilogstat/pkg/pipeline"
	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

const reportFilePerm = 0o644

// AnalyzeCommand holds the analyze command's flags.
type AnalyzeCommand struct {
	global         *GlobalOptions
	format         string
	output         string
	metricsFile    string
	writeReordered bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(global *GlobalOptions) *cobra.Command {
	ac := &AnalyzeCommand{global: global}

	cmd := &cobra.Command{
		Use:   "analyze <logfile>",
		Short: "Replay a UI log and report usage statistics",
		Long: `Replay a UI log and report usage statistics.

The log is demultiplexed per session, replayed per user and document, and
reduced to tables of document mix, undo attribution, command transitions,
typing speed and load/save times. A summary is printed first.`,
		Args: exactlyOneLog,
		RunE: ac.run,
	}

	cmd.Flags().StringVarP(&ac.format, "format", "f", "", "Output format: text, json, yaml, plot, sqlite (default from config)")
	cmd.Flags().StringVarP(&ac.output, "output", "o", "", "Report destination (default stdout; required for sqlite)")
	cmd.Flags().StringVar(&ac.metricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format")
	cmd.Flags().BoolVar(&ac.writeReordered, "write-reordered", false, "Also write <logfile>.reordered")

	return cmd
}

func (ac *AnalyzeCommand) applyFlags(cfg *config.Config) error {
	if ac.format != "" {
		cfg.Report.Format = ac.format
	}

	if ac.output != "" {
		cfg.Report.Output = ac.output
	}

	if ac.metricsFile != "" {
		cfg.Telemetry.MetricsFile = ac.metricsFile
	}

	return cfg.Validate()
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) (err error) {
	logPath := args[0]
	ctx := cmd.Context()

	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := ac.global.loadConfig()
	if err != nil {
		return err
	}

	err = ac.applyFlags(cfg)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	providers, err := ac.global.initObservability(cmd, cfg, observability.ModeAnalyze)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, providers.Shutdown(context.Background()))
	}()

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create run metrics: %w", err)
	}

	engine := pipeline.New(cfg)
	engine.Tracer = providers.Tracer
	engine.Logger = providers.Logger
	engine.Metrics = metrics

	res, err := engine.Run(ctx, logPath)
	if err != nil {
		return err
	}

	if ac.writeReordered {
		err = logio.WriteFile(logio.ReorderedPath(logPath), res.Reordered.Lines)
		if err != nil {
			return fmt.Errorf("write reordered log: %w", err)
		}
	}

	err = ac.report(ctx, cmd, cfg, engine, res)
	if err != nil {
		return err
	}

	if cfg.Telemetry.MetricsFile != "" {
		return observability.WriteMetricsFile(providers.Registry, cfg.Telemetry.MetricsFile)
	}

	return nil
}

func (ac *AnalyzeCommand) report(
	ctx context.Context, cmd *cobra.Command, cfg *config.Config, engine *pipeline.Engine, res *pipeline.Result,
) error {
	stdout := cmd.OutOrStdout()

	// Machine-readable output on stdout keeps the summary off it.
	summaryOut := stdout
	if cfg.Report.Output == "" && cfg.Report.Format != report.FormatText {
		summaryOut = cmd.ErrOrStderr()
	}

	err := res.Summary().Write(summaryOut, ac.global.NoColor)
	if err != nil {
		return err
	}

	if cfg.Report.Format == report.FormatText {
		_, err = fmt.Fprintln(summaryOut)
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	out, closeOut, err := openOutput(stdout, cfg.Report)
	if err != nil {
		return err
	}

	sink, err := report.NewSink(cfg.Report.Format, out, report.SinkOptions{
		Path:    cfg.Report.Output,
		Theme:   cfg.Report.Theme,
		Heat:    cfg.Aggregate.HeatScale(),
		NoColor: ac.global.NoColor || cfg.Report.Output != "",
	})
	if err != nil {
		return errors.Join(err, closeOut())
	}

	err = engine.Report(ctx, sink, res.Tables)

	return errors.Join(err, closeOut())
}

// openOutput returns where a stream sink writes. The sqlite sink opens its
// own file, so it gets a discarding writer.
func openOutput(stdout io.Writer, rc config.ReportConfig) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	if rc.Format == report.FormatSQLite {
		return io.Discard, noop, nil
	}

	if rc.Output == "" {
		return stdout, noop, nil
	}

	f, err := os.OpenFile(rc.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, reportFilePerm)
	if err != nil {
		return nil, nil, fmt.Errorf("create report file: %w", err)
	}

	return f, f.Close, nil
}
