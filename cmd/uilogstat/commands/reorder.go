package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uilogstat/pkg/logio"
	"github.com/Sumatoshi-tech/uilogstat/pkg/observability"
	"github.com/Sumatoshi-tech/uilogstat/pkg/pipeline"
)

// ReorderCommand holds the reorder command's flags.
type ReorderCommand struct {
	global *GlobalOptions
	output string
}

// NewReorderCommand creates the reorder command.
func NewReorderCommand(global *GlobalOptions) *cobra.Command {
	rc := &ReorderCommand{global: global}

	cmd := &cobra.Command{
		Use:   "reorder <logfile>",
		Short: "Demultiplex an interleaved UI log",
		Long: `Regroup an interleaved UI log so that every session instance's lines
are contiguous, keeping each instance's own order. Lines without a kit= field
are dropped.`,
		Args: exactlyOneLog,
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.output, "output", "o", "", "Destination (default <logfile>.reordered)")

	return cmd
}

func (rc *ReorderCommand) run(cmd *cobra.Command, args []string) (err error) {
	logPath := args[0]
	ctx := cmd.Context()

	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := rc.global.loadConfig()
	if err != nil {
		return err
	}

	providers, err := rc.global.initObservability(cmd, cfg, observability.ModeReorder)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, providers.Shutdown(context.Background()))
	}()

	engine := pipeline.New(cfg)
	engine.Tracer = providers.Tracer
	engine.Logger = providers.Logger

	lines, err := engine.ReadFile(ctx, logPath)
	if err != nil {
		return err
	}

	res, err := engine.Reorder(ctx, lines)
	if err != nil {
		return err
	}

	out := rc.output
	if out == "" {
		out = logio.ReorderedPath(logPath)
	}

	err = logio.WriteFile(out, res.Lines)
	if err != nil {
		return fmt.Errorf("write reordered log: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s lines in %s session instances to %s (%s dropped)\n",
		humanize.Comma(int64(len(res.Lines))), humanize.Comma(int64(res.Instances)), out,
		humanize.Comma(int64(res.Dropped)))
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
