// Package commands implements CLI command handlers for uilogstat.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/uilogstat/pkg/config"
	"github.com/Sumatoshi-tech/uilogstat/pkg/observability"
	"github.com/Sumatoshi-tech/uilogstat/pkg/version"
)

// GlobalOptions are the root command's persistent flags.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	NoColor    bool
}

// exactlyOneLog accepts a single log path and reports wrong arity with the
// command usage.
func exactlyOneLog(cmd *cobra.Command, args []string) error {
	err := cobra.ExactArgs(1)(cmd, args)
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	}

	return nil
}

func (g *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (g *GlobalOptions) initObservability(
	cmd *cobra.Command, cfg *config.Config, mode observability.AppMode,
) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogJSON = cfg.Logging.JSON

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Providers{}, err
	}

	if g.Verbose {
		level = slog.LevelDebug
	}

	obsCfg.LogLevel = level

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}
