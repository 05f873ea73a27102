// Package config provides configuration loading and validation for uilogstat.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

// Sentinel validation errors.
var (
	ErrInvalidSubmatrixSize = errors.New("submatrix size must be positive")
	ErrInvalidBucketWidth   = errors.New("typing bucket width must be positive")
	ErrInvalidBucketCount   = errors.New("typing bucket count must be positive")
	ErrInvalidHeatMode      = errors.New("invalid heatmap mode")
	ErrInvalidFormat        = errors.New("invalid report format")
	ErrInvalidLineSize      = errors.New("invalid max line size")
	ErrInvalidSampleRatio   = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrEmptyCommand         = errors.New("command name must not be empty")
)

const (
	envPrefix      = "UILOGSTAT"
	configName     = ".uilogstat"
	configType     = "yaml"
	homeConfigPath = "$HOME"
)

// Config holds all configuration for uilogstat.
type Config struct {
	Replay    ReplayConfig    `mapstructure:"replay"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ReplayConfig holds replay and parsing configuration.
type ReplayConfig struct {
	TypingCommand   string          `mapstructure:"typing_command"`
	UnknownCommand  string          `mapstructure:"unknown_command"`
	MaxLineSize     string          `mapstructure:"max_line_size"`
	EditCommands    []string        `mapstructure:"edit_commands"`
	Normalize       NormalizeConfig `mapstructure:"normalize"`
	SplitReusedKits bool            `mapstructure:"split_reused_kits"`
}

// NormalizeConfig controls how command names are collapsed.
type NormalizeConfig struct {
	Families       []string `mapstructure:"families"`
	StripArguments bool     `mapstructure:"strip_arguments"`
}

// AggregateConfig holds aggregation configuration.
type AggregateConfig struct {
	ExtensionClasses  map[string]string `mapstructure:"extension_classes"`
	Heatmap           HeatmapConfig     `mapstructure:"heatmap"`
	TypingBucketWidth float64           `mapstructure:"typing_bucket_width"`
	SubmatrixSize     int               `mapstructure:"submatrix_size"`
	TypingBucketCount int               `mapstructure:"typing_bucket_count"`
}

// HeatmapConfig selects the heat-map colour scale.
type HeatmapConfig struct {
	Mode  string    `mapstructure:"mode"`
	Bands []float64 `mapstructure:"bands"`
}

// ReportConfig holds report output configuration.
type ReportConfig struct {
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	Theme  string `mapstructure:"theme"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds tracing and metrics configuration.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	MetricsFile  string  `mapstructure:"metrics_file"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables. An
// empty path searches for .uilogstat.yaml in the working and home directories.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath(homeConfigPath)
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Replay defaults.
	viperCfg.SetDefault("replay.edit_commands", DefaultEditCommands)
	viperCfg.SetDefault("replay.typing_command", DefaultTypingCommand)
	viperCfg.SetDefault("replay.unknown_command", DefaultUnknownCommand)
	viperCfg.SetDefault("replay.split_reused_kits", DefaultSplitReusedKits)
	viperCfg.SetDefault("replay.normalize.families", DefaultFamilies)
	viperCfg.SetDefault("replay.normalize.strip_arguments", DefaultStripArguments)
	viperCfg.SetDefault("replay.max_line_size", DefaultMaxLineSize)

	// Aggregate defaults.
	viperCfg.SetDefault("aggregate.submatrix_size", DefaultSubmatrixSize)
	viperCfg.SetDefault("aggregate.typing_bucket_width", DefaultTypingBucketWidth)
	viperCfg.SetDefault("aggregate.typing_bucket_count", DefaultTypingBucketCount)
	viperCfg.SetDefault("aggregate.extension_classes", map[string]string{})
	viperCfg.SetDefault("aggregate.heatmap.mode", DefaultHeatMode)
	viperCfg.SetDefault("aggregate.heatmap.bands", report.DefaultBands)

	// Report defaults.
	viperCfg.SetDefault("report.format", DefaultFormat)
	viperCfg.SetDefault("report.output", "")
	viperCfg.SetDefault("report.theme", DefaultTheme)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", false)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.metrics_file", "")
}

// Validate checks the configuration for values the run cannot use.
func (c *Config) Validate() error {
	if c.Replay.TypingCommand == "" || c.Replay.UnknownCommand == "" {
		return ErrEmptyCommand
	}

	_, err := c.Replay.MaxLineBytes()
	if err != nil {
		return err
	}

	if c.Aggregate.SubmatrixSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSubmatrixSize, c.Aggregate.SubmatrixSize)
	}

	if c.Aggregate.TypingBucketWidth <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidBucketWidth, c.Aggregate.TypingBucketWidth)
	}

	if c.Aggregate.TypingBucketCount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBucketCount, c.Aggregate.TypingBucketCount)
	}

	switch report.HeatMode(c.Aggregate.Heatmap.Mode) {
	case report.HeatContinuous, report.HeatBands:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHeatMode, c.Aggregate.Heatmap.Mode)
	}

	if !slices.Contains(report.Formats(), c.Report.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Report.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	_, err = c.Logging.SlogLevel()

	return err
}

// MaxLineBytes parses MaxLineSize.
func (r ReplayConfig) MaxLineBytes() (int, error) {
	n, err := humanize.ParseBytes(r.MaxLineSize)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLineSize, r.MaxLineSize)
	}

	return int(n), nil
}

// HeatScale returns the configured heat-map colour scale.
func (a AggregateConfig) HeatScale() report.HeatScale {
	return report.HeatScale{Mode: report.HeatMode(a.Heatmap.Mode), Bands: a.Heatmap.Bands}
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}
