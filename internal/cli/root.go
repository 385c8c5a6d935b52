package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DataDir string
}

// EnvConfig is the process-environment configuration. Flags override it.
type EnvConfig struct {
	DataDir  string `env:"QUESTLOG_DATA_DIR"`
	LogLevel string `env:"QUESTLOG_LOG_LEVEL" envDefault:"warn"`
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the questlog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	var envCfg EnvConfig
	envErr := env.Parse(&envCfg)

	cmd := &cobra.Command{
		Use:   "questlog",
		Short: "questlog - learning progress engine",
		Long: `Local progress engine for the prompt-engineering tutorial.

Tracks completed activities and sections, points, streaks and achievements
in a local store that survives corrupted data, schema changes and full
disks without ever losing progress.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("parse environment: %w", envErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.DataDir == "" {
				opts.DataDir = envCfg.DataDir
			}
			if opts.DataDir == "" {
				dir, err := defaultDataDir()
				if err != nil {
					return err
				}
				opts.DataDir = dir
			}
			configureLogging(envCfg.LogLevel, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default $QUESTLOG_DATA_DIR or the user config dir)")

	// Subcommands
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewCompleteActivityCommand(opts))
	cmd.AddCommand(NewCompleteSectionCommand(opts))
	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewSetSectionCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewQuarantineCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func defaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	return filepath.Join(base, "questlog"), nil
}

// configureLogging sets the process-wide slog default. Verbose forces
// debug regardless of the configured level.
func configureLogging(level string, verbose bool) {
	var lvl slog.Level
	switch {
	case verbose:
		lvl = slog.LevelDebug
	default:
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = slog.LevelWarn
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
