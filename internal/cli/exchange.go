package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/questlog/internal/catalog"
	"github.com/roach88/questlog/internal/engine"
	"github.com/roach88/questlog/internal/exchange"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress to a portable JSON document",
		Long: `Export the current progress snapshot as JSON.

The document is self-describing and survives catalog changes: importing it
later reconciles its achievements against the catalog of that build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), rootOpts, cmd, outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runExport(ctx context.Context, opts *RootOptions, cmd *cobra.Command, outPath string) error {
	app, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	state := app.Store.Snapshot()
	doc, err := exchange.Export(state.Progress, time.Now())
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}

	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(doc)
		return err
	}
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write export file", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outPath)
	return nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a previously exported progress document",
		Long: `Import a progress export.

The document is validated before anything is accepted; an invalid document
changes nothing. A valid one replaces the live progress wholesale (after
catalog reconciliation) and is persisted immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), rootOpts, cmd, args[0])
		},
	}
}

func runImport(ctx context.Context, opts *RootOptions, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read import file", err)
	}

	imported, err := exchange.Import(data, catalog.Achievements())
	if err != nil {
		return WrapExitError(ExitFailure, "import rejected", err)
	}

	app, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	state := app.Store.Dispatch(ctx, engine.LoadProgress{Progress: *imported})
	if state.StorageError != "" {
		return NewExitError(ExitFailure, state.StorageError)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported; score %d, %d sections, %d activities\n",
		state.Progress.TotalScore,
		len(state.Progress.CompletedSections),
		len(state.Progress.CompletedActivities),
	)
	return nil
}
