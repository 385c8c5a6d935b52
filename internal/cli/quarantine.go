package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewQuarantineCommand creates the quarantine command group.
//
// Quarantine backups hold raw unparseable storage text for forensic
// recovery. The engine only ever writes them (on corruption) and deletes
// them (on quota recovery); these maintenance commands are the one place a
// human can see or drop them.
func NewQuarantineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Inspect or purge quarantined storage backups",
	}
	cmd.AddCommand(newQuarantineListCommand(rootOpts))
	cmd.AddCommand(newQuarantinePurgeCommand(rootOpts))
	return cmd
}

func newQuarantineListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quarantine backup keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuarantineList(cmd.Context(), rootOpts, cmd)
		},
	}
}

func newQuarantinePurgeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete all quarantine backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuarantinePurge(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runQuarantineList(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	app, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	keys, err := app.Adapter.ListQuarantine()
	if err != nil {
		return WrapExitError(ExitFailure, "list quarantine", err)
	}

	if opts.Format == "json" {
		return formatter.JSON(map[string]any{"keys": keys})
	}
	if len(keys) == 0 {
		fmt.Fprintln(formatter.Writer, "no quarantined backups")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(formatter.Writer, k)
	}
	return nil
}

func runQuarantinePurge(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	app, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	pruned, err := app.Adapter.PurgeQuarantine()
	if err != nil {
		return WrapExitError(ExitFailure, "purge quarantine", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d backup(s)\n", pruned)
	return nil
}
