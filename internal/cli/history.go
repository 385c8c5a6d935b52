package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled events in dispatch order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), rootOpts, cmd, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "newest events to show (0 = all)")
	return cmd
}

func runHistory(ctx context.Context, opts *RootOptions, cmd *cobra.Command, limit int) error {
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

	if app.Journal == nil {
		return NewExitError(ExitCommandError, "journal unavailable")
	}

	records, err := app.Journal.Recent(ctx, limit)
	if err != nil {
		return WrapExitError(ExitFailure, "read journal", err)
	}

	if opts.Format == "json" {
		return formatter.JSON(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded events")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(formatter.Writer, "%6d  %s  %-20s %s\n",
			rec.Seq, rec.RecordedAt, rec.Kind, rec.Payload)
	}
	return nil
}
