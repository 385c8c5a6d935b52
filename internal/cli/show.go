package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/questlog/internal/catalog"
	"github.com/roach88/questlog/internal/engine"
	"github.com/roach88/questlog/internal/progress"
)

// showData is the JSON payload of the show command.
type showData struct {
	CurrentSection       string   `json:"currentSection"`
	TotalScore           int      `json:"totalScore"`
	StreakCount          int      `json:"streakCount"`
	CompletedSections    []string `json:"completedSections"`
	CompletedActivities  []string `json:"completedActivities"`
	CompletionPercentage int      `json:"completionPercentage"`
	StorageError         string   `json:"storageError,omitempty"`
	Unlocked             []string `json:"unlockedAchievements"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current progress snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runShow(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
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

	state := app.Store.Snapshot()

	if opts.Format == "json" {
		var unlocked []string
		for _, a := range state.UnlockedAchievements() {
			unlocked = append(unlocked, a.ID)
		}
		return formatter.JSON(showData{
			CurrentSection:       state.Progress.CurrentSection,
			TotalScore:           state.Progress.TotalScore,
			StreakCount:          state.Progress.StreakCount,
			CompletedSections:    state.Progress.CompletedSections,
			CompletedActivities:  state.Progress.CompletedActivities,
			CompletionPercentage: state.CompletionPercentage(catalog.TotalSections()),
			StorageError:         state.StorageError,
			Unlocked:             unlocked,
		})
	}

	printSummary(formatter, state)
	return nil
}

func printSummary(f *OutputFormatter, state engine.GameState) {
	fmt.Fprintf(f.Writer, "Section:    %s\n", state.Progress.CurrentSection)
	fmt.Fprintf(f.Writer, "Score:      %d\n", state.Progress.TotalScore)
	fmt.Fprintf(f.Writer, "Streak:     %d\n", state.Progress.StreakCount)
	fmt.Fprintf(f.Writer, "Sections:   %d/%d (%d%%)\n",
		len(state.Progress.CompletedSections),
		catalog.TotalSections(),
		state.CompletionPercentage(catalog.TotalSections()),
	)
	fmt.Fprintf(f.Writer, "Activities: %d\n", len(state.Progress.CompletedActivities))
	if state.Progress.LastActivityDate != nil {
		fmt.Fprintf(f.Writer, "Last seen:  %s\n", progress.FormatTime(*state.Progress.LastActivityDate))
	}

	fmt.Fprintln(f.Writer, "Achievements:")
	for _, a := range state.Progress.Achievements {
		mark := " "
		when := ""
		if a.Unlocked {
			mark = "x"
			if a.UnlockedAt != nil {
				when = "  (" + progress.FormatTime(*a.UnlockedAt) + ")"
			}
		}
		fmt.Fprintf(f.Writer, "  [%s] %s %s%s\n", mark, a.Icon, a.Title, when)
	}

	if state.StorageError != "" {
		fmt.Fprintf(f.Writer, "\nWARNING: %s\n", state.StorageError)
	}
}
