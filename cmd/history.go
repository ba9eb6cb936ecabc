package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/interval"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRaw   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a user's active runs and recent events",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent events to show")
	historyCmd.Flags().BoolVar(&historyRaw, "raw", false, "Print markdown without rendering")
}

func runHistory(_ *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	u, err := a.resolveUser(ctx, userFlag)
	if err != nil {
		return err
	}

	ivs, err := a.tracker.History(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	events, err := a.history.RecentEvents(ctx, u.ID, historyLimit)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}

	return ui.WriteMarkdown(os.Stdout, historyMarkdown(displayName(u), ivs, events), historyRaw)
}

// historyMarkdown renders runs newest first, then events newest first.
func historyMarkdown(user string, ivs []interval.Interval, events []history.Event) string {
	md := fmt.Sprintf("# %s\n\n## Runs\n\n", user)
	if len(ivs) == 0 {
		md += "_No active days yet._\n"
	} else {
		runs := ui.NewTable("From", "To", "Days")
		for i := len(ivs) - 1; i >= 0; i-- {
			iv := ivs[i]
			runs.Row(iv.Begin.Date().String(), iv.End.Date().String(), strconv.Itoa(iv.Length()))
		}
		md += runs.Markdown()
	}

	md += "\n## Recent events\n\n"
	if len(events) == 0 {
		md += "_Nothing recorded yet._\n"
		return md
	}
	tbl := ui.NewTable("Local time", "Received (UTC)", "Verdict")
	for _, ev := range events {
		tbl.Row(
			localday.At(ev.UTC, ev.Offset).String(),
			ev.UTC.Format("2006-01-02 15:04:05"),
			ev.Verdict.String(),
		)
	}
	return md + tbl.Markdown()
}
