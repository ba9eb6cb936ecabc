package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rnwolfe/streak/internal/tui"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/cobra"
)

var watchEvery time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live streak dashboard",
	Long:  `Open a full-screen dashboard that refreshes the user's streak, the last two weeks and recent events.`,
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchEvery, "every", 30*time.Second, "Refresh interval")
}

func runWatch(_ *cobra.Command, _ []string) error {
	if !ui.IsStdoutTTY() {
		return fmt.Errorf("watch needs a terminal; use %s instead", ui.Accent.Render("streak show"))
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

	return tui.RunWatch(watchLoader(a, u.ID, displayName(u)), watchEvery)
}

// watchLoader reads a fresh snapshot for the dashboard. Engines are dropped
// first so events recorded by other processes show up.
func watchLoader(a *app, userID, name string) tui.Loader {
	return func() (tui.WatchData, error) {
		ctx := context.Background()
		now := time.Now()
		a.tracker.Forget(userID)

		st, err := a.tracker.Status(ctx, userID, nil, now)
		if err != nil {
			return tui.WatchData{}, err
		}
		ivs, err := a.tracker.History(ctx, userID)
		if err != nil {
			return tui.WatchData{}, err
		}
		events, err := a.history.RecentEvents(ctx, userID, 20)
		if err != nil {
			return tui.WatchData{}, err
		}
		return tui.WatchData{User: name, Now: now, Status: st, Intervals: ivs, Events: events}, nil
	}
}
