package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/streak"
	"github.com/rnwolfe/streak/internal/tracker"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/cobra"
)

var (
	recordLocal  string
	recordOffset offsetValue
	recordUTC    string
)

// wallLayouts are the accepted forms of --local, most specific first.
var wallLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record activity now",
	Long: `Record one activity event for a user.

The event arrives at the current UTC time (or --utc). Its local time is
read from this machine's clock, from --offset, or given outright with
--local. Events older than the newest recorded one are ignored, as are
local times more than 12 hours behind or 14 hours ahead of UTC.`,
	Example: `  streak record
  streak record --offset +09:00
  streak record --local 2014-11-25T07:30 --utc 2014-11-24T22:30:00Z`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&recordLocal, "local", "", "Client wall clock, e.g. 2014-11-25T07:30")
	recordCmd.Flags().Var(&recordOffset, "offset", "Client UTC offset or zone name, e.g. +09:00 or Asia/Tokyo")
	recordCmd.Flags().StringVar(&recordUTC, "utc", "", "Arrival time as RFC 3339 (default now)")
	recordCmd.MarkFlagsMutuallyExclusive("local", "offset")
}

func runRecord(_ *cobra.Command, _ []string) error {
	utc := time.Now().UTC()
	if recordUTC != "" {
		t, err := time.Parse(time.RFC3339, recordUTC)
		if err != nil {
			return fmt.Errorf("invalid --utc %q: expected RFC 3339, e.g. 2014-11-24T22:30:00Z", recordUTC)
		}
		utc = t.UTC()
	}

	clientLocal, err := clientWallClock(utc)
	if err != nil {
		return err
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

	res, err := a.tracker.Record(ctx, u.ID, clientLocal, utc)
	if err != nil {
		if tracker.IsTimeTravel(err) {
			return fmt.Errorf("stored history for %s is inconsistent: %w", displayName(u), err)
		}
		return err
	}

	offset := localday.Naive(clientLocal).Sub(utc)
	switch res.Verdict {
	case streak.Accepted:
		ui.Ok(fmt.Sprintf("Recorded %s for %s", localday.At(utc, offset), displayName(u)))
		ui.Kv(ui.IconFire+" Streak", ui.StreakBadge(res.Streak))
	case streak.Stale:
		ui.Warn("Ignored: a newer event is already recorded.")
	case streak.BadOffset:
		ui.Warn(fmt.Sprintf("Ignored: offset %s is outside -12:00..+14:00.", localday.FormatOffset(offset)))
	}
	return nil
}

// clientWallClock works out the client's local wall clock for an event
// arriving at utc.
func clientWallClock(utc time.Time) (time.Time, error) {
	switch {
	case recordLocal != "":
		return parseWall(recordLocal)
	case recordOffset.set:
		return utc.Add(recordOffset.at(utc)), nil
	default:
		return utc.In(time.Local), nil
	}
}

func parseWall(s string) (time.Time, error) {
	for _, layout := range wallLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --local %q: expected e.g. 2014-11-25T07:30", s)
}
