package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/tracker"
	"github.com/rnwolfe/streak/internal/tui"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/cobra"
)

var (
	showOffset offsetValue
	showJSON   bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's current streak",
	Long: `Show a user's current streak.

By default the streak is judged in the timezone of the user's last event.
Pass --offset to ask how it looks from somewhere else.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().Var(&showOffset, "offset", "Judge the streak at this UTC offset or zone")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

// ShowData is the JSON form of `streak show`.
type ShowData struct {
	User       string `json:"user"`
	Streak     int    `json:"streak"`
	Longest    int    `json:"longest"`
	Active     bool   `json:"active"`
	BreaksOn   string `json:"breaks_on,omitempty"`
	LastUTC    string `json:"last_utc,omitempty"`
	LastOffset string `json:"last_offset,omitempty"`
}

func newShowData(user string, st tracker.Status) ShowData {
	d := ShowData{
		User:    user,
		Streak:  st.Streak,
		Longest: st.Longest,
		Active:  st.Active,
	}
	if st.Active {
		d.BreaksOn = st.BreaksOn.String()
	}
	if !st.LastUTC.IsZero() {
		d.LastUTC = st.LastUTC.Format(time.RFC3339)
		d.LastOffset = localday.FormatOffset(st.LastOffset)
	}
	return d
}

func runShow(_ *cobra.Command, _ []string) error {
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

	now := time.Now()
	var basis *localday.Time
	if showOffset.set {
		b := localday.At(now, showOffset.at(now))
		basis = &b
	}

	st, err := a.tracker.Status(ctx, u.ID, basis, now)
	if err != nil {
		return fmt.Errorf("reading streak: %w", err)
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(newShowData(displayName(u), st))
	}

	ivs, err := a.tracker.History(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	ui.Header(displayName(u))
	fmt.Println()
	ui.Kv("Streak", ui.StreakBadge(st.Streak))
	ui.Kv("Longest", fmt.Sprintf("%d %s", st.Longest, ui.Plural(st.Longest, "day", "days")))
	if st.Active {
		ui.Kv("Breaks on", st.BreaksOn.String())
	}
	if !st.LastUTC.IsZero() {
		ui.Kv("Last event", localday.At(st.LastUTC, st.LastOffset).String())
	}

	offset := st.LastOffset
	if basis != nil {
		offset = basis.Offset
	}
	today := localday.At(now, offset).Date()
	active := tui.ActiveDays(ivs)
	fmt.Println()
	fmt.Println("  " + ui.DayStrip(today, 14, func(d localday.Date) bool { return active[d] }))
	fmt.Println()
	return nil
}
