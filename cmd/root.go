package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rnwolfe/streak/internal/config"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/rnwolfe/streak/internal/version"
	"github.com/spf13/cobra"
)

// userFlag is the persistent --user override shared by every command.
var userFlag string

var rootCmd = &cobra.Command{
	Use:   "streak",
	Short: "Daily activity streaks that survive timezones",
	Long: `streak keeps a run of consecutive active days per user.

Days are counted in each event's own local time, so travelling across
timezones neither breaks nor pads a streak.`,
	RunE: runDashboard,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ui.SetupColor()
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User name or id (defaults to user.name)")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// runDashboard shows the at-a-glance status when you just type `streak`.
func runDashboard(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	u, err := a.resolveUser(ctx, userFlag)
	if errors.Is(err, errNoUser) {
		fmt.Println()
		fmt.Println(ui.Title.Render("  " + ui.IconFire + " streak"))
		fmt.Println()
		fmt.Println("  Looks like this is your first time. Add someone to track:")
		fmt.Println()
		fmt.Printf("  %s\n", ui.Accent.Render("streak user add <name> --default"))
		fmt.Println()
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now()
	st, err := a.tracker.Status(ctx, u.ID, nil, now)
	if err != nil {
		return fmt.Errorf("reading streak: %w", err)
	}

	fmt.Println()
	fmt.Println(ui.Title.Render("  " + ui.IconUser + " " + displayName(u)))
	fmt.Println()
	ui.Kv(ui.IconFire+" Streak", ui.StreakBadge(st.Streak))
	ui.Kv(ui.IconTrophy+" Longest", fmt.Sprintf("%d %s", st.Longest, ui.Plural(st.Longest, "day", "days")))
	if st.Active {
		ui.Kv(ui.IconCalendar+" Breaks", st.BreaksOn.String())
	}
	ui.Kv("  ⚙️  Version", version.Short())

	switch {
	case st.LastUTC.IsZero():
		ui.Tip("`streak record` to log your first active day.")
	case st.Active && localday.At(now, st.LastOffset).Date() == localday.At(st.LastUTC, st.LastOffset).Date():
		ui.Tip("Today is already counted. See you tomorrow.")
	case st.Active:
		ui.Tip("`streak record` today to keep the run going.")
	default:
		ui.Tip("`streak record` to start a new run.")
	}
	fmt.Println()

	if !config.Initialized() {
		ui.Tip(fmt.Sprintf("`streak config list` shows what you can tune (%s).", config.GetPaths().ConfigFile))
	}
	return nil
}

// displayName is a user's name, or its id when the name is empty.
func displayName(u history.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
