package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rnwolfe/streak/internal/config"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/tui"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/cobra"
)

var userAddDefault bool

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage tracked users",
	RunE:  runUserList,
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

var userUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default user",
	Long:  `Set the default user. Without a name, pick one interactively.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserUse,
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userUseCmd)
	userAddCmd.Flags().BoolVar(&userAddDefault, "default", false, "Make this the default user")
}

func runUserAdd(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.history.AddUser(context.Background(), args[0])
	if err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Tracking %s", u.Name))
	ui.Kv("ID", u.ID)

	if userAddDefault {
		a.cfg.User.Name, a.cfg.User.ID = u.Name, u.ID
		if err := config.Save(a.cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		ui.Inf("Now the default user.")
	}
	return nil
}

func runUserList(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.history.ListUsers(context.Background())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println()
		fmt.Println(ui.Muted.Render("  No users yet."))
		ui.Tip("`streak user add <name> --default` to start tracking.")
		fmt.Println()
		return nil
	}

	fmt.Println()
	for _, u := range users {
		marker := "  "
		if u.ID == a.cfg.User.ID || (a.cfg.User.ID == "" && u.Name == a.cfg.User.Name) {
			marker = ui.Accent.Render(ui.IconArrow)
		}
		fmt.Printf("  %s %s %s\n", marker, ui.ValueStyle.Render(u.Name),
			ui.Muted.Render(u.ID+" · since "+u.CreatedAt.Format("2006-01-02")))
	}
	fmt.Println()
	return nil
}

func runUserUse(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	var u history.User
	if len(args) == 1 {
		u, err = a.resolveUser(ctx, args[0])
		if err != nil {
			return err
		}
	} else {
		if !ui.IsStdoutTTY() {
			return fmt.Errorf("name a user, e.g. %s", ui.Accent.Render("streak user use ada"))
		}
		var ok bool
		u, ok, err = pickUser(ctx, a)
		if err != nil || !ok {
			return err
		}
	}

	a.cfg.User.Name, a.cfg.User.ID = u.Name, u.ID
	if err := config.Save(a.cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	ui.Ok(fmt.Sprintf("Default user is now %s", u.Name))
	return nil
}

// pickUser shows every user with their current streak and returns the one
// chosen.
func pickUser(ctx context.Context, a *app) (history.User, bool, error) {
	users, err := a.history.ListUsers(ctx)
	if err != nil {
		return history.User{}, false, err
	}
	if len(users) == 0 {
		return history.User{}, false, fmt.Errorf("no users yet (run %s)", ui.Accent.Render("streak user add <name>"))
	}

	now := time.Now()
	entries := make([]tui.UserEntry, 0, len(users))
	for _, u := range users {
		st, err := a.tracker.Status(ctx, u.ID, nil, now)
		if err != nil {
			return history.User{}, false, err
		}
		entries = append(entries, tui.UserEntry{User: u, Streak: st.Streak})
	}
	return tui.PickUser(entries)
}
