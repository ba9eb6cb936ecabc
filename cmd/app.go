package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rnwolfe/streak/internal/config"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/logging"
	"github.com/rnwolfe/streak/internal/store"
	"github.com/rnwolfe/streak/internal/tracker"
	"github.com/rnwolfe/streak/internal/ui"
	"github.com/spf13/pflag"
)

var errNoUser = errors.New("no user selected")

// app bundles what most commands need: config, the database, user
// storage and a tracker over it.
type app struct {
	cfg     *config.Config
	db      *store.DB
	history *history.Store
	tracker *tracker.Tracker
	logger  *slog.Logger
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	db, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	hs := history.NewStore(db.Conn())
	tr := tracker.New(hs, tracker.Options{
		MaxEngines:   cfg.Cache.MaxEngines,
		TTL:          cfg.Cache.TTL(),
		MaxIntervals: cfg.Engine.MaxIntervals,
		Logger:       logger,
	})
	return &app{cfg: cfg, db: db, history: hs, tracker: tr, logger: logger}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// resolveUser finds the user named by ref, falling back to the configured
// default. errNoUser means neither was given.
func (a *app) resolveUser(ctx context.Context, ref string) (history.User, error) {
	if ref == "" {
		ref = a.cfg.User.ID
	}
	if ref == "" {
		ref = a.cfg.User.Name
	}
	if ref == "" {
		return history.User{}, fmt.Errorf("%w (pass --user or run %s)",
			errNoUser, ui.Accent.Render("streak user add <name> --default"))
	}

	u, err := a.history.FindUser(ctx, ref)
	if errors.Is(err, history.ErrUserNotFound) {
		return history.User{}, fmt.Errorf("no user %q (run %s to see who exists)",
			ref, ui.Accent.Render("streak user list"))
	}
	return u, err
}

// offsetValue is a pflag.Value for UTC offsets like "+08:00" or zone names
// like "Asia/Tokyo".
type offsetValue struct {
	raw string
	d   time.Duration
	set bool
}

var _ pflag.Value = (*offsetValue)(nil)

func (o *offsetValue) String() string {
	if !o.set {
		return ""
	}
	return localday.FormatOffset(o.d)
}

func (o *offsetValue) Set(s string) error {
	d, err := localday.ParseOffset(s)
	if err != nil {
		return err
	}
	o.raw, o.d, o.set = s, d, true
	return nil
}

func (o *offsetValue) Type() string { return "offset" }

// at resolves the offset at t, so zone names pick up the DST rules of that
// moment rather than of now.
func (o *offsetValue) at(t time.Time) time.Duration {
	if d, err := localday.ParseOffsetAt(o.raw, t); err == nil {
		return d
	}
	return o.d
}
