// Package tracker serves streaks for many users: it serialises each user's
// events, keeps hot engines in memory and persists every change.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/interval"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/store"
	"github.com/rnwolfe/streak/internal/streak"
)

const stripes = 256

// Repository is the storage the tracker needs. *history.Store satisfies it.
type Repository interface {
	LoadState(ctx context.Context, userID string) (streak.State, bool, error)
	SaveState(ctx context.Context, userID string, st streak.State, ev history.Event) error
	AppendEvent(ctx context.Context, ev history.Event) error
}

// Options tunes a Tracker. Zero values take defaults.
type Options struct {
	MaxEngines   int
	TTL          time.Duration
	MaxIntervals int
	Attempts     uint
	RetryDelay   time.Duration
	Logger       *slog.Logger
}

// Tracker is safe for concurrent use.
type Tracker struct {
	repo   Repository
	cache  *otter.Cache[string, *streak.Engine]
	locks  [stripes]sync.Mutex
	engine []streak.Option
	logger *slog.Logger

	attempts   uint
	retryDelay time.Duration
}

// Result is the outcome of recording one event.
type Result struct {
	Verdict streak.Verdict
	Streak  int
}

// Status describes a user's streak at a moment.
type Status struct {
	Streak     int
	Longest    int
	Active     bool
	BreaksOn   localday.Date
	LastUTC    time.Time
	LastOffset time.Duration
}

// New returns a Tracker over repo.
func New(repo Repository, opts Options) *Tracker {
	if opts.MaxEngines <= 0 {
		opts.MaxEngines = 10_000
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Attempts == 0 {
		opts.Attempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 20 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	cache := otter.Must(&otter.Options[string, *streak.Engine]{
		MaximumSize:      opts.MaxEngines,
		InitialCapacity:  min(opts.MaxEngines, 1024),
		ExpiryCalculator: otter.ExpiryAccessing[string, *streak.Engine](opts.TTL),
	})

	return &Tracker{
		repo:  repo,
		cache: cache,
		engine: []streak.Option{
			streak.WithLogger(opts.Logger),
			streak.WithMaxIntervals(opts.MaxIntervals),
		},
		logger:     opts.Logger,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
	}
}

func (t *Tracker) lock(userID string) func() {
	h := fnv.New32a()
	h.Write([]byte(userID))
	mu := &t.locks[h.Sum32()%stripes]
	mu.Lock()
	return mu.Unlock
}

// engineFor returns the user's engine, loading it on a cache miss. The
// caller holds the user's lock.
func (t *Tracker) engineFor(ctx context.Context, userID string) (*streak.Engine, error) {
	if e, ok := t.cache.GetIfPresent(userID); ok {
		return e, nil
	}
	cacheMisses.Inc()

	st, ok, err := t.repo.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	var e *streak.Engine
	if ok {
		e, err = streak.Restore(st, t.engine...)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", userID, err)
		}
	} else {
		e = streak.New(t.engine...)
	}
	t.cache.Set(userID, e)
	return e, nil
}

// Record feeds one event to the user's engine and persists the result.
// The engine's ErrTimeTravel is returned wrapped, with a TimeTravel verdict.
func (t *Tracker) Record(ctx context.Context, userID string, clientLocal, utc time.Time) (Result, error) {
	unlock := t.lock(userID)
	defer unlock()

	e, err := t.engineFor(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	verdict, recErr := e.Record(clientLocal, utc)
	eventsTotal.WithLabelValues(verdict.String()).Inc()

	ev := history.Event{
		UserID:      userID,
		ClientLocal: localday.Naive(clientLocal),
		UTC:         utc.UTC(),
		Offset:      localday.Naive(clientLocal).Sub(utc.UTC()),
		Verdict:     verdict,
	}
	if verdict == streak.Accepted {
		st := e.Snapshot()
		err = t.persist(ctx, func() error { return t.repo.SaveState(ctx, userID, st, ev) })
		if err != nil {
			// Memory is ahead of storage; reload on next use.
			t.cache.Invalidate(userID)
		}
	} else {
		err = t.persist(ctx, func() error { return t.repo.AppendEvent(ctx, ev) })
	}
	if err != nil {
		return Result{Verdict: verdict}, fmt.Errorf("saving event: %w", err)
	}

	if recErr != nil {
		t.logger.Error("history rejected event", "user", userID, "utc", utc, "error", recErr)
		return Result{Verdict: verdict}, fmt.Errorf("user %s: %w", userID, recErr)
	}
	return Result{Verdict: verdict, Streak: e.StreakLengthAt(utc)}, nil
}

// persist runs fn, retrying while SQLite reports the database busy.
func (t *Tracker) persist(ctx context.Context, fn func() error) error {
	return retry.Do(
		func() error {
			err := fn()
			if err != nil && !store.IsBusy(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(t.attempts),
		retry.Delay(t.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			saveRetries.Inc()
			t.logger.Debug("database busy, retrying", "attempt", n+1, "error", err)
		}),
	)
}

// Status reports the user's streak at basis, or at now in the user's last
// known offset when basis is nil.
func (t *Tracker) Status(ctx context.Context, userID string, basis *localday.Time, now time.Time) (Status, error) {
	unlock := t.lock(userID)
	defer unlock()

	e, err := t.engineFor(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	var s Status
	s.LastUTC, s.LastOffset = e.LastAccepted()
	s.Longest = e.Longest()
	if basis != nil {
		s.Streak = e.StreakLength(*basis)
	} else {
		s.Streak = e.StreakLengthAt(now)
	}
	s.Active = s.Streak > 0
	if d, ok := e.BreaksOn(); ok && s.Active {
		s.BreaksOn = d
	}
	return s, nil
}

// History returns the user's stored intervals, oldest first.
func (t *Tracker) History(ctx context.Context, userID string) ([]interval.Interval, error) {
	unlock := t.lock(userID)
	defer unlock()

	e, err := t.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

// Forget drops a user's cached engine.
func (t *Tracker) Forget(userID string) {
	t.cache.Invalidate(userID)
}

// Cached returns the approximate number of engines held in memory.
func (t *Tracker) Cached() int {
	return t.cache.EstimatedSize()
}

// IsTimeTravel reports whether err came from a corrupt history.
func IsTimeTravel(err error) bool {
	return errors.Is(err, streak.ErrTimeTravel)
}
