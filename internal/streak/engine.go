// Package streak computes activity streaks from client-reported local times
// checked against a trusted UTC clock.
//
// Engine is the reference implementation: it keeps every run of active local
// days as an interval and so copes with local time moving backwards (DST,
// date-line travel). Cooldown, Extension and Checkoff are simpler baselines
// that share the Algorithm contract.
package streak

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rnwolfe/streak/internal/interval"
	"github.com/rnwolfe/streak/internal/localday"
)

// ErrTimeTravel reports an accepted event that lands before the end of an
// already closed interval. Valid offsets and UTC-ordered delivery cannot
// produce one, so it means the stored history or the clock is broken.
var ErrTimeTravel = errors.New("time travel")

// Verdict is the fate of a recorded event.
type Verdict int

const (
	Accepted Verdict = iota
	Stale
	BadOffset
	TimeTravel
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Stale:
		return "stale"
	case BadOffset:
		return "bad-offset"
	case TimeTravel:
		return "time-travel"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Engine tracks one user's streak. It is not safe for concurrent use; callers
// serialise access per user.
type Engine struct {
	history        interval.List
	lastUTC        time.Time
	lastOffset     time.Duration
	retiredLongest int

	maxIntervals int
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets where rejected events are reported.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxIntervals caps the stored history. When exceeded, the oldest
// intervals are dropped; their best length still counts toward Longest.
// Zero keeps everything.
func WithMaxIntervals(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIntervals = n
		}
	}
}

// New returns an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Record processes one event. clientLocal is read for its wall clock only;
// utc is the trusted server time of arrival.
//
// Stale events and implausible offsets are dropped with a warning and a
// non-Accepted verdict. The only error is ErrTimeTravel.
func (e *Engine) Record(clientLocal, utc time.Time) (Verdict, error) {
	utc = utc.UTC()
	if utc.Before(e.lastUTC) {
		e.logger.Warn("ignoring stale event",
			"last_utc", e.lastUTC,
			"utc", utc,
		)
		return Stale, nil
	}

	offset := localday.Naive(clientLocal).Sub(utc)
	if !DefaultPolicy.ValidOffset(offset) {
		e.logger.Warn("ignoring event with implausible offset",
			"client_local", localday.Naive(clientLocal),
			"utc", utc,
			"offset", offset,
		)
		return BadOffset, nil
	}

	t := localday.At(utc, offset)
	if err := e.checkTimeTravel(t); err != nil {
		return TimeTravel, err
	}

	e.lastUTC = utc
	e.lastOffset = offset
	e.history.Insert(t)
	e.retain()
	return Accepted, nil
}

// RecordActivity is Record without the verdict.
func (e *Engine) RecordActivity(clientLocal, utc time.Time) error {
	_, err := e.Record(clientLocal, utc)
	return err
}

// checkTimeTravel rejects an event dated before the end of the closed
// interval preceding the current one.
func (e *Engine) checkTimeTravel(t localday.Time) error {
	n := e.history.Len()
	if n < 2 {
		return nil
	}
	prev := e.history.At(n - 2)
	if localday.DayDistance(prev.End, t) < 0 {
		return fmt.Errorf("event at %s precedes closed interval %s: %w", t, prev, ErrTimeTravel)
	}
	return nil
}

func (e *Engine) retain() {
	if e.maxIntervals == 0 || e.history.Len() <= e.maxIntervals {
		return
	}
	for _, iv := range e.history.DropOldest(e.history.Len() - e.maxIntervals) {
		e.retiredLongest = max(e.retiredLongest, iv.Length())
	}
}

// StreakLength returns the current streak as seen at basis, or 0 when there
// is no history or the streak has lapsed.
func (e *Engine) StreakLength(basis localday.Time) int {
	if e.history.Len() == 0 || e.HasReset(basis) {
		return 0
	}
	last, _ := e.history.Last()
	return last.Length()
}

// StreakLengthAt answers a query that carries no offset, such as another
// user looking at this streak, using the most recently trusted offset.
func (e *Engine) StreakLengthAt(utc time.Time) int {
	return e.StreakLength(localday.At(utc, e.lastOffset))
}

// HasReset reports whether the gap between the last activity and basis is
// too long for the streak to survive. It panics on an empty history.
func (e *Engine) HasReset(basis localday.Time) bool {
	last, ok := e.history.Last()
	if !ok {
		panic("streak: HasReset called with empty history")
	}
	return !localday.AreContiguous(last.End, basis)
}

// Longest returns the longest run ever recorded, including retired history.
func (e *Engine) Longest() int {
	best := e.retiredLongest
	for _, iv := range e.history.Intervals() {
		best = max(best, iv.Length())
	}
	return best
}

// Current returns the most recent interval.
func (e *Engine) Current() (interval.Interval, bool) {
	return e.history.Last()
}

// BreaksOn returns the first local date on which, without new activity, the
// current run no longer counts.
func (e *Engine) BreaksOn() (localday.Date, bool) {
	last, ok := e.history.Last()
	if !ok {
		return localday.Date{}, false
	}
	return last.End.Date().AddDays(localday.ContiguityThreshold - 1), true
}

// History returns a copy of the stored intervals, oldest first.
func (e *Engine) History() []interval.Interval {
	return e.history.Intervals()
}

// LastAccepted returns the UTC time and offset of the latest accepted event.
func (e *Engine) LastAccepted() (time.Time, time.Duration) {
	return e.lastUTC, e.lastOffset
}
