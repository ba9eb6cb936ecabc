package streak

import (
	"fmt"
	"time"

	"github.com/rnwolfe/streak/internal/interval"
)

// State is the persistable form of an Engine.
type State struct {
	Intervals      []interval.Interval
	LastUTC        time.Time
	LastOffset     time.Duration
	RetiredLongest int
}

// Snapshot copies the engine's state.
func (e *Engine) Snapshot() State {
	return State{
		Intervals:      e.history.Intervals(),
		LastUTC:        e.lastUTC,
		LastOffset:     e.lastOffset,
		RetiredLongest: e.retiredLongest,
	}
}

// Restore rebuilds an Engine from a snapshot, rejecting histories that break
// the interval ordering rules.
func Restore(s State, opts ...Option) (*Engine, error) {
	l, err := interval.FromIntervals(s.Intervals)
	if err != nil {
		return nil, fmt.Errorf("restoring history: %w", err)
	}
	if s.RetiredLongest < 0 {
		return nil, fmt.Errorf("restoring history: negative retired longest %d", s.RetiredLongest)
	}
	e := New(opts...)
	e.history = l
	e.lastUTC = s.LastUTC.UTC()
	e.lastOffset = s.LastOffset
	e.retiredLongest = s.RetiredLongest
	e.retain()
	return e, nil
}
