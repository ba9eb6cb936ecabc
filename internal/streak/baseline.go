package streak

import (
	"fmt"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
)

// Cooldown counts check-ins spaced at least Cooldown apart and resets when
// more than Expiry passes without one. It looks only at the server clock.
type Cooldown struct {
	Cooldown time.Duration
	Expiry   time.Duration

	last  time.Time
	level int
}

// NewCooldown returns a Cooldown counter.
func NewCooldown(cooldown, expiry time.Duration) *Cooldown {
	return &Cooldown{Cooldown: cooldown, Expiry: expiry}
}

func (c *Cooldown) RecordActivity(_, utc time.Time) error {
	if c.hasReset(utc) {
		c.level = 0
	}
	if c.last.IsZero() || utc.Sub(c.last) >= c.Cooldown {
		c.level++
	}
	c.last = utc
	return nil
}

func (c *Cooldown) StreakLength(basis localday.Time) int {
	if c.hasReset(basis.UTC) {
		return 0
	}
	return c.level
}

func (c *Cooldown) hasReset(now time.Time) bool {
	return c.last.IsZero() || now.Sub(c.last) >= c.Expiry
}

// Extension keeps a single run alive while check-ins are no more than Limit
// apart and reports its span in whole days. It looks only at the server clock.
type Extension struct {
	Limit time.Duration

	start time.Time
	last  time.Time
}

// NewExtension returns an Extension tracker.
func NewExtension(limit time.Duration) *Extension {
	return &Extension{Limit: limit}
}

func (x *Extension) RecordActivity(_, utc time.Time) error {
	if x.hasReset(utc) {
		x.start = utc
	}
	x.last = utc
	return nil
}

func (x *Extension) StreakLength(basis localday.Time) int {
	if x.hasReset(basis.UTC) {
		return 0
	}
	return int(x.last.Sub(x.start)/(24*time.Hour)) + 1
}

func (x *Extension) hasReset(now time.Time) bool {
	return x.last.IsZero() || now.Sub(x.last) > x.Limit
}

// Checkoff keeps one run of local days plus the run before it, which lets a
// late-arriving earlier event re-join the two. Anything older is forgotten.
type Checkoff struct {
	start, end localday.Time
	previous   *[2]localday.Time
}

// NewCheckoff returns an empty Checkoff tracker.
func NewCheckoff() *Checkoff {
	return &Checkoff{}
}

func (c *Checkoff) RecordActivity(clientLocal, utc time.Time) error {
	utc = utc.UTC()
	if !c.end.IsZero() && utc.Before(c.end.UTC) {
		return nil
	}
	offset := localday.Naive(clientLocal).Sub(utc)
	if !DefaultPolicy.ValidOffset(offset) {
		return nil
	}
	cur := localday.At(utc, offset)

	switch {
	case !c.start.IsZero() && cur.Before(c.start):
		merged := false
		if c.previous != nil {
			prevBegin, prevEnd := c.previous[0], c.previous[1]
			d := localday.DayDistance(prevEnd, cur)
			if d < 0 {
				return fmt.Errorf("event at %s precedes previous run ending %s: %w", cur, prevEnd.Date(), ErrTimeTravel)
			}
			if localday.AreContiguous(prevEnd, cur) {
				c.start = prevBegin
				if c.end.Before(prevEnd) {
					c.end = prevEnd
				}
				c.previous = nil
				merged = true
			}
		}
		if !merged {
			c.start = cur
		}
	case c.start.IsZero() || c.hasReset(cur):
		if !c.start.IsZero() {
			c.previous = &[2]localday.Time{c.start, c.end}
		}
		c.start = cur
	}

	if c.end.IsZero() || cur.After(c.end) {
		c.end = cur
	}
	return nil
}

func (c *Checkoff) StreakLength(basis localday.Time) int {
	if c.start.IsZero() || c.hasReset(basis) {
		return 0
	}
	return localday.DayDistance(c.start, c.end)
}

// StreakLengthAt queries with the offset of the latest event.
func (c *Checkoff) StreakLengthAt(utc time.Time) int {
	return c.StreakLength(localday.At(utc, c.end.Offset))
}

func (c *Checkoff) hasReset(basis localday.Time) bool {
	return !localday.AreContiguous(c.end, basis)
}
