// Package interval keeps an ordered set of closed local-time spans, merging
// spans whose days touch so that each entry is one unbroken run of activity.
package interval

import (
	"fmt"

	"github.com/rnwolfe/streak/internal/localday"
)

// Interval is a closed span [Begin, End] of local time.
type Interval struct {
	Begin localday.Time
	End   localday.Time
}

// Point returns the degenerate interval [t, t].
func Point(t localday.Time) Interval {
	return Interval{Begin: t, End: t}
}

// Length is the number of calendar days the interval touches, inclusive.
func (iv Interval) Length() int {
	return localday.DayDistance(iv.Begin, iv.End)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.Begin.Date(), iv.End.Date())
}

// later returns whichever of a and b reads later on the wall clock.
func later(a, b localday.Time) localday.Time {
	if b.After(a) {
		return b
	}
	return a
}
