package interval

import (
	"fmt"

	"github.com/rnwolfe/streak/internal/localday"
)

// List is an ordered sequence of intervals, sorted by Begin, in which no two
// entries overlap or touch. The zero value is an empty list ready to use.
type List struct {
	items []Interval
}

// FromIntervals builds a List from already-ordered intervals and checks the
// list invariants.
func FromIntervals(items []Interval) (List, error) {
	l := List{items: append([]Interval(nil), items...)}
	if err := l.Validate(); err != nil {
		return List{}, err
	}
	return l, nil
}

// Len returns the number of intervals.
func (l *List) Len() int { return len(l.items) }

// At returns the i-th interval.
func (l *List) At(i int) Interval { return l.items[i] }

// Last returns the most recent interval.
func (l *List) Last() (Interval, bool) {
	if len(l.items) == 0 {
		return Interval{}, false
	}
	return l.items[len(l.items)-1], true
}

// Intervals returns a copy of the stored intervals, oldest first.
func (l *List) Intervals() []Interval {
	return append([]Interval(nil), l.items...)
}

// Insert records an event at t and returns the index of the interval that
// now covers it.
//
// Events almost always land at or near the tail, so the insertion point is
// found by scanning backward from the end. After insertion the new point is
// merged with at most one neighbour on each side; the list invariant means
// no other entry can become contiguous as a side effect.
func (l *List) Insert(t localday.Time) int {
	x := Point(t)

	i := len(l.items)
	for i > 0 && x.Begin.Before(l.items[i-1].Begin) {
		i--
	}

	l.items = append(l.items, Interval{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = x

	i = l.mergeWithPrevious(i)
	if i+1 < len(l.items) {
		l.mergeWithPrevious(i + 1)
	}
	return i
}

// mergeWithPrevious absorbs items[i] into items[i-1] when they touch and
// returns the index of the surviving interval.
func (l *List) mergeWithPrevious(i int) int {
	if i <= 0 {
		return i
	}
	prev, cur := l.items[i-1], l.items[i]
	if !localday.AreContiguous(prev.End, cur.Begin) {
		return i
	}
	l.items[i-1].End = later(prev.End, cur.End)
	l.items = append(l.items[:i], l.items[i+1:]...)
	return i - 1
}

// DropOldest removes the n oldest intervals and returns them.
func (l *List) DropOldest(n int) []Interval {
	if n <= 0 {
		return nil
	}
	if n > len(l.items) {
		n = len(l.items)
	}
	dropped := append([]Interval(nil), l.items[:n]...)
	l.items = append(l.items[:0], l.items[n:]...)
	return dropped
}

// Validate checks that every interval is well formed, the list is sorted by
// Begin, and no two neighbours touch.
func (l *List) Validate() error {
	for i, iv := range l.items {
		if iv.End.Before(iv.Begin) {
			return fmt.Errorf("interval %d ends before it begins: %s", i, iv)
		}
		if i == 0 {
			continue
		}
		prev := l.items[i-1]
		if iv.Begin.Before(prev.Begin) {
			return fmt.Errorf("interval %d is out of order: %s before %s", i, iv, prev)
		}
		if localday.AreContiguous(prev.End, iv.Begin) {
			return fmt.Errorf("intervals %d and %d should have been merged: %s %s", i-1, i, prev, iv)
		}
	}
	return nil
}
