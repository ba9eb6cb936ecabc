package streak

import "time"

// Policy holds the fixed plausibility window for client-claimed offsets.
// The contiguity rule lives in localday.ContiguityThreshold.
type Policy struct {
	// MinOffset is the westernmost offset a client may claim (Baker Island).
	MinOffset time.Duration
	// MaxOffset is the easternmost offset a client may claim (Line Islands).
	MaxOffset time.Duration
}

// DefaultPolicy spans every real-world UTC offset, -12:00 to +14:00.
var DefaultPolicy = Policy{
	MinOffset: -12 * time.Hour,
	MaxOffset: 14 * time.Hour,
}

// ValidOffset reports whether a client-claimed offset is plausible.
// Offsets outside the window are rejected, never clamped.
func (p Policy) ValidOffset(offset time.Duration) bool {
	return p.MinOffset <= offset && offset <= p.MaxOffset
}
