package streak

import (
	"fmt"
	"slices"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
)

// Algorithm is the contract shared by the reference Engine and the
// baselines it is compared against.
type Algorithm interface {
	// RecordActivity processes one event. Ordinary bad input is dropped
	// silently; an error means a broken invariant.
	RecordActivity(clientLocal, utc time.Time) error
	// StreakLength returns the current streak as seen at basis.
	StreakLength(basis localday.Time) int
}

// offsetRemembering is implemented by algorithms that track the most recent
// trusted offset and can answer a query that carries none.
type offsetRemembering interface {
	StreakLengthAt(utc time.Time) int
}

// LengthAt asks a for the streak at utc. Algorithms that remember an offset
// use it; the rest are queried at UTC.
func LengthAt(a Algorithm, utc time.Time) int {
	if r, ok := a.(offsetRemembering); ok {
		return r.StreakLengthAt(utc)
	}
	return a.StreakLength(localday.At(utc, 0))
}

var (
	_ Algorithm = (*Engine)(nil)
	_ Algorithm = (*Cooldown)(nil)
	_ Algorithm = (*Extension)(nil)
	_ Algorithm = (*Checkoff)(nil)
)

// factories builds a fresh instance of each named algorithm. "interval" is
// the reference engine.
var factories = map[string]func() Algorithm{
	"interval":       func() Algorithm { return New() },
	"cooldown-16-48": func() Algorithm { return NewCooldown(16*time.Hour, 48*time.Hour) },
	"cooldown-16-24": func() Algorithm { return NewCooldown(16*time.Hour, 24*time.Hour) },
	"extension":      func() Algorithm { return NewExtension(48 * time.Hour) },
	"checkoff":       func() Algorithm { return NewCheckoff() },
}

// NewAlgorithm returns a fresh instance of the named algorithm.
func NewAlgorithm(name string) (Algorithm, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (known: %v)", name, AlgorithmNames())
	}
	return f(), nil
}

// AlgorithmNames lists the names NewAlgorithm accepts, sorted.
func AlgorithmNames() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
