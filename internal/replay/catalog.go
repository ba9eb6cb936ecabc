package replay

import (
	"fmt"
	"sync"
)

// Scenario is a named script with the expectations of the reference engine.
type Scenario struct {
	Name   string
	Source string
}

// Catalog is the shared scenario suite. Every script starts with the server
// clock at Mon 00:00.
var Catalog = []Scenario{
	{"initial", `
expect 0
`},
	{"leading_edge", `
record-utc Mon 07:00
expect 1
`},
	{"leading_edge_tz", `
utc Mon 12:00
record Mon 02:00
expect 1
`},
	{"streak_is_hot_next_day_after", `
record-utc Mon 07:00
utc Tue 12:00
expect 1
`},
	{"missed_day_then_expired", `
record-utc Mon 19:00
utc Wed 18:00
expect 0
`},
	{"missed_day_then_resume", `
record-utc Mon 19:00
record-utc Wed 18:00
expect 1
`},
	{"two_sessions_one_day", `
record-utc Mon 06:00
record-utc Mon 23:00
expect 1
`},
	{"increment_next_day_early", `
record-utc Mon 11:00
record-utc Tue 10:00
expect 2
`},
	{"increment_next_day_later", `
record-utc Mon 11:00
record-utc Tue 12:00
expect 2
`},
	{"increment_maximum_interval", `
record-utc Mon 00:01
record-utc Tue 23:59
expect 2
`},
	{"quickest_broken_streak", `
record-utc Mon 23:59
utc Wed 00:01
expect 0
`},
	{"tz_at_utc", `
record-utc Mon 01:00
record-utc Mon 23:00
expect 1
`},
	{"tz_at_plus_8", `
utc Mon 01:00
record Mon 09:00
utc Mon 23:00
record Tue 07:00
expect 2
`},
	{"reject_futuristic_tz", `
utc Mon 23:00
record Mon 23:00 +15h
expect 0
`},
	{"reject_past_tz", `
utc Mon 23:00
record Mon 23:00 -13h
expect 0
`},
	{"nz_to_hawaii", `
# Tuesday 01:00 in Auckland, then an hour later Monday 03:00 in Honolulu.
utc Mon 12:00
record Tue 01:00
expect 1
utc Mon 13:00
expect 1
record Mon 03:00
expect 2
`},
	{"nz_to_hawaii_slow", `
utc Mon 10:59
record-tz +13:00
expect 1
advance 25h2m
record-tz +13:00
expect 1
record-tz -12:00
expect 3
`},
	{"hawaii_to_nz", `
# Monday 02:00 in Honolulu, then an hour later Tuesday 02:00 in Auckland.
utc Mon 12:00
record Mon 02:00
expect 1
utc Mon 13:00
record Tue 02:00
expect 2
`},
}

var (
	catalogOnce    sync.Once
	catalogScripts []*Script
	catalogErr     error
)

// Scripts parses the catalog.
func Scripts() ([]*Script, error) {
	catalogOnce.Do(func() {
		for _, sc := range Catalog {
			s, err := ParseString(sc.Name, sc.Source)
			if err != nil {
				catalogErr = fmt.Errorf("parsing scenario %s: %w", sc.Name, err)
				return
			}
			catalogScripts = append(catalogScripts, s)
		}
	})
	return catalogScripts, catalogErr
}

// Lookup returns the named catalog scenario.
func Lookup(name string) (*Script, error) {
	scripts, err := Scripts()
	if err != nil {
		return nil, err
	}
	for _, s := range scripts {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no scenario named %q", name)
}
