package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/interval"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/streak"
)

func TestHistoryMarkdown(t *testing.T) {
	monday := time.Date(2014, time.November, 24, 12, 0, 0, 0, time.UTC)
	day := func(i int) localday.Time { return localday.At(monday.AddDate(0, 0, i), 8*time.Hour) }

	ivs := []interval.Interval{
		{Begin: day(0), End: day(1)},
		{Begin: day(4), End: day(4)},
	}
	events := []history.Event{
		{UTC: monday.AddDate(0, 0, 4), Offset: 8 * time.Hour, Verdict: streak.Accepted},
		{UTC: monday.AddDate(0, 0, 3), Offset: 15 * time.Hour, Verdict: streak.BadOffset},
	}

	md := historyMarkdown("ada", ivs, events)
	for _, want := range []string{
		"# ada",
		"| 2014-11-28 | 2014-11-28 | 1 |",
		"| 2014-11-24 | 2014-11-25 | 2 |",
		"| 2014-11-28 20:00:00 (UTC+08:00) | 2014-11-28 12:00:00 | accepted |",
		"bad-offset",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	// Newest run first.
	if strings.Index(md, "2014-11-28 | 2014-11-28") > strings.Index(md, "2014-11-24 | 2014-11-25") {
		t.Errorf("runs out of order:\n%s", md)
	}
}

func TestHistoryMarkdown_Empty(t *testing.T) {
	md := historyMarkdown("ada", nil, nil)
	if !strings.Contains(md, "No active days yet") || !strings.Contains(md, "Nothing recorded yet") {
		t.Errorf("empty history:\n%s", md)
	}
}

func TestRunHistory(t *testing.T) {
	configTestEnv(t)
	addDefaultUser(t, "ada")

	recordUTC = time.Now().UTC().Format(time.RFC3339)
	record(t)

	historyLimit = 5
	out := captureStdout(t, func() {
		if err := runHistory(nil, nil); err != nil {
			t.Errorf("runHistory: %v", err)
		}
	})
	if !strings.Contains(out, "## Runs") || !strings.Contains(out, "accepted") {
		t.Errorf("history output:\n%s", out)
	}

	historyLimit = -1
	if err := runHistory(nil, nil); err == nil {
		t.Error("expected error for a negative limit")
	}
}
