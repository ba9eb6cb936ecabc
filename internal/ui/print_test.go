package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
)

func TestStreakBadge(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "no streak"},
		{1, "1 day"},
		{7, "7 days"},
	}
	for _, tt := range tests {
		if got := StreakBadge(tt.n); !strings.Contains(got, tt.want) {
			t.Errorf("StreakBadge(%d) = %q, want it to contain %q", tt.n, got, tt.want)
		}
	}
}

func TestDayStrip(t *testing.T) {
	sun := localday.Date{Year: 2014, Month: time.November, Day: 30}
	lit := map[localday.Date]bool{
		{Year: 2014, Month: time.November, Day: 29}: true,
		{Year: 2014, Month: time.November, Day: 30}: true,
	}
	got := DayStrip(sun, 7, func(d localday.Date) bool { return lit[d] })

	// Monday through Sunday, in order.
	initials := strings.Fields(got)
	if strings.Join(initials, "") != "MTWTFSS" {
		t.Errorf("strip cells = %v", initials)
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "day", "days") != "day" || Plural(2, "day", "days") != "days" || Plural(0, "day", "days") != "days" {
		t.Error("Plural picked the wrong form")
	}
}

func TestIconConstants(t *testing.T) {
	icons := []string{
		IconFire, IconCold, IconTrophy, IconCalendar, IconClock, IconUser,
		IconWarn, IconError, IconOk, IconArrow,
	}
	for i, icon := range icons {
		if icon == "" {
			t.Errorf("Icon at index %d is empty", i)
		}
	}
}

func TestWidthFallsBack(t *testing.T) {
	if w := Width(); w <= 0 {
		t.Errorf("Width() = %d", w)
	}
}
