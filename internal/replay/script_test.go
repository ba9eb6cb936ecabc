package replay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/streak"
)

func TestMoment(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Mon 00:00", Monday},
		{"Mon 07:00", Monday.Add(7 * time.Hour)},
		{"tue 23:59", Monday.Add(24*time.Hour + 23*time.Hour + 59*time.Minute)},
		{"Sun 12:00:30", Monday.AddDate(0, 0, 6).Add(12*time.Hour + 30*time.Second)},
	}
	for _, tt := range tests {
		got, err := Moment(tt.in)
		if err != nil {
			t.Errorf("Moment(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Moment(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMoment_Invalid(t *testing.T) {
	for _, in := range []string{"", "Mon", "Xyz 07:00", "Mon 25:00", "Mon seven"} {
		if _, err := Moment(in); err == nil {
			t.Errorf("Moment(%q) should fail", in)
		}
	}
}

func TestFormatMoment(t *testing.T) {
	for _, in := range []string{"Mon 07:00", "Wed 23:59", "Sun 00:00:05"} {
		if got := FormatMoment(MustMoment(in)); got != in {
			t.Errorf("FormatMoment(Moment(%q)) = %q", in, got)
		}
	}
	if got := FormatMoment(Monday.AddDate(0, 0, 8)); got != "2014-12-02 00:00:00" {
		t.Errorf("outside the week: %q", got)
	}
}

func TestClock(t *testing.T) {
	c := NewClock()
	if !c.Now().Equal(Monday) {
		t.Errorf("new clock reads %v, want Monday 00:00", c.Now())
	}
	c.Set(MustMoment("Tue 10:59"))
	c.Advance(25*time.Hour + 2*time.Minute)
	if got := FormatMoment(c.Now()); got != "Wed 12:01" {
		t.Errorf("clock reads %s, want Wed 12:01", got)
	}
}

func TestParse(t *testing.T) {
	s, err := ParseString("t", `
# comment
utc Mon 12:00
record Tue 01:00
record Mon 23:00 +15h
record-utc Wed 07:00
record-tz -10:00
advance 1h30m
expect 2
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(s.Steps) != 7 {
		t.Fatalf("got %d steps, want 7", len(s.Steps))
	}
	if s.Steps[0].Line != 3 {
		t.Errorf("first step line = %d, want 3", s.Steps[0].Line)
	}
	if s.Steps[2].Shift != 15*time.Hour {
		t.Errorf("record shift = %v, want 15h", s.Steps[2].Shift)
	}
	if s.Steps[4].Shift != -10*time.Hour {
		t.Errorf("record-tz offset = %v, want -10h", s.Steps[4].Shift)
	}
	if s.Steps[6].Want != 2 {
		t.Errorf("expect = %d, want 2", s.Steps[6].Want)
	}
	if got := s.Steps[4].String(); got != "record-tz "+localday.FormatOffset(-10*time.Hour) {
		t.Errorf("String = %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		"jump Mon 07:00",
		"utc Mon",
		"record Mon 07:00 soon",
		"advance -1h",
		"record-tz +15:99",
		"expect many",
		"expect -1",
	}
	for _, src := range tests {
		_, err := ParseString("bad", "\n"+src)
		if err == nil {
			t.Errorf("Parse(%q) should fail", src)
			continue
		}
		if !strings.HasPrefix(err.Error(), "bad:2:") {
			t.Errorf("error %q should name the line", err)
		}
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	s, err := ParseString("fail", `
record-utc Mon 07:00
expect 1
utc Wed 12:00
expect 1
`)
	if err != nil {
		t.Fatal(err)
	}
	rep := s.Run(streak.New())
	if rep.OK() {
		t.Fatal("report should not be OK")
	}
	if len(rep.Failures) != 1 || rep.Failures[0].Line != 5 || rep.Failures[0].Got != 0 {
		t.Errorf("failures = %v, want one at line 5 with got 0", rep.Failures)
	}
	if len(rep.Outcomes) != 4 {
		t.Errorf("outcomes = %d, want 4", len(rep.Outcomes))
	}
}

type failing struct{}

func (failing) RecordActivity(_, _ time.Time) error { return errors.New("boom") }
func (failing) StreakLength(localday.Time) int      { return 0 }

func TestRun_StopsOnError(t *testing.T) {
	s, err := ParseString("err", "record-utc Mon 07:00\nexpect 1\n")
	if err != nil {
		t.Fatal(err)
	}
	rep := s.Run(failing{})
	if rep.Err == nil || !strings.Contains(rep.Err.Error(), "err:1: boom") {
		t.Errorf("Err = %v, want err:1: boom", rep.Err)
	}
	if len(rep.Outcomes) != 1 {
		t.Errorf("outcomes = %d, want 1", len(rep.Outcomes))
	}
}

func TestCatalog_Parses(t *testing.T) {
	scripts, err := Scripts()
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != len(Catalog) {
		t.Errorf("parsed %d scripts, want %d", len(scripts), len(Catalog))
	}
	if _, err := Lookup("tz_at_plus_8"); err != nil {
		t.Error(err)
	}
	if _, err := Lookup("missing"); err == nil {
		t.Error("Lookup of unknown scenario should fail")
	}
}
