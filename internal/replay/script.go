package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/streak"
)

// Op is a script directive.
type Op string

const (
	OpUTC       Op = "utc"        // utc Mon 12:00: set the server clock
	OpAdvance   Op = "advance"    // advance 25h2m: move the server clock forward
	OpRecord    Op = "record"     // record Tue 01:00 [+15h]: client reports this local time
	OpRecordUTC Op = "record-utc" // record-utc Mon 07:00: set the clock, client reports UTC
	OpRecordTZ  Op = "record-tz"  // record-tz +13:00: client reports the clock at this offset
	OpExpect    Op = "expect"     // expect 2: streak length now
)

// Step is one parsed script line.
type Step struct {
	Line   int
	Op     Op
	Moment time.Time
	Shift  time.Duration
	Want   int
}

func (s Step) String() string {
	switch s.Op {
	case OpUTC, OpRecordUTC:
		return fmt.Sprintf("%s %s", s.Op, FormatMoment(s.Moment))
	case OpRecord:
		if s.Shift != 0 {
			return fmt.Sprintf("%s %s %+v", s.Op, FormatMoment(s.Moment), s.Shift)
		}
		return fmt.Sprintf("%s %s", s.Op, FormatMoment(s.Moment))
	case OpAdvance:
		return fmt.Sprintf("%s %v", s.Op, s.Shift)
	case OpRecordTZ:
		return fmt.Sprintf("%s %s", s.Op, localday.FormatOffset(s.Shift))
	case OpExpect:
		return fmt.Sprintf("%s %d", s.Op, s.Want)
	}
	return string(s.Op)
}

// Script is a named sequence of steps.
type Script struct {
	Name  string
	Steps []Step
}

// Parse reads a script. Blank lines and lines starting with # are skipped.
func Parse(name string, r io.Reader) (*Script, error) {
	s := &Script{Name: name}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		step, err := parseStep(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		step.Line = line
		s.Steps = append(s.Steps, step)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return s, nil
}

// ParseString is Parse over a string.
func ParseString(name, src string) (*Script, error) {
	return Parse(name, strings.NewReader(src))
}

func parseStep(text string) (Step, error) {
	fields := strings.Fields(text)
	op, args := Op(fields[0]), fields[1:]
	step := Step{Op: op}

	switch op {
	case OpUTC, OpRecordUTC:
		if len(args) != 2 {
			return step, fmt.Errorf("%s: want \"<Day> HH:MM\"", op)
		}
		m, err := Moment(args[0] + " " + args[1])
		if err != nil {
			return step, err
		}
		step.Moment = m
	case OpRecord:
		if len(args) != 2 && len(args) != 3 {
			return step, fmt.Errorf("record: want \"<Day> HH:MM [shift]\"")
		}
		m, err := Moment(args[0] + " " + args[1])
		if err != nil {
			return step, err
		}
		step.Moment = m
		if len(args) == 3 {
			d, err := time.ParseDuration(args[2])
			if err != nil {
				return step, fmt.Errorf("record shift: %w", err)
			}
			step.Shift = d
		}
	case OpAdvance:
		if len(args) != 1 {
			return step, fmt.Errorf("advance: want a duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return step, fmt.Errorf("advance: %w", err)
		}
		if d < 0 {
			return step, fmt.Errorf("advance: clock cannot move backwards")
		}
		step.Shift = d
	case OpRecordTZ:
		if len(args) != 1 {
			return step, fmt.Errorf("record-tz: want an offset")
		}
		d, err := localday.ParseOffset(args[0])
		if err != nil {
			return step, fmt.Errorf("record-tz: %w", err)
		}
		step.Shift = d
	case OpExpect:
		if len(args) != 1 {
			return step, fmt.Errorf("expect: want a streak length")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return step, fmt.Errorf("expect: %q is not a streak length", args[0])
		}
		step.Want = n
	default:
		return step, fmt.Errorf("unknown directive %q", fields[0])
	}
	return step, nil
}

// Outcome is the algorithm's state after one step.
type Outcome struct {
	Step   Step
	Now    time.Time
	Streak int
	Err    error
}

// Failure is an expect line the algorithm did not meet.
type Failure struct {
	Line int
	Want int
	Got  int
}

func (f Failure) String() string {
	return fmt.Sprintf("line %d: expected streak %d, got %d", f.Line, f.Want, f.Got)
}

// Report is the result of running a script.
type Report struct {
	Script   string
	Outcomes []Outcome
	Failures []Failure
	Err      error
}

// OK reports whether every expectation held and no step failed.
func (r Report) OK() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Run plays the script against a with a fresh clock at Mon 00:00. It stops
// at the first error from the algorithm.
func (s *Script) Run(a streak.Algorithm) Report {
	clock := NewClock()
	rep := Report{Script: s.Name}
	for _, step := range s.Steps {
		var err error
		switch step.Op {
		case OpUTC:
			clock.Set(step.Moment)
		case OpAdvance:
			clock.Advance(step.Shift)
		case OpRecord:
			err = a.RecordActivity(step.Moment.Add(step.Shift), clock.Now())
		case OpRecordUTC:
			clock.Set(step.Moment)
			err = a.RecordActivity(clock.Now(), clock.Now())
		case OpRecordTZ:
			err = a.RecordActivity(clock.Now().Add(step.Shift), clock.Now())
		}

		got := streak.LengthAt(a, clock.Now())
		rep.Outcomes = append(rep.Outcomes, Outcome{Step: step, Now: clock.Now(), Streak: got, Err: err})
		if err != nil {
			rep.Err = fmt.Errorf("%s:%d: %w", s.Name, step.Line, err)
			return rep
		}
		if step.Op == OpExpect && got != step.Want {
			rep.Failures = append(rep.Failures, Failure{Line: step.Line, Want: step.Want, Got: got})
		}
	}
	return rep
}
