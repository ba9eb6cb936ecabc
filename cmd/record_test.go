package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// resetCmdFlags clears every package-level flag variable for the test and
// again afterwards.
func resetCmdFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		userFlag = ""
		recordLocal, recordOffset, recordUTC = "", offsetValue{}, ""
		showOffset, showJSON = offsetValue{}, false
		historyLimit, historyRaw = 10, false
		simulateAlgo, simulateTrace, simulateRaw = referenceAlgo, false, false
		userAddDefault = false
	}
	reset()
	t.Cleanup(reset)
}

func record(t *testing.T) string {
	t.Helper()
	return captureStdout(t, func() {
		if err := runRecord(nil, nil); err != nil {
			t.Errorf("runRecord: %v", err)
		}
	})
}

func TestRunRecord_ThenShow(t *testing.T) {
	configTestEnv(t)
	addDefaultUser(t, "ada")

	now := time.Now().UTC().Truncate(time.Second)
	recordUTC = now.Format(time.RFC3339)
	if err := recordOffset.Set("+00:00"); err != nil {
		t.Fatal(err)
	}
	out := record(t)
	if !strings.Contains(out, "Recorded") || !strings.Contains(out, "1 day") {
		t.Fatalf("record output:\n%s", out)
	}

	showJSON = true
	out = captureStdout(t, func() {
		if err := runShow(nil, nil); err != nil {
			t.Errorf("runShow: %v", err)
		}
	})
	var data ShowData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if data.User != "ada" || data.Streak != 1 || data.Longest != 1 || !data.Active {
		t.Errorf("show = %+v", data)
	}
	if data.LastOffset != "+00:00" || data.LastUTC != now.Format(time.RFC3339) {
		t.Errorf("last event = %s %s", data.LastUTC, data.LastOffset)
	}
}

func TestRunRecord_Stale(t *testing.T) {
	configTestEnv(t)
	addDefaultUser(t, "ada")

	now := time.Now().UTC()
	recordUTC = now.Format(time.RFC3339)
	record(t)

	recordUTC = now.Add(-time.Hour).Format(time.RFC3339)
	if out := record(t); !strings.Contains(out, "newer event") {
		t.Errorf("stale event output:\n%s", out)
	}
}

func TestRunRecord_BadOffset(t *testing.T) {
	configTestEnv(t)
	addDefaultUser(t, "ada")

	utc := time.Date(2014, time.November, 24, 9, 0, 0, 0, time.UTC)
	recordUTC = utc.Format(time.RFC3339)
	recordLocal = "2014-11-25T00:00"

	if out := record(t); !strings.Contains(out, "+15:00") {
		t.Errorf("bad offset output:\n%s", out)
	}
}

func TestRunRecord_Errors(t *testing.T) {
	configTestEnv(t)
	resetCmdFlags(t)

	recordUTC = "yesterday"
	if err := runRecord(nil, nil); err == nil || !strings.Contains(err.Error(), "--utc") {
		t.Errorf("bad --utc: got %v", err)
	}

	recordUTC = ""
	if err := runRecord(nil, nil); err == nil || !strings.Contains(err.Error(), "no user selected") {
		t.Errorf("no user: got %v", err)
	}
}

func TestClientWallClock(t *testing.T) {
	resetCmdFlags(t)
	utc := time.Date(2014, time.November, 24, 22, 30, 0, 0, time.UTC)

	recordLocal = "2014-11-25 07:30"
	got, err := clientWallClock(utc)
	if err != nil || got.Format("2006-01-02 15:04") != "2014-11-25 07:30" {
		t.Errorf("--local: %v, %v", got, err)
	}

	recordLocal = ""
	if err := recordOffset.Set("Asia/Tokyo"); err != nil {
		t.Fatal(err)
	}
	got, err = clientWallClock(utc)
	if err != nil || got.Format("2006-01-02 15:04") != "2014-11-25 07:30" {
		t.Errorf("--offset: %v, %v", got, err)
	}
}

func TestParseWall(t *testing.T) {
	valid := []string{
		"2014-11-25T07:30:00",
		"2014-11-25 07:30:00",
		"2014-11-25T07:30",
		"2014-11-25 07:30",
		"2014-11-25T07:30:00-10:00",
	}
	for _, s := range valid {
		got, err := parseWall(s)
		if err != nil {
			t.Errorf("parseWall(%q): %v", s, err)
			continue
		}
		if got.Hour() != 7 || got.Minute() != 30 || got.Day() != 25 {
			t.Errorf("parseWall(%q) = %v", s, got)
		}
	}
	if _, err := parseWall("7:30am"); err == nil {
		t.Error("expected error for 7:30am")
	}
}

func TestOffsetValue(t *testing.T) {
	var o offsetValue
	if o.String() != "" || o.Type() != "offset" {
		t.Errorf("zero value: %q %q", o.String(), o.Type())
	}
	if err := o.Set("nowhere"); err == nil {
		t.Error("expected error for an invalid offset")
	}
	if err := o.Set("-0530"); err != nil {
		t.Fatal(err)
	}
	if o.String() != "-05:30" {
		t.Errorf("String() = %q", o.String())
	}

	// Zone names resolve at the moment asked about.
	if err := o.Set("America/New_York"); err != nil {
		t.Fatal(err)
	}
	winter := time.Date(2014, time.January, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2014, time.July, 15, 12, 0, 0, 0, time.UTC)
	if o.at(winter) != -5*time.Hour || o.at(summer) != -4*time.Hour {
		t.Errorf("at(winter) = %v, at(summer) = %v", o.at(winter), o.at(summer))
	}
}

func TestRunShow_Human(t *testing.T) {
	configTestEnv(t)
	addDefaultUser(t, "ada")

	recordUTC = time.Now().UTC().Format(time.RFC3339)
	if err := recordOffset.Set("+00:00"); err != nil {
		t.Fatal(err)
	}
	record(t)

	if err := showOffset.Set("+00:00"); err != nil {
		t.Fatal(err)
	}
	out := captureStdout(t, func() {
		if err := runShow(nil, nil); err != nil {
			t.Errorf("runShow: %v", err)
		}
	})
	for _, want := range []string{"ada", "1 day", "Breaks on", "Last event"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}
