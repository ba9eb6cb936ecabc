package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rnwolfe/streak/internal/store"
	"github.com/rnwolfe/streak/internal/streak"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.OpenPath(filepath.Join(t.TempDir(), "streak.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.Conn())
}

var monday = time.Date(2014, 11, 24, 0, 0, 0, 0, time.UTC)

func TestAddAndFindUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u, err := s.AddUser(ctx, "  ada ")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if u.Name != "ada" || u.ID == "" {
		t.Fatalf("unexpected user %+v", u)
	}

	byName, err := s.FindUser(ctx, "ada")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("FindUser by name = %+v, %v", byName, err)
	}
	byID, err := s.FindUser(ctx, u.ID)
	if err != nil || byID.Name != "ada" {
		t.Fatalf("FindUser by id = %+v, %v", byID, err)
	}

	if _, err := s.AddUser(ctx, "ada"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate AddUser error = %v, want ErrUserExists", err)
	}
	if _, err := s.AddUser(ctx, " "); err == nil {
		t.Error("expected error for blank name")
	}
	if _, err := s.FindUser(ctx, "grace"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindUser(grace) error = %v, want ErrUserNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zed", "ada", "mo"} {
		if _, err := s.AddUser(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 || users[0].Name != "ada" || users[2].Name != "zed" {
		t.Fatalf("unexpected order: %+v", users)
	}
}

func TestLoadState_NoneSaved(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u, _ := s.AddUser(ctx, "ada")

	_, ok, err := s.LoadState(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no state for a new user")
	}
}

func TestSaveLoadState_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u, _ := s.AddUser(ctx, "ada")

	plus8 := 8 * time.Hour
	e := streak.New()
	var last time.Time
	for _, d := range []int{0, 1, 4} {
		last = monday.AddDate(0, 0, d).Add(9 * time.Hour)
		if _, err := e.Record(last.Add(plus8), last); err != nil {
			t.Fatal(err)
		}
	}
	want := e.Snapshot()
	ev := Event{ClientLocal: last.Add(plus8), UTC: last, Offset: plus8, Verdict: streak.Accepted}
	if err := s.SaveState(ctx, u.ID, want, ev); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	got, ok, err := s.LoadState(ctx, u.ID)
	if err != nil || !ok {
		t.Fatalf("LoadState = %v, %v", ok, err)
	}
	if !got.LastUTC.Equal(want.LastUTC) || got.LastOffset != plus8 {
		t.Errorf("last = %v %v, want %v %v", got.LastUTC, got.LastOffset, want.LastUTC, plus8)
	}
	if len(got.Intervals) != 2 {
		t.Fatalf("got %d intervals, want 2", len(got.Intervals))
	}
	for i := range got.Intervals {
		g, w := got.Intervals[i], want.Intervals[i]
		if !g.Begin.UTC.Equal(w.Begin.UTC) || !g.End.UTC.Equal(w.End.UTC) || g.End.Offset != w.End.Offset {
			t.Errorf("interval %d = %v, want %v", i, g, w)
		}
	}

	restored, err := streak.Restore(got)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n := restored.StreakLengthAt(last); n != 1 {
		t.Errorf("restored streak = %d, want 1", n)
	}
}

func TestSaveState_ReplacesIntervals(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u, _ := s.AddUser(ctx, "ada")

	e := streak.New()
	for _, d := range []int{0, 3, 6} {
		utc := monday.AddDate(0, 0, d).Add(12 * time.Hour)
		e.Record(utc, utc)
	}
	if err := s.SaveState(ctx, u.ID, e.Snapshot(), Event{Verdict: streak.Accepted}); err != nil {
		t.Fatal(err)
	}

	trimmed, err := streak.Restore(e.Snapshot(), streak.WithMaxIntervals(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveState(ctx, u.ID, trimmed.Snapshot(), Event{Verdict: streak.Accepted}); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.LoadState(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Intervals) != 1 {
		t.Errorf("got %d intervals after trim, want 1", len(got.Intervals))
	}
	if got.RetiredLongest != 1 {
		t.Errorf("retired longest = %d, want 1", got.RetiredLongest)
	}
}

func TestRecentEvents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u, _ := s.AddUser(ctx, "ada")

	verdicts := []streak.Verdict{streak.Accepted, streak.Stale, streak.BadOffset}
	for i, v := range verdicts {
		utc := monday.Add(time.Duration(i) * time.Hour)
		err := s.AppendEvent(ctx, Event{
			UserID:      u.ID,
			ClientLocal: utc.Add(-5 * time.Hour),
			UTC:         utc,
			Offset:      -5 * time.Hour,
			Verdict:     v,
		})
		if err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	events, err := s.RecentEvents(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Verdict != streak.BadOffset || events[1].Verdict != streak.Stale {
		t.Errorf("unexpected order: %v, %v", events[0].Verdict, events[1].Verdict)
	}
	if events[0].Offset != -5*time.Hour {
		t.Errorf("offset = %v, want -5h", events[0].Offset)
	}
	wantLocal := monday.Add(2*time.Hour - 5*time.Hour)
	if !events[0].ClientLocal.Equal(wantLocal) {
		t.Errorf("client local = %v, want %v", events[0].ClientLocal, wantLocal)
	}
}

func TestRecentEvents_CorruptRow(t *testing.T) {
	tests := []struct {
		name              string
		local, utc, label string
		want              string
	}{
		{"client local", "yesterday", "2014-11-24T12:00:00Z", "accepted", "client_local"},
		{"utc", "2014-11-24 07:00:00", "noon", "accepted", "parsing time"},
		{"verdict", "2014-11-24 07:00:00", "2014-11-24T12:00:00Z", "maybe", "unknown verdict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestStore(t)
			ctx := context.Background()
			u, _ := s.AddUser(ctx, "ada")
			_, err := s.db.ExecContext(ctx,
				`INSERT INTO events (user_id, client_local, utc, offset_ns, verdict) VALUES (?, ?, ?, 0, ?)`,
				u.ID, tt.local, tt.utc, tt.label)
			if err != nil {
				t.Fatalf("inserting row: %v", err)
			}

			_, err = s.RecentEvents(ctx, u.ID, 10)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("RecentEvents error = %v, want one mentioning %q", err, tt.want)
			}
		})
	}
}

func TestFindUser_CorruptCreatedAt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u, _ := s.AddUser(ctx, "ada")
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET created_at = 'soon' WHERE id = ?`, u.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.FindUser(ctx, "ada"); err == nil || !strings.Contains(err.Error(), "created_at") {
		t.Errorf("FindUser error = %v", err)
	}
	if _, err := s.ListUsers(ctx); err == nil || !strings.Contains(err.Error(), "created_at") {
		t.Errorf("ListUsers error = %v", err)
	}
}
