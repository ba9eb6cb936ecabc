// Package history persists users, engine state and the event audit log.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rnwolfe/streak/internal/interval"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/streak"
)

// ErrUserNotFound is returned when a user id or name does not resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when adding a user whose name is taken.
var ErrUserExists = errors.New("user already exists")

const (
	timeLayout  = time.RFC3339Nano
	localLayout = "2006-01-02T15:04:05.999999999"
)

// User is a tracked person.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Event is one received activity report and what became of it.
type Event struct {
	ID          int64
	UserID      string
	ClientLocal time.Time // wall clock as claimed, in time.UTC
	UTC         time.Time
	Offset      time.Duration
	Verdict     streak.Verdict
}

// Store is the repository over the streak database.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// AddUser creates a user with a fresh id.
func (s *Store) AddUser(ctx context.Context, name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("user name is required")
	}
	if _, err := s.FindUser(ctx, name); err == nil {
		return User{}, fmt.Errorf("%q: %w", name, ErrUserExists)
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	u := User{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)`,
		u.ID, u.Name, u.CreatedAt.Format(timeLayout))
	if err != nil {
		return User{}, fmt.Errorf("adding user: %w", err)
	}
	return u, nil
}

// FindUser resolves ref as a user id, then as a name.
func (s *Store) FindUser(ctx context.Context, ref string) (User, error) {
	var (
		u       User
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE id = ? OR name = ?
		 ORDER BY id = ? DESC LIMIT 1`, ref, ref, ref).
		Scan(&u.ID, &u.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("%q: %w", ref, ErrUserNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("finding user: %w", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return User{}, fmt.Errorf("user %s created_at: %w", u.ID, err)
	}
	return u, nil
}

// ListUsers returns every user, by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var (
			u       User
			created string
		)
		if err := rows.Scan(&u.ID, &u.Name, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("user %s created_at: %w", u.ID, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// LoadState reads a user's engine state. ok is false when nothing has been
// saved yet.
func (s *Store) LoadState(ctx context.Context, userID string) (st streak.State, ok bool, err error) {
	var lastUTC string
	var lastOffset int64
	err = s.db.QueryRowContext(ctx,
		`SELECT last_utc, last_offset_ns, retired_longest FROM engine_state WHERE user_id = ?`, userID).
		Scan(&lastUTC, &lastOffset, &st.RetiredLongest)
	if errors.Is(err, sql.ErrNoRows) {
		return streak.State{}, false, nil
	}
	if err != nil {
		return streak.State{}, false, fmt.Errorf("loading engine state: %w", err)
	}
	if st.LastUTC, err = time.Parse(timeLayout, lastUTC); err != nil {
		return streak.State{}, false, fmt.Errorf("parsing last_utc %q: %w", lastUTC, err)
	}
	st.LastOffset = time.Duration(lastOffset)

	st.Intervals, err = s.intervals(ctx, userID)
	if err != nil {
		return streak.State{}, false, err
	}
	return st, true, nil
}

func (s *Store) intervals(ctx context.Context, userID string) ([]interval.Interval, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT begin_utc, begin_offset_ns, end_utc, end_offset_ns
		 FROM intervals WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("loading intervals: %w", err)
	}
	defer rows.Close()

	var out []interval.Interval
	for rows.Next() {
		var (
			bUTC, eUTC string
			bOff, eOff int64
		)
		if err := rows.Scan(&bUTC, &bOff, &eUTC, &eOff); err != nil {
			return nil, err
		}
		b, err := time.Parse(timeLayout, bUTC)
		if err != nil {
			return nil, fmt.Errorf("parsing interval begin %q: %w", bUTC, err)
		}
		e, err := time.Parse(timeLayout, eUTC)
		if err != nil {
			return nil, fmt.Errorf("parsing interval end %q: %w", eUTC, err)
		}
		out = append(out, interval.Interval{
			Begin: localday.At(b, time.Duration(bOff)),
			End:   localday.At(e, time.Duration(eOff)),
		})
	}
	return out, rows.Err()
}

// SaveState writes a user's engine state and logs the event that produced
// it, in one transaction.
func (s *Store) SaveState(ctx context.Context, userID string, st streak.State, ev Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO engine_state (user_id, last_utc, last_offset_ns, retired_longest, updated_at)
			 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(user_id) DO UPDATE SET
			   last_utc = excluded.last_utc,
			   last_offset_ns = excluded.last_offset_ns,
			   retired_longest = excluded.retired_longest,
			   updated_at = CURRENT_TIMESTAMP`,
			userID, st.LastUTC.UTC().Format(timeLayout), int64(st.LastOffset), st.RetiredLongest)
		if err != nil {
			return fmt.Errorf("saving engine state: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM intervals WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clearing intervals: %w", err)
		}
		for i, iv := range st.Intervals {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO intervals (user_id, seq, begin_utc, begin_offset_ns, end_utc, end_offset_ns)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				userID, i,
				iv.Begin.UTC.Format(timeLayout), int64(iv.Begin.Offset),
				iv.End.UTC.Format(timeLayout), int64(iv.End.Offset))
			if err != nil {
				return fmt.Errorf("saving interval %d: %w", i, err)
			}
		}

		ev.UserID = userID
		return appendEvent(ctx, tx, ev)
	})
}

// AppendEvent logs an event that did not change engine state.
func (s *Store) AppendEvent(ctx context.Context, ev Event) error {
	return appendEvent(ctx, s.db, ev)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendEvent(ctx context.Context, x execer, ev Event) error {
	_, err := x.ExecContext(ctx,
		`INSERT INTO events (user_id, client_local, utc, offset_ns, verdict) VALUES (?, ?, ?, ?, ?)`,
		ev.UserID, localday.Naive(ev.ClientLocal).Format(localLayout),
		ev.UTC.UTC().Format(timeLayout), int64(ev.Offset), ev.Verdict.String())
	if err != nil {
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit events for a user, newest first.
func (s *Store) RecentEvents(ctx context.Context, userID string, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_local, utc, offset_ns, verdict FROM events
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev           Event
			local, utc   string
			offset       int64
			verdictLabel string
		)
		if err := rows.Scan(&ev.ID, &local, &utc, &offset, &verdictLabel); err != nil {
			return nil, err
		}
		ev.UserID = userID
		if ev.ClientLocal, err = time.Parse(localLayout, local); err != nil {
			return nil, fmt.Errorf("parsing event %d client_local %q: %w", ev.ID, local, err)
		}
		if ev.UTC, err = parseTime(utc); err != nil {
			return nil, fmt.Errorf("event %d utc: %w", ev.ID, err)
		}
		if ev.Verdict, err = parseVerdict(verdictLabel); err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		ev.Offset = time.Duration(offset)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func parseVerdict(s string) (streak.Verdict, error) {
	for _, v := range []streak.Verdict{streak.Accepted, streak.Stale, streak.BadOffset, streak.TimeTravel} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verdict %q", s)
}

// parseTime reads timestamps written by this package or by a
// CURRENT_TIMESTAMP default.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}
