package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// setupTestXDG sets XDG env vars to a temp directory for isolated testing.
func setupTestXDG(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))
	return tmpDir
}

func TestOpen_CreatesDatabaseUnderDataDir(t *testing.T) {
	tmpDir := setupTestXDG(t)

	db, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	dbPath := filepath.Join(tmpDir, "streak", "streak.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("no database at %s: %v", dbPath, err)
	}

	// Reopening reruns the migrations against existing tables.
	again, err := Open()
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	again.Close()
}

func TestMigrationsCreateTables(t *testing.T) {
	setupTestXDG(t)

	db, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	tables := []string{"users", "engine_state", "intervals", "events"}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Table %q not found: %v", table, err)
		}
	}
}

func TestPragmas(t *testing.T) {
	db, err := OpenPath(filepath.Join(t.TempDir(), "pragmas.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer db.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		var got string
		if err := db.Conn().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", tt.pragma, err)
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	db, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not created at %s: %v", path, err)
	}
}

func TestForeignKeysCascade(t *testing.T) {
	db, err := OpenPath(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	c := db.Conn()

	if _, err := c.Exec(`INSERT INTO users (id, name) VALUES ('u1', 'alice')`); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Exec(`INSERT INTO events (user_id, client_local, utc, offset_ns, verdict)
		VALUES ('u1', 'x', 'y', 0, 'accepted')`); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Exec(`INSERT INTO events (user_id, client_local, utc, offset_ns, verdict)
		VALUES ('nobody', 'x', 'y', 0, 'accepted')`); err == nil {
		t.Error("insert for unknown user should violate the foreign key")
	}
	if _, err := c.Exec(`DELETE FROM users WHERE id = 'u1'`); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := c.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("events left after user delete: %d", n)
	}
}

func TestIsBusy(t *testing.T) {
	if IsBusy(nil) {
		t.Error("nil is not busy")
	}
	if IsBusy(errors.New("no such table")) {
		t.Error("unrelated error reported as busy")
	}
	if !IsBusy(fmt.Errorf("saving: %w", errors.New("database is locked (5) (SQLITE_BUSY)"))) {
		t.Error("wrapped lock error should be busy")
	}
}
