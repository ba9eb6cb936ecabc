package config

import (
	"sort"
	"strings"
	"testing"
)

func TestValidKeyNames_NonEmpty(t *testing.T) {
	names := ValidKeyNames()
	if len(names) == 0 {
		t.Fatal("expected non-empty key list")
	}
}

func TestValidKeyNames_Sorted(t *testing.T) {
	names := ValidKeyNames()
	if !sort.StringsAreSorted(names) {
		t.Fatalf("expected sorted key names, got %v", names)
	}
}

func TestValidKeyNames_ContainsKnownKeys(t *testing.T) {
	expected := []string{"user.name", "engine.max_intervals", "cache.ttl_minutes", "server.addr", "log.level"}
	names := ValidKeyNames()
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}
	for _, want := range expected {
		if !nameSet[want] {
			t.Errorf("ValidKeyNames missing expected key %q", want)
		}
	}
}

func TestLookupKey_Known(t *testing.T) {
	entry, ok := LookupKey("user.name")
	if !ok {
		t.Fatal("expected user.name to be found")
	}
	if entry.Type != KeyTypeString {
		t.Fatalf("expected string type for user.name, got %q", entry.Type)
	}
}

func TestLookupKey_Unknown(t *testing.T) {
	_, ok := LookupKey("not.a.real.key")
	if ok {
		t.Fatal("expected unknown key to return false")
	}
}

func TestParseBoolValue_TrueVariants(t *testing.T) {
	for _, v := range []string{"true", "1", "yes", "on", "TRUE", "YES", "On"} {
		b, err := ParseBoolValue(v)
		if err != nil {
			t.Errorf("ParseBoolValue(%q): unexpected error: %v", v, err)
		}
		if !b {
			t.Errorf("ParseBoolValue(%q): expected true", v)
		}
	}
}

func TestParseBoolValue_FalseVariants(t *testing.T) {
	for _, v := range []string{"false", "0", "no", "off", "FALSE", "NO", "Off"} {
		b, err := ParseBoolValue(v)
		if err != nil {
			t.Errorf("ParseBoolValue(%q): unexpected error: %v", v, err)
		}
		if b {
			t.Errorf("ParseBoolValue(%q): expected false", v)
		}
	}
}

func TestParseBoolValue_Invalid(t *testing.T) {
	for _, v := range []string{"maybe", "yep", "nope", "", "2", "tru"} {
		_, err := ParseBoolValue(v)
		if err == nil {
			t.Errorf("ParseBoolValue(%q): expected error for invalid bool", v)
		}
	}
}

func TestSetGetUnset_StringKey(t *testing.T) {
	cfg := &Config{}
	entry, ok := LookupKey("user.name")
	if !ok {
		t.Fatal("user.name not found in registry")
	}

	if err := entry.Set(cfg, "alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := entry.Get(cfg); got != "alice" {
		t.Fatalf("Get: expected 'alice', got %q", got)
	}

	entry.Unset(cfg)
	if got := entry.Get(cfg); got != "" {
		t.Fatalf("Unset: expected '', got %q", got)
	}
}

func TestSetGetUnset_IntKey(t *testing.T) {
	cfg := defaultConfig()
	entry, ok := LookupKey("cache.ttl_minutes")
	if !ok {
		t.Fatal("cache.ttl_minutes not found in registry")
	}

	if err := entry.Set(cfg, " 45 "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.Cache.TTLMinutes != 45 {
		t.Fatalf("expected 45, got %d", cfg.Cache.TTLMinutes)
	}

	entry.Unset(cfg)
	if got := entry.Get(cfg); got != entry.DefaultStr {
		t.Fatalf("Unset: expected %q, got %q", entry.DefaultStr, got)
	}
}

func TestSet_IntRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	for key, bad := range map[string]string{
		"cache.ttl_minutes":    "0",
		"engine.max_intervals": "-1",
		"server.burst":         "lots",
	} {
		entry, _ := LookupKey(key)
		if err := entry.Set(cfg, bad); err == nil {
			t.Errorf("%s: expected error for %q", key, bad)
		}
	}
	if cfg.Engine.MaxIntervals != 0 {
		t.Errorf("rejected value was applied: %d", cfg.Engine.MaxIntervals)
	}
}

func TestSet_ChoiceKey(t *testing.T) {
	cfg := defaultConfig()
	entry, _ := LookupKey("log.format")

	if err := entry.Set(cfg, "JSON"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("expected json, got %q", cfg.Log.Format)
	}
	if err := entry.Set(cfg, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetGetUnset_BoolKeys(t *testing.T) {
	for key, field := range map[string]func(*Config) bool{
		"log.source":         func(c *Config) bool { return c.Log.Source },
		"server.trust_proxy": func(c *Config) bool { return c.Server.TrustProxy },
	} {
		cfg := &Config{}
		entry, ok := LookupKey(key)
		if !ok {
			t.Fatalf("%s not found in registry", key)
		}

		if err := entry.Set(cfg, "yes"); err != nil {
			t.Fatalf("%s: Set: %v", key, err)
		}
		if got := entry.Get(cfg); got != "true" || !field(cfg) {
			t.Fatalf("%s: Get: expected 'true', got %q", key, got)
		}

		entry.Unset(cfg)
		if got := entry.Get(cfg); got != "false" {
			t.Fatalf("%s: Unset: expected 'false', got %q", key, got)
		}
		if err := entry.Set(cfg, "notabool"); err == nil || !strings.Contains(err.Error(), key) {
			t.Fatalf("%s: expected error naming the key, got %v", key, err)
		}
	}
}

func TestAllSchemaKeys_GetSetUnsetDoNotPanic(t *testing.T) {
	cfg := defaultConfig()
	for key, entry := range SchemaKeys {
		_ = entry.Get(cfg)
		entry.Unset(cfg)
		if got := entry.Get(cfg); got != entry.DefaultStr {
			t.Errorf("key %q: after Unset got %q, want default %q", key, got, entry.DefaultStr)
		}
		if err := entry.Set(cfg, entry.DefaultStr); err != nil {
			t.Errorf("key %q: Set with default value %q failed: %v", key, entry.DefaultStr, err)
		}
	}
}

func TestAllSchemaKeys_HaveDesc(t *testing.T) {
	for key, entry := range SchemaKeys {
		if entry.Desc == "" {
			t.Errorf("key %q has empty Desc", key)
		}
	}
}

func TestAllSchemaKeys_HaveValidType(t *testing.T) {
	for key, entry := range SchemaKeys {
		switch entry.Type {
		case KeyTypeString, KeyTypeInt, KeyTypeBool:
		default:
			t.Errorf("key %q has invalid Type %q", key, entry.Type)
		}
	}
}

func TestRoundTrip_EngineMaxIntervals(t *testing.T) {
	setupTestXDG(t)

	entry, ok := LookupKey("engine.max_intervals")
	if !ok {
		t.Fatal("engine.max_intervals not found")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := entry.Set(cfg, "365"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}

	if got := entry.Get(loaded); got != "365" {
		t.Fatalf("round-trip failed: expected '365', got %q", got)
	}
}
