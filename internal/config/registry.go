package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString KeyType = "string"
	KeyTypeInt    KeyType = "int"
	KeyTypeBool   KeyType = "bool"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type (string, int, bool).
	Type KeyType
	// Desc is a human-readable description shown in `streak config list`.
	Desc string
	// DefaultStr is the string representation of the default value.
	DefaultStr string

	get   func(*Config) string
	set   func(cfg *Config, value string) error
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on type mismatch.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its schema default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

// intKey builds an int entry whose values must be at least min.
func intKey(desc string, def, min int, field func(*Config) *int) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeInt,
		Desc:       desc,
		DefaultStr: strconv.Itoa(def),
		get:        func(cfg *Config) string { return strconv.Itoa(*field(cfg)) },
		set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("not an integer: %q", v)
			}
			if n < min {
				return fmt.Errorf("%d is below the minimum of %d", n, min)
			}
			*field(cfg) = n
			return nil
		},
		unset: func(cfg *Config) { *field(cfg) = def },
	}
}

// boolKey builds a boolean entry defaulting to false.
func boolKey(name, desc string, field func(*Config) *bool) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeBool,
		Desc:       desc,
		DefaultStr: "false",
		get:        func(cfg *Config) string { return strconv.FormatBool(*field(cfg)) },
		set: func(cfg *Config, v string) error {
			b, err := ParseBoolValue(v)
			if err != nil {
				return fmt.Errorf("invalid value %q for %s: %w", v, name, err)
			}
			*field(cfg) = b
			return nil
		},
		unset: func(cfg *Config) { *field(cfg) = false },
	}
}

// choiceKey builds a string entry restricted to the given values.
func choiceKey(desc, def string, choices []string, field func(*Config) *string) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeString,
		Desc:       fmt.Sprintf("%s (%s)", desc, strings.Join(choices, ", ")),
		DefaultStr: def,
		get:        func(cfg *Config) string { return *field(cfg) },
		set: func(cfg *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			for _, c := range choices {
				if v == c {
					*field(cfg) = v
					return nil
				}
			}
			return fmt.Errorf("invalid value %q (use one of: %s)", v, strings.Join(choices, ", "))
		},
		unset: func(cfg *Config) { *field(cfg) = def },
	}
}

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"user.name": {
		Type:       KeyTypeString,
		Desc:       "Default user for record/show (name or id)",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.User.Name },
		set:        func(cfg *Config, v string) error { cfg.User.Name = v; return nil },
		unset:      func(cfg *Config) { cfg.User.Name = "" },
	},
	"user.id": {
		Type:       KeyTypeString,
		Desc:       "Resolved id of the default user",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.User.ID },
		set:        func(cfg *Config, v string) error { cfg.User.ID = v; return nil },
		unset:      func(cfg *Config) { cfg.User.ID = "" },
	},
	"engine.max_intervals": intKey("Intervals kept per user, 0 for all", 0, 0,
		func(cfg *Config) *int { return &cfg.Engine.MaxIntervals }),
	"cache.max_engines": intKey("Engines held in memory by the server", DefaultMaxEngines, 1,
		func(cfg *Config) *int { return &cfg.Cache.MaxEngines }),
	"cache.ttl_minutes": intKey("Minutes an idle engine stays cached", DefaultTTLMinutes, 1,
		func(cfg *Config) *int { return &cfg.Cache.TTLMinutes }),
	"server.addr": {
		Type:       KeyTypeString,
		Desc:       "Listen address for `streak serve`",
		DefaultStr: DefaultAddr,
		get:        func(cfg *Config) string { return cfg.Server.Addr },
		set:        func(cfg *Config, v string) error { cfg.Server.Addr = v; return nil },
		unset:      func(cfg *Config) { cfg.Server.Addr = DefaultAddr },
	},
	"server.rate_per_sec": intKey("Requests per second allowed per client IP", DefaultRatePerSec, 1,
		func(cfg *Config) *int { return &cfg.Server.RatePerSec }),
	"server.burst": intKey("Request burst allowed per client IP", DefaultBurst, 1,
		func(cfg *Config) *int { return &cfg.Server.Burst }),
	"server.trust_proxy": boolKey("server.trust_proxy", "Take the client IP from X-Forwarded-For (only behind a reverse proxy)",
		func(cfg *Config) *bool { return &cfg.Server.TrustProxy }),
	"log.level": choiceKey("Log level", DefaultLogLevel, []string{"debug", "info", "warn", "error"},
		func(cfg *Config) *string { return &cfg.Log.Level }),
	"log.format": choiceKey("Log format", DefaultLogFormat, []string{"text", "json"},
		func(cfg *Config) *string { return &cfg.Log.Format }),
	"log.source": boolKey("log.source", "Include source file and line in log records",
		func(cfg *Config) *bool { return &cfg.Log.Source }),
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}

// ParseBoolValue accepts common boolean string representations.
// Valid truthy values: true, 1, yes, on.
// Valid falsy values: false, 0, no, off.
func ParseBoolValue(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q (use one of: true/false, 1/0, yes/no, on/off)", s)
	}
}
