package localday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseOffset parses a UTC offset such as "+08:00", "-0530", "+8", "UTC-4",
// "Z" or an IANA zone name. Zone names resolve at the current instant.
func ParseOffset(s string) (time.Duration, error) {
	return ParseOffsetAt(s, time.Now())
}

// ParseOffsetAt is ParseOffset with zone names resolved at the given instant,
// so DST is applied the way it was (or will be) at that moment.
func ParseOffsetAt(s string, at time.Time) (time.Duration, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty offset")
	}

	upper := strings.ToUpper(raw)
	switch upper {
	case "Z", "UTC", "GMT":
		return 0, nil
	}
	if strings.Contains(raw, "/") {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return 0, fmt.Errorf("unknown zone %q: %w", raw, err)
		}
		_, secs := at.In(loc).Zone()
		return time.Duration(secs) * time.Second, nil
	}

	body := upper
	for _, prefix := range []string{"UTC", "GMT"} {
		body = strings.TrimPrefix(body, prefix)
	}
	if body == "" || (body[0] != '+' && body[0] != '-') {
		return 0, fmt.Errorf("invalid offset %q: expected a sign, e.g. +08:00", raw)
	}

	sign := time.Duration(1)
	if body[0] == '-' {
		sign = -1
	}
	body = body[1:]

	var hh, mm string
	switch {
	case strings.Contains(body, ":"):
		parts := strings.SplitN(body, ":", 2)
		hh, mm = parts[0], parts[1]
	case len(body) == 4:
		hh, mm = body[:2], body[2:]
	default:
		hh, mm = body, "0"
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid offset hours in %q", raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid offset minutes in %q", raw)
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

// FormatOffset renders an offset as "+08:00" or "-05:30".
func FormatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if s != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}
