package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/rnwolfe/streak/internal/localday"
)

// Warn prints a warning message.
func Warn(msg string) {
	fmt.Println(Warning.Render(IconWarn + msg))
}

// Err prints an error message to stderr.
func Err(msg string) {
	styled := Error.Bold(true).Render(IconError + msg)
	fmt.Fprintln(os.Stderr, styled)
}

// Ok prints a success message.
func Ok(msg string) {
	fmt.Println(Success.Render(IconOk + msg))
}

// Inf prints an info message.
func Inf(msg string) {
	fmt.Println(Info.Render("  " + msg))
}

// Header prints a section header.
func Header(s string) {
	fmt.Println()
	fmt.Println(Title.Render(s))
	fmt.Println(Muted.Render(strings.Repeat("─", len(s)+2)))
}

// Tip prints a helpful tip.
func Tip(msg string) {
	fmt.Println()
	fmt.Println(Muted.Render("  tip: " + msg))
}

// Kv prints a key-value pair, padded.
func Kv(key string, value string) {
	k := KeyStyle.Render(fmt.Sprintf("  %-12s", key))
	v := ValueStyle.Render(value)
	fmt.Printf("%s %s\n", k, v)
}

// StreakBadge renders a streak count, hot when the run is alive.
func StreakBadge(n int) string {
	if n == 0 {
		return Muted.Render(IconCold + " no streak")
	}
	unit := "days"
	if n == 1 {
		unit = "day"
	}
	return Accent.Render(fmt.Sprintf("%s %d %s", IconFire, n, unit))
}

// DayStrip renders the days ending at last as a row of cells, lit where
// active reports true. Weekday initials label each cell.
func DayStrip(last localday.Date, days int, active func(localday.Date) bool) string {
	var b strings.Builder
	for i := days - 1; i >= 0; i-- {
		d := last.AddDays(-i)
		cell := " " + d.Weekday().String()[:1] + " "
		if active(d) {
			b.WriteString(ActiveDay.Render(cell))
		} else {
			b.WriteString(IdleDay.Render(cell))
		}
	}
	return b.String()
}

// Plural picks the singular or plural noun for n.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
