package ui

import "github.com/charmbracelet/lipgloss"

// streak's palette: fire for live runs, ash for broken ones.
var (
	Flame  = lipgloss.Color("#FF6B1A")
	Ember  = lipgloss.Color("#FFB347")
	Gold   = lipgloss.Color("#FFD700")
	Ash    = lipgloss.Color("#8B8680")
	Frost  = lipgloss.Color("#7FB8E6")
	Leaf   = lipgloss.Color("#50C878")
	Ruby   = lipgloss.Color("#E0115F")
	Dim    = lipgloss.Color("#666666")
	Bright = lipgloss.Color("#FFFFFF")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Flame)

	Subtitle = lipgloss.NewStyle().
			Foreground(Ember)

	Success = lipgloss.NewStyle().
		Foreground(Leaf)

	Error = lipgloss.NewStyle().
		Foreground(Ruby)

	Warning = lipgloss.NewStyle().
		Foreground(Ember)

	Info = lipgloss.NewStyle().
		Foreground(Frost)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Gold).
		Bold(true)

	// Day cells in the activity strip.
	ActiveDay = lipgloss.NewStyle().
			Foreground(Bright).
			Background(Flame).
			Bold(true)

	IdleDay = lipgloss.NewStyle().
		Foreground(Ash)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Ember).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)
)

const (
	IconFire     = "🔥"
	IconCold     = "🧊"
	IconTrophy   = "🏆"
	IconCalendar = "📅"
	IconClock    = "⏱ "
	IconUser     = "👤"
	IconWarn     = "⚠️ "
	IconError    = "✗ "
	IconOk       = "✓ "
	IconArrow    = "→"
)
