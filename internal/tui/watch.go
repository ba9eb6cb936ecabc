package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/interval"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/tracker"
	"github.com/rnwolfe/streak/internal/ui"
)

const stripDays = 14

// WatchData is one snapshot of everything the dashboard shows.
type WatchData struct {
	User      string
	Now       time.Time
	Status    tracker.Status
	Intervals []interval.Interval
	Events    []history.Event
}

// Loader fetches a fresh snapshot.
type Loader func() (WatchData, error)

type watchDataMsg WatchData
type watchErrMsg struct{ err error }
type tickMsg time.Time

// WatchModel is the Bubbletea model for `streak watch`.
type WatchModel struct {
	load    Loader
	every   time.Duration
	data    WatchData
	width   int
	height  int
	loading bool
	err     error
}

// NewWatchModel returns a model that reloads every interval.
func NewWatchModel(load Loader, every time.Duration) *WatchModel {
	return &WatchModel{
		load:    load,
		every:   every,
		width:   80,
		height:  24,
		loading: true,
	}
}

// RunWatch runs the dashboard until the user quits.
func RunWatch(load Loader, every time.Duration) error {
	prog := tea.NewProgram(NewWatchModel(load, every), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case watchDataMsg:
		m.data = WatchData(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case watchErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m *WatchModel) View() string {
	if m.loading {
		return "\n  " + ui.Muted.Render("Loading…") + "\n"
	}
	if m.err != nil {
		return "\n  " + ui.Error.Render("Error: "+m.err.Error()) + "\n"
	}
	switch {
	case m.width < 50:
		return m.renderMinimal()
	case m.width >= 100:
		return m.renderTwoColumn()
	default:
		return m.renderStacked()
	}
}

func (m *WatchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		data, err := m.load()
		if err != nil {
			return watchErrMsg{err}
		}
		return watchDataMsg(data)
	}
}

func (m *WatchModel) tick() tea.Cmd {
	if m.every <= 0 {
		return nil
	}
	return tea.Tick(m.every, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// --- Layout builders ---

func (m *WatchModel) renderTwoColumn() string {
	leftW := m.width/2 - 2
	rightW := m.width - leftW - 4

	left := lipgloss.NewStyle().Width(leftW).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			renderStreakPanel(m.data),
			"",
			renderStripPanel(m.data),
		),
	)
	right := lipgloss.NewStyle().Width(rightW).Render(renderEventsPanel(m.data.Events, 8))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n\n" + renderHelpBar() + "\n"
}

func (m *WatchModel) renderStacked() string {
	parts := []string{
		renderStreakPanel(m.data),
		"",
		renderStripPanel(m.data),
		"",
		renderEventsPanel(m.data.Events, 5),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n\n" + renderHelpBar() + "\n"
}

func (m *WatchModel) renderMinimal() string {
	var b strings.Builder
	b.WriteString("\n  " + ui.Title.Render(m.data.User) + "\n\n")
	b.WriteString("  " + ui.StreakBadge(m.data.Status.Streak) + "\n")
	b.WriteString(fmt.Sprintf("  %s best %d\n", ui.IconTrophy, m.data.Status.Longest))
	b.WriteString("\n  " + ui.Muted.Render("q quit · r refresh") + "\n")
	return b.String()
}

// --- Panel renderers ---

func renderStreakPanel(d WatchData) string {
	var b strings.Builder
	b.WriteString("  " + ui.Title.Render(ui.IconUser+" "+d.User) + "\n\n")
	b.WriteString("  " + ui.StreakBadge(d.Status.Streak) + "\n")
	b.WriteString(fmt.Sprintf("  %s longest: %d %s\n", ui.IconTrophy,
		d.Status.Longest, ui.Plural(d.Status.Longest, "day", "days")))

	if d.Status.Active {
		b.WriteString(fmt.Sprintf("  %s breaks on %s\n", ui.IconCalendar, d.Status.BreaksOn))
	} else if d.Status.Longest > 0 {
		b.WriteString("  " + ui.Muted.Render("Record today to start a new run.") + "\n")
	}
	if !d.Status.LastUTC.IsZero() {
		last := localday.At(d.Status.LastUTC, d.Status.LastOffset)
		b.WriteString(fmt.Sprintf("  %s last: %s\n", ui.IconClock, last))
	}
	return b.String()
}

func renderStripPanel(d WatchData) string {
	today := localday.At(d.Now, d.Status.LastOffset).Date()
	active := ActiveDays(d.Intervals)
	return "  " + ui.Subtitle.Render("Last two weeks") + "\n\n  " +
		ui.DayStrip(today, stripDays, func(day localday.Date) bool { return active[day] }) + "\n"
}

func renderEventsPanel(events []history.Event, limit int) string {
	var b strings.Builder
	b.WriteString("  " + ui.Subtitle.Render("Recent events") + "\n\n")
	if len(events) == 0 {
		b.WriteString("  " + ui.Muted.Render("Nothing recorded yet.") + "\n")
		return b.String()
	}
	shown := events
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for _, ev := range shown {
		b.WriteString(renderEvent(ev) + "\n")
	}
	if len(events) > limit {
		b.WriteString("  " + ui.Muted.Render(fmt.Sprintf("…and %d more", len(events)-limit)) + "\n")
	}
	return b.String()
}

func renderEvent(ev history.Event) string {
	verdict := ev.Verdict.String()
	style := ui.Success
	if verdict != "accepted" {
		style = ui.Warning
	}
	return fmt.Sprintf("  %s %s %s",
		ui.Muted.Render(ev.UTC.Format("Jan 02 15:04Z")),
		ui.Info.Render(localday.FormatOffset(ev.Offset)),
		style.Render(verdict),
	)
}

func renderHelpBar() string {
	return ui.Muted.Render("  r refresh · q quit")
}

// ActiveDays lists every local date touched by the given intervals.
func ActiveDays(ivs []interval.Interval) map[localday.Date]bool {
	days := make(map[localday.Date]bool)
	for _, iv := range ivs {
		begin := iv.Begin.Date()
		for i := 0; i < iv.Length(); i++ {
			days[begin.AddDays(i)] = true
		}
	}
	return days
}
