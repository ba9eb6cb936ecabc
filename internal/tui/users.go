package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/ui"
)

// UserEntry is one row of the user picker.
type UserEntry struct {
	User   history.User
	Streak int
}

// UserPicker is a type-to-filter list of users.
type UserPicker struct {
	entries []UserEntry
	shown   []UserEntry
	query   string
	cursor  int
	chosen  *UserEntry
	width   int
	height  int
}

// NewUserPicker lists entries in the order given until the user types.
func NewUserPicker(entries []UserEntry) *UserPicker {
	p := &UserPicker{entries: entries, width: 80, height: 24}
	p.filter()
	return p
}

// PickUser runs the picker. ok is false when the user backed out.
func PickUser(entries []UserEntry) (u history.User, ok bool, err error) {
	m, err := tea.NewProgram(NewUserPicker(entries), tea.WithAltScreen()).Run()
	if err != nil {
		return history.User{}, false, fmt.Errorf("user picker: %w", err)
	}
	p := m.(*UserPicker)
	if p.chosen == nil {
		return history.User{}, false, nil
	}
	return p.chosen.User, true, nil
}

func (p *UserPicker) Init() tea.Cmd {
	return nil
}

func (p *UserPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return p, tea.Quit
		case tea.KeyEnter:
			if len(p.shown) > 0 {
				e := p.shown[p.cursor]
				p.chosen = &e
			}
			return p, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			if p.cursor > 0 {
				p.cursor--
			}
		case tea.KeyDown, tea.KeyCtrlN:
			if p.cursor < len(p.shown)-1 {
				p.cursor++
			}
		case tea.KeyBackspace:
			if p.query != "" {
				r := []rune(p.query)
				p.query = string(r[:len(r)-1])
				p.filter()
			}
		case tea.KeyRunes, tea.KeySpace:
			p.query += string(msg.Runes)
			p.filter()
		}
	}
	return p, nil
}

func (p *UserPicker) View() string {
	var b strings.Builder
	b.WriteString("  " + ui.Title.Render("Pick a user") + "\n\n")
	prompt := lipgloss.NewStyle().Foreground(ui.Gold).Bold(true).Render("> ")
	b.WriteString("  " + prompt + p.query + lipgloss.NewStyle().Foreground(ui.Gold).Render("▎") + "\n\n")

	if len(p.shown) == 0 {
		b.WriteString("  " + ui.Muted.Render("No matches") + "\n")
	}
	rows := max(p.height-6, 3)
	first := max(p.cursor-rows+1, 0)
	for i := first; i < len(p.shown) && i < first+rows; i++ {
		b.WriteString(renderUserEntry(p.shown[i], i == p.cursor) + "\n")
	}

	b.WriteString("\n" + ui.Muted.Render(fmt.Sprintf("  %d/%d · ↑↓ move · enter pick · esc cancel",
		len(p.shown), len(p.entries))) + "\n")
	return b.String()
}

func renderUserEntry(e UserEntry, selected bool) string {
	pointer := "  "
	name := lipgloss.NewStyle().Render(e.User.Name)
	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		name = lipgloss.NewStyle().Foreground(ui.Gold).Bold(true).Render(e.User.Name)
	}
	return "  " + pointer + name + "  " + ui.StreakBadge(e.Streak)
}

// filter keeps the entries whose name matches the query, best match first.
func (p *UserPicker) filter() {
	type hit struct {
		e     UserEntry
		score int
	}
	var hits []hit
	for _, e := range p.entries {
		if score, ok := matchScore(p.query, e.User.Name); ok {
			hits = append(hits, hit{e, score})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(b.score, a.score) })

	p.shown = p.shown[:0]
	for _, h := range hits {
		p.shown = append(p.shown, h.e)
	}
	p.cursor = 0
}

// matchScore reports whether query's runes appear in name in order, ignoring
// case. Adjacent matches and a match on the first rune score higher.
func matchScore(query, name string) (int, bool) {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return 0, true
	}
	score, run, qi := 0, 0, 0
	for i, r := range []rune(strings.ToLower(name)) {
		if qi == len(q) {
			break
		}
		if r != q[qi] {
			run = 0
			continue
		}
		qi++
		run++
		score += run
		if i == 0 {
			score += 3
		}
	}
	return score, qi == len(q)
}
