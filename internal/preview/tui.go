// Package preview renders a dry-run view of pending announcements: what the
// publisher would post, without submitting anything or touching the
// seen-state.
package preview

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/steam-herald/internal/herald"
	"github.com/lepinkainen/steam-herald/internal/reddit"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the preview TUI
const (
	ListViewMode ViewMode = iota
	PostViewMode
)

// Model represents the Bubble Tea model for the preview TUI
type Model struct {
	items         []herald.Announcement
	cursor        int
	viewMode      ViewMode
	catchUp       bool
	width         int
	height        int
	selectedIndex int
}

// NewModel creates a new preview model
func NewModel(items []herald.Announcement, catchUp bool) Model {
	return Model{
		items:         items,
		cursor:        0,
		viewMode:      ListViewMode,
		catchUp:       catchUp,
		selectedIndex: -1,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg)
		case PostViewMode:
			return m.updatePostView(msg)
		}
	}

	return m, nil
}

func (m Model) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "enter":
		m.selectedIndex = m.cursor
		m.viewMode = PostViewMode
	}

	return m, nil
}

func (m Model) updatePostView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.viewMode = ListViewMode
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case ListViewMode:
		return m.renderListView()
	case PostViewMode:
		return m.renderPostView()
	}
	return ""
}

func (m Model) renderListView() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	header := fmt.Sprintf("Pending announcements (%d)", len(m.items))
	if m.catchUp {
		header += " — catch-up backlog, emission capped"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	for i, item := range m.items {
		posted := time.Unix(item.PostedAt, 0).UTC().Format("2006-01-02 15:04")
		line := fmt.Sprintf("%2d. [%s] %s", i+1, posted, item.Title)

		if i == m.cursor {
			selectedStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("12")).
				Bold(true)
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	footer := "↑/↓ or j/k: navigate • enter: view post • q: quit"
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

func (m Model) renderPostView() string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.items) {
		return "No announcement selected"
	}

	post := reddit.FormatPost(m.items[m.selectedIndex])

	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	b.WriteString(headerStyle.Render("Post preview: " + post.Title))
	b.WriteString("\n\n")
	b.WriteString(post.Body)
	b.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	footer := "esc: back to list • q: quit"
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

// Run starts the Bubble Tea program
func Run(items []herald.Announcement, catchUp bool) error {
	if len(items) == 0 {
		fmt.Println("No pending announcements to preview")
		return nil
	}

	p := tea.NewProgram(NewModel(items, catchUp), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
