// Package manual implements the help mode: the manual page shown at
// startup, explaining the modes and their keybindings.
package manual

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbox-tui/internal/keys"
	"github.com/nhle/mailbox-tui/internal/theme"
)

// Model is the manual view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a manual view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the manual view. The manual is static.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetSize updates the manual view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

// View renders the manual page with the full key help below it.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	sections := []string{
		titleStyle.Render("mailbox-tui"),
		"",
		"A terminal client to read and write mail.",
		"",
		titleStyle.Render("Modes"),
		"",
		"- Manual mode: this page. Press 'm' to come back here.",
		"- Reader mode: browse the mailbox. Press 'r' to enable.",
		"- Writer mode: compose a draft. Press 'w' to enable.",
		"",
		"Press 'q' to exit the application, except while a composer",
		"field is capturing text.",
		"",
		titleStyle.Render("Reader mode"),
		"",
		"'j' and 'k' move the highlight through the list, newest mail",
		"on top. 'l' opens the highlighted mail in the viewer panel,",
		"'h' closes it again.",
		"",
		titleStyle.Render("Writer mode"),
		"",
		"'t', 's' and 'b' start editing the recipients, subject and",
		"body fields. 'esc' leaves the field; the draft is kept when",
		"you switch modes. 'ctrl+n' discards it.",
		"",
		titleStyle.Render("Keybindings"),
		"",
	}

	m.help.ShowAll = true
	body := strings.Join(sections, "\n") + m.help.View(m.keys)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(body)
}
