// Package mailview implements the reading mode: the explorer list of
// fetched mail on the left and, when a mail is opened, the viewer
// panel on the right.
package mailview

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbox-tui/internal/keys"
	"github.com/nhle/mailbox-tui/internal/message"
	"github.com/nhle/mailbox-tui/internal/theme"
)

// noOpened marks the absence of an opened mail.
const noOpened = -1

// viewerChromeHeight is the fixed vertical space the viewer consumes
// above the body: the title line plus the subject, date and sender
// boxes at one content line each inside a two-line border.
const viewerChromeHeight = 1 + 3*(1+2)

// Model is the reading mode view. It owns the message list, the cursor
// and the opened selection. The list order is fixed at load time
// (newest first); only a reload changes it.
type Model struct {
	msgs   []*message.Message
	cursor int
	opened int
	keys   *keys.KeyMap
	body   viewport.Model
	width  int
	height int
}

// New creates a reading view for the given message list.
func New(k *keys.KeyMap, msgs []*message.Message, width, height int) Model {
	vp := viewport.New(width/2, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		msgs:   msgs,
		opened: noOpened,
		keys:   k,
		body:   vp,
		width:  width,
		height: height,
	}
}

// SetMessages replaces the list, resetting cursor and opened selection.
func (m *Model) SetMessages(msgs []*message.Message) {
	m.msgs = msgs
	m.cursor = 0
	m.opened = noOpened
}

// Count returns the number of listed messages.
func (m Model) Count() int { return len(m.msgs) }

// Cursor returns the highlighted index, 0 when the list is empty.
func (m Model) Cursor() int { return m.cursor }

// Opened returns the index of the opened mail, if any.
func (m Model) Opened() (int, bool) {
	if m.opened == noOpened {
		return 0, false
	}
	return m.opened, true
}

// Update handles key input for the reading mode. Cursor movement
// saturates at both ends and is a no-op on an empty list; opening
// pins the mail under the cursor, closing is idempotent.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor+1 < len(m.msgs) {
			m.cursor++
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Open):
		if len(m.msgs) == 0 {
			return m, nil
		}
		m.opened = m.cursor
		m.body.SetContent(m.msgs[m.opened].PlainBody())
		m.body.GotoTop()
		return m, nil

	case key.Matches(keyMsg, m.keys.Close):
		m.opened = noOpened
		return m, nil
	}

	// Remaining keys scroll the opened body (pgup/pgdown and friends).
	if m.opened != noOpened {
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}

	return m, nil
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.body.Width = viewerWidth(width) - 4
	m.body.Height = height - viewerChromeHeight
	if m.body.Height < 1 {
		m.body.Height = 1
	}
}

func viewerWidth(total int) int {
	return total / 2
}

// View renders the explorer list and, when a mail is opened, the
// viewer panel beside it.
func (m Model) View() string {
	if _, ok := m.Opened(); !ok {
		return m.explorerView(m.width)
	}

	listWidth := m.width - viewerWidth(m.width)
	explorer := m.explorerView(listWidth)
	viewer := m.viewerView(viewerWidth(m.width))

	return lipgloss.JoinHorizontal(lipgloss.Top, explorer, viewer)
}

// explorerView renders the list of received mail, newest first.
func (m Model) explorerView(width int) string {
	title := theme.HeaderStyle.Render("Recent mail")

	if len(m.msgs) == 0 {
		empty := theme.HelpStyle.Render("No mail.")
		return lipgloss.NewStyle().Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, empty),
		)
	}

	rows := make([]string, 0, len(m.msgs)+1)
	rows = append(rows, title)

	for i, msg := range m.msgs {
		subject := msg.HeaderOr("Subject", "No subject")
		date := formatDate(msg.Date())

		line := fmt.Sprintf("%s\n%s", subject, theme.HelpStyle.Render(date))
		if i == m.cursor {
			rows = append(rows, theme.SelectedItemStyle.Width(width-2).Render(line))
		} else {
			rows = append(rows, theme.ListItemStyle.Width(width-2).Render(line))
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// viewerView renders the opened mail: subject, date and sender boxes
// above the body. A missing or blank header renders as a placeholder;
// it never aborts the frame.
func (m Model) viewerView(width int) string {
	msg := m.msgs[m.opened]
	inner := width - 2

	subject := theme.PanelStyle.Width(inner).Render(
		msg.HeaderOr("Subject", "No subject"),
	)
	date := theme.PanelStyle.Width(inner).Render(
		formatDate(msg.Date()),
	)
	from := theme.PanelStyle.Width(inner).Render(
		msg.HeaderOr("From", "No sender"),
	)

	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			theme.HeaderStyle.Render("Mail viewer"),
			subject,
			date,
			from,
			m.body.View(),
		))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "No date"
	}
	return t.Format(time.RFC3339)
}
