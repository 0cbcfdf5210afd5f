// Package composer implements the writing mode: a draft with
// recipients, subject and body fields, and a focus sub-state deciding
// which field, if any, receives keystrokes.
package composer

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbox-tui/internal/keys"
	"github.com/nhle/mailbox-tui/internal/theme"
)

// fieldChromeHeight is the fixed vertical space above the body
// textarea: three label lines plus the to and subject boxes at one
// content line each inside a two-line border.
const fieldChromeHeight = 3 + 2*(1+2)

// Field identifies which draft field has keyboard focus.
type Field int

const (
	FieldNone Field = iota
	FieldTo
	FieldSubject
	FieldBody
)

// Model is the writing mode view. The draft fields only exist here;
// the parent model owns nothing of the draft beyond persistence.
type Model struct {
	to      textinput.Model
	subject textinput.Model
	body    textarea.Model
	focus   Field
	keys    *keys.KeyMap
	width   int
	height  int
}

// New creates an empty composer.
func New(k *keys.KeyMap, width, height int) Model {
	to := textinput.New()
	to.Placeholder = "recipient@example.com, other@example.com"
	to.Prompt = ""

	subject := textinput.New()
	subject.Placeholder = "Subject"
	subject.Prompt = ""

	body := textarea.New()
	body.Placeholder = "Write your mail here."

	m := Model{
		to:      to,
		subject: subject,
		body:    body,
		keys:    k,
		width:   width,
		height:  height,
	}
	m.SetSize(width, height)
	return m
}

// Capturing reports whether a field is actively receiving keystrokes.
// While capturing, global bindings (including quit) must not fire.
func (m Model) Capturing() bool { return m.focus != FieldNone }

// Focused returns the field currently receiving keystrokes.
func (m Model) Focused() Field { return m.focus }

// Values returns the current draft field contents.
func (m Model) Values() (to, subject, body string) {
	return m.to.Value(), m.subject.Value(), m.body.Value()
}

// SetValues replaces the draft field contents, e.g. when restoring a
// saved draft.
func (m *Model) SetValues(to, subject, body string) {
	m.to.SetValue(to)
	m.subject.SetValue(subject)
	m.body.SetValue(body)
}

// Reset discards the draft: clears every field and drops focus.
func (m *Model) Reset() {
	m.to.Reset()
	m.subject.Reset()
	m.body.Reset()
	m.blur()
}

func (m *Model) blur() {
	m.focus = FieldNone
	m.to.Blur()
	m.subject.Blur()
	m.body.Blur()
}

// Update handles key input for the writing mode. With no field focused,
// t/s/b pick a field. With a field focused, esc drops back to "no field
// focused" (staying in writing mode) and every other key is forwarded
// verbatim to the field widget, so a 'q' lands in the text instead of
// quitting.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	if !isKey {
		return m.forward(msg)
	}

	if m.focus == FieldNone {
		switch {
		case key.Matches(keyMsg, m.keys.FocusTo):
			m.focus = FieldTo
			return m, m.to.Focus()

		case key.Matches(keyMsg, m.keys.FocusSubject):
			m.focus = FieldSubject
			return m, m.subject.Focus()

		case key.Matches(keyMsg, m.keys.FocusBody):
			m.focus = FieldBody
			return m, m.body.Focus()
		}
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.Blur) {
		m.blur()
		return m, nil
	}

	return m.forward(msg)
}

// forward hands a message to the focused field widget.
func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FieldTo:
		m.to, cmd = m.to.Update(msg)
	case FieldSubject:
		m.subject, cmd = m.subject.Update(msg)
	case FieldBody:
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

// SetSize updates the composer dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inner := width - 6
	if inner < 10 {
		inner = 10
	}
	m.to.Width = inner
	m.subject.Width = inner

	m.body.SetWidth(width - 4)
	bodyHeight := height - fieldChromeHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.body.SetHeight(bodyHeight)
}

// View renders the draft fields, marking the focused one.
func (m Model) View() string {
	inner := m.width - 4

	toBox := theme.PanelStyle.Width(inner).Render(m.to.View())
	subjectBox := theme.PanelStyle.Width(inner).Render(m.subject.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.label("To (t)", FieldTo),
		toBox,
		m.label("Subject (s)", FieldSubject),
		subjectBox,
		m.label("Body (b)", FieldBody),
		m.body.View(),
	)
}

func (m Model) label(text string, field Field) string {
	if m.focus == field {
		return theme.FocusedLabelStyle.Render(text + " — editing, esc to leave")
	}
	return theme.LabelStyle.Render(text)
}
