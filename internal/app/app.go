// Package app holds the root Bubble Tea model: mode routing between
// the manual, reader and writer views, the global keybindings, and
// draft persistence across mode switches.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailbox-tui/internal/config"
	"github.com/nhle/mailbox-tui/internal/keys"
	"github.com/nhle/mailbox-tui/internal/message"
	"github.com/nhle/mailbox-tui/internal/store"
	"github.com/nhle/mailbox-tui/internal/ui"
	"github.com/nhle/mailbox-tui/internal/ui/composer"
	"github.com/nhle/mailbox-tui/internal/ui/mailview"
	"github.com/nhle/mailbox-tui/internal/ui/manual"
)

// Mode is the current base of action of the client.
type Mode int

const (
	// ModeHelp shows the manual. It is the initial mode.
	ModeHelp Mode = iota

	// ModeReading browses the loaded message list.
	ModeReading

	// ModeWriting composes a draft.
	ModeWriting
)

func (m Mode) String() string {
	switch m {
	case ModeReading:
		return "reader"
	case ModeWriting:
		return "writer"
	default:
		return "manual"
	}
}

// Model is the root application model. It owns the mode, delegates to
// the per-mode views, and persists the draft when leaving writer mode.
type Model struct {
	mode     Mode
	keys     *keys.KeyMap
	layout   ui.Layout
	mailview mailview.Model
	composer composer.Model
	manual   manual.Model
	store    *store.Store
	draftID  string
	account  string
	mailbox  string
	ready    bool
}

// New creates the root model over an already-loaded message list. The
// store may be nil; draft persistence is then skipped and the draft
// only lives for the process lifetime.
func New(cfg *config.Config, st *store.Store, msgs []*message.Message, draft *store.Draft) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		mode:     ModeHelp,
		keys:     k,
		mailview: mailview.New(k, msgs, 80, 24),
		composer: composer.New(k, 80, 24),
		manual:   manual.New(k, 80, 24),
		store:    st,
		account:  cfg.Account.Email,
		mailbox:  cfg.Mailbox,
	}

	if draft != nil {
		m.draftID = draft.ID
		m.composer.SetValues(draft.To, draft.Subject, draft.Body)
	}

	return m
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles one input event. Unrecognized events (focus changes,
// mouse, paste) fall through without touching state; the runtime
// repaints after every event regardless.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.mailview.SetSize(contentWidth, contentHeight)
		m.composer.SetSize(contentWidth, contentHeight)
		m.manual.SetSize(contentWidth, contentHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes one key event. While a composer field is capturing
// text the event belongs to that field (so 'q' types a q); otherwise
// the global bindings run first and the rest goes to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.persistDraft()
		return m, tea.Quit
	}

	if m.mode == ModeWriting && m.composer.Capturing() {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.persistDraft()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Manual):
		m.leaveMode()
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Reader):
		m.leaveMode()
		m.mode = ModeReading
		return m, nil

	case key.Matches(msg, m.keys.Writer):
		// The draft survives mode switches; w returns to it.
		m.mode = ModeWriting
		return m, nil
	}

	switch m.mode {
	case ModeReading:
		var cmd tea.Cmd
		m.mailview, cmd = m.mailview.Update(msg)
		return m, cmd

	case ModeWriting:
		if key.Matches(msg, m.keys.NewDraft) {
			m.discardDraft()
			return m, nil
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	return m, nil
}

// leaveMode persists the draft when the writer is being left.
func (m *Model) leaveMode() {
	if m.mode == ModeWriting {
		m.persistDraft()
	}
}

// persistDraft saves the in-progress draft to the store. Failures are
// logged, not surfaced; the draft still lives in the composer.
func (m *Model) persistDraft() {
	if m.store == nil {
		return
	}

	to, subject, body := m.composer.Values()
	draft := store.Draft{ID: m.draftID, To: to, Subject: subject, Body: body}
	if draft.Empty() && m.draftID == "" {
		return
	}

	saved, err := m.store.SaveDraft(context.Background(), draft)
	if err != nil {
		log.Printf("saving draft: %v", err)
		return
	}
	m.draftID = saved.ID
}

// discardDraft clears the composer and deletes the stored draft.
func (m *Model) discardDraft() {
	m.composer.Reset()
	if m.store != nil && m.draftID != "" {
		if err := m.store.DeleteDraft(context.Background(), m.draftID); err != nil {
			log.Printf("deleting draft: %v", err)
		}
	}
	m.draftID = ""
}

// View projects the current mode into the terminal frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var content string
	switch m.mode {
	case ModeReading:
		content = m.mailview.View()
	case ModeWriting:
		content = m.composer.View()
	default:
		content = m.manual.View()
	}

	header := m.layout.RenderHeader(
		"mailbox-tui",
		fmt.Sprintf("%s · %s", m.account, m.mailbox),
	)
	status := m.layout.RenderStatusBar(fmt.Sprintf(
		"%s · %d messages · m manual · r read · w write · q quit",
		m.mode, m.mailview.Count(),
	))

	return m.layout.RenderWithFrame(header, content, status)
}
