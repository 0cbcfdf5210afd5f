package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailbox-tui/internal/config"
	"github.com/nhle/mailbox-tui/internal/message"
	"github.com/nhle/mailbox-tui/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Account: config.Account{Host: "imap.example.com", Port: 993, Email: "me@example.com"},
		Mailbox: "INBOX",
	}
}

func testMessages() []*message.Message {
	return []*message.Message{
		message.New(2, map[string]string{"Subject": "newer"}, time.Now(), "newer body", ""),
		message.New(1, map[string]string{"Subject": "older"}, time.Now(), "older body", ""),
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func pressKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press runs keystrokes through the root model, dropping commands.
func press(m Model, runes string) Model {
	for _, r := range runes {
		next, _ := m.Update(pressKey(r))
		m = next.(Model)
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestInitialModeIsHelp(t *testing.T) {
	m := New(testConfig(), nil, testMessages(), nil)
	if m.Mode() != ModeHelp {
		t.Fatalf("initial mode = %v, want ModeHelp", m.Mode())
	}
}

func TestModeSwitching(t *testing.T) {
	m := New(testConfig(), nil, testMessages(), nil)

	m = press(m, "r")
	if m.Mode() != ModeReading {
		t.Fatalf("after r: mode = %v, want ModeReading", m.Mode())
	}

	m = press(m, "w")
	if m.Mode() != ModeWriting {
		t.Fatalf("after w: mode = %v, want ModeWriting", m.Mode())
	}

	m = press(m, "m")
	if m.Mode() != ModeHelp {
		t.Fatalf("after m: mode = %v, want ModeHelp", m.Mode())
	}
}

func TestQuitFromEveryMode(t *testing.T) {
	for _, enter := range []string{"", "r", "w"} {
		m := New(testConfig(), nil, testMessages(), nil)
		m = press(m, enter)

		next, cmd := m.Update(pressKey('q'))
		m = next.(Model)
		if !isQuit(cmd) {
			t.Errorf("q after %q did not quit", enter)
		}
	}
}

func TestQuitSuppressedWhileCapturing(t *testing.T) {
	m := New(testConfig(), nil, testMessages(), nil)

	// Enter writer mode and focus the body field.
	m = press(m, "wb")

	next, cmd := m.Update(pressKey('q'))
	m = next.(Model)
	if isQuit(cmd) {
		t.Fatal("q while a field captures text must not quit")
	}

	_, _, body := m.composer.Values()
	if body != "q" {
		t.Fatalf("body = %q, want the literal q", body)
	}

	// After esc the field no longer captures and q quits again.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	_, cmd = m.Update(pressKey('q'))
	if !isQuit(cmd) {
		t.Fatal("q after esc should quit")
	}
}

func TestReaderKeysReachMailview(t *testing.T) {
	m := New(testConfig(), nil, testMessages(), nil)

	m = press(m, "rjl")
	opened, ok := m.mailview.Opened()
	if !ok || opened != 1 {
		t.Fatalf("Opened() = %d, %v; want 1, true", opened, ok)
	}
}

func TestDraftSurvivesModeSwitches(t *testing.T) {
	m := New(testConfig(), nil, testMessages(), nil)

	m = press(m, "wb")
	m = press(m, "draft text")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	// Leave the writer, look around, come back.
	m = press(m, "rm")
	m = press(m, "w")

	_, _, body := m.composer.Values()
	if body != "draft text" {
		t.Fatalf("body = %q, draft must survive mode switches", body)
	}
}

func TestDraftPersistedOnLeavingWriter(t *testing.T) {
	st := newTestStore(t)
	m := New(testConfig(), st, testMessages(), nil)

	m = press(m, "ws")
	m = press(m, "weekly report")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	m = press(m, "r")

	draft, err := st.LatestDraft(context.Background())
	if err != nil {
		t.Fatalf("LatestDraft() error: %v", err)
	}
	if draft == nil {
		t.Fatal("leaving the writer must persist the draft")
	}
	if draft.Subject != "weekly report" {
		t.Errorf("draft subject = %q", draft.Subject)
	}

	// Re-entering and leaving again updates the same draft.
	m = press(m, "ws")
	m = press(m, "!")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	press(m, "m")

	again, err := st.LatestDraft(context.Background())
	if err != nil {
		t.Fatalf("LatestDraft() error: %v", err)
	}
	if again == nil || again.ID != draft.ID {
		t.Fatal("leaving the writer twice must not fork the draft")
	}
}

func TestRestoredDraftFillsComposer(t *testing.T) {
	draft := &store.Draft{ID: "d1", To: "bob@example.com", Subject: "resumed", Body: "where was I"}
	m := New(testConfig(), nil, testMessages(), draft)

	to, subject, body := m.composer.Values()
	if to != "bob@example.com" || subject != "resumed" || body != "where was I" {
		t.Fatalf("composer not restored: %q, %q, %q", to, subject, body)
	}
}

func TestNewDraftDiscards(t *testing.T) {
	st := newTestStore(t)
	m := New(testConfig(), st, testMessages(), nil)

	m = press(m, "wb")
	m = press(m, "oops")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	m = press(m, "r")
	m = press(m, "w")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)

	_, _, body := m.composer.Values()
	if body != "" {
		t.Fatalf("body = %q, ctrl+n must clear the draft", body)
	}

	draft, err := st.LatestDraft(context.Background())
	if err != nil {
		t.Fatalf("LatestDraft() error: %v", err)
	}
	if draft != nil {
		t.Fatalf("stored draft survived ctrl+n: %+v", draft)
	}
}

func TestEmptyDraftIsNotPersisted(t *testing.T) {
	st := newTestStore(t)
	m := New(testConfig(), st, testMessages(), nil)

	m = press(m, "w")
	m = press(m, "r")

	draft, err := st.LatestDraft(context.Background())
	if err != nil {
		t.Fatalf("LatestDraft() error: %v", err)
	}
	if draft != nil {
		t.Fatalf("empty draft was persisted: %+v", draft)
	}
}

func TestViewWaitsForWindowSize(t *testing.T) {
	m := New(testConfig(), nil, testMessages(), nil)
	if m.View() != "loading..." {
		t.Fatalf("View() before sizing = %q", m.View())
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	view := m.View()
	if view == "loading..." {
		t.Fatal("View() still loading after WindowSizeMsg")
	}
}
