package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Modes
	Manual key.Binding
	Reader key.Binding
	Writer key.Binding

	// Quit
	Quit key.Binding

	// Reader navigation
	Down  key.Binding
	Up    key.Binding
	Open  key.Binding
	Close key.Binding

	// Writer fields
	FocusTo      key.Binding
	FocusSubject key.Binding
	FocusBody    key.Binding
	Blur         key.Binding
	NewDraft     key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual"),
		),
		Reader: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read mail"),
		),
		Writer: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "write mail"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next mail"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous mail"),
		),
		Open: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "open mail"),
		),
		Close: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "close mail"),
		),
		FocusTo: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit recipients"),
		),
		FocusSubject: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "edit subject"),
		),
		FocusBody: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "edit body"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave field"),
		),
		NewDraft: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "discard draft"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Manual, k.Reader, k.Writer, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Manual, k.Reader, k.Writer, k.Quit},
		{k.Up, k.Down, k.Open, k.Close},
		{k.FocusTo, k.FocusSubject, k.FocusBody, k.Blur, k.NewDraft},
	}
}
