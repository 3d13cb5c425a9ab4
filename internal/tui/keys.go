package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the watch view bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Enter       key.Binding
	Back        key.Binding
	Copy        key.Binding
	CopyTitle   key.Binding
	CopyAllJSON key.Binding
	CopyAllYAML key.Binding

	// Daemon commands
	Dismiss         key.Binding
	DismissAll      key.Binding
	ToggleCenter    key.Binding
	ToggleDismissed key.Binding

	Search  key.Binding
	Refresh key.Binding
	Quit    key.Binding
	Help    key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleCenter, k.Dismiss, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Enter, k.Back, k.Copy, k.CopyTitle, k.CopyAllJSON, k.CopyAllYAML},
		{k.Dismiss, k.DismissAll, k.ToggleCenter, k.ToggleDismissed},
		{k.Search, k.Refresh, k.Help, k.Quit},
	}
}

// bind builds a binding whose help label is the first key unless label is
// set.
func bind(label, desc string, keys ...string) key.Binding {
	if label == "" {
		label = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns vim-style bindings. Lowercase keys act on the
// selected notification, uppercase on all of them.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       bind("↑/k", "up", "up", "k"),
		Down:     bind("↓/j", "down", "down", "j"),
		PageUp:   bind("pgup", "page up", "pgup", "ctrl+u"),
		PageDown: bind("pgdn", "page down", "pgdown", "ctrl+d"),

		Enter:       bind("", "details", "enter"),
		Back:        bind("", "back", "esc", "backspace"),
		Copy:        bind("", "copy body", "c"),
		CopyTitle:   bind("", "copy title", "s"),
		CopyAllJSON: bind("", "copy all as JSON", "C"),
		CopyAllYAML: bind("", "copy all as YAML", "alt+c"),

		Dismiss:         bind("", "dismiss", "d", "delete"),
		DismissAll:      bind("", "dismiss all", "D"),
		ToggleCenter:    bind("", "toggle center", "t"),
		ToggleDismissed: bind("", "show dismissed", "a"),

		Search:  bind("", "filter", "/"),
		Refresh: bind("", "refresh", "r"),
		Quit:    bind("q", "quit", "q", "ctrl+c"),
		Help:    bind("", "help", "?"),
	}
}
