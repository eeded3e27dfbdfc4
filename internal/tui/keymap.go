package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up          key.Binding
	Down        key.Binding
	Prev        key.Binding
	Next        key.Binding
	Year        key.Binding
	Month       key.Binding
	SwitchFocus key.Binding

	// Actions
	EditBudget   key.Binding
	Delete       key.Binding
	Add          key.Binding
	CopyPrevious key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
	Refresh      key.Binding
	SignOut      key.Binding

	// Application
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "["),
			key.WithHelp("←/h", "forrige"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right", "]"),
			key.WithHelp("→/l", "neste"),
		),
		Year: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "år"),
		),
		Month: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "måned"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch panel"),
		),

		EditBudget: key.NewBinding(
			key.WithKeys("enter", "b"),
			key.WithHelp("Enter/b", "edit budget"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x", "delete"),
			key.WithHelp("d", "delete expense"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add expense"),
		),
		CopyPrevious: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("Ctrl+P", "copy previous"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/Esc", "cancel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "sign out"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Add, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchFocus},
		{k.Prev, k.Next, k.Year, k.Month},
		{k.EditBudget, k.CopyPrevious, k.Delete, k.Add},
		{k.Refresh, k.SignOut, k.Help, k.Quit},
	}
}
