// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Card actions
	AddCard    key.Binding
	DeleteCard key.Binding
	MoveLeft   key.Binding
	MoveRight  key.Binding
	Refresh    key.Binding
	Yank       key.Binding

	// Deck actions
	RaiseLimit key.Binding
	LowerLimit key.Binding

	// General
	CancelDrag   key.Binding
	Logs         key.Binding
	Help         key.Binding
	Quit         key.Binding
	ToggleStatus key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous deck"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next deck"),
		),

		// Card actions
		AddCard: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add card"),
		),
		DeleteCard: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete card"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "move card left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "move card right"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh cards"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy card ID"),
		),

		// Deck actions
		RaiseLimit: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "raise deck limit"),
		),
		LowerLimit: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "lower deck limit"),
		),

		// General
		CancelDrag: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "toggle logs"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "toggle status bar"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},                                       // Navigation
		{k.AddCard, k.DeleteCard, k.MoveLeft, k.MoveRight, k.Refresh, k.Yank}, // Card actions
		{k.RaiseLimit, k.LowerLimit},                                          // Deck actions
		{k.CancelDrag, k.Logs, k.Help, k.ToggleStatus, k.Quit},                // General
	}
}
