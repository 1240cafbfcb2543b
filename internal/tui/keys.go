package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Volume
	Up       key.Binding
	Down     key.Binding
	FineUp   key.Binding
	FineDown key.Binding
	Max      key.Binding
	Min      key.Binding
	Mute     key.Binding

	// Devices
	Devices key.Binding
	Next    key.Binding
	Prev    key.Binding
	Back    key.Binding

	// Actions
	Copy     key.Binding
	CopyJSON key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Mute, k.Devices, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.FineUp, k.FineDown},
		{k.Max, k.Min, k.Mute},
		{k.Devices, k.Next, k.Prev, k.Back},
		{k.Copy, k.CopyJSON, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("right", "l", "+", "="),
			key.WithHelp("→/l", "one segment up"),
		),
		Down: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←/h", "one segment down"),
		),
		FineUp: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "quarter segment up"),
		),
		FineDown: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "quarter segment down"),
		),
		Max: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "full volume"),
		),
		Min: key.NewBinding(
			key.WithKeys("home", "g", "0"),
			key.WithHelp("g", "silence"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle mute"),
		),
		Devices: key.NewBinding(
			key.WithKeys("tab", "d"),
			key.WithHelp("tab", "devices"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next device"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous device"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "c"),
			key.WithHelp("y", "copy status"),
		),
		CopyJSON: key.NewBinding(
			key.WithKeys("Y", "C"),
			key.WithHelp("Y", "copy as JSON"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
