package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	enter         key.Binding
	back          key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	notifications key.Binding
	read          key.Binding
	readAll       key.Binding
	refresh       key.Binding
	quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		moveUp:        key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("shift+↑/K", "move up")),
		moveDown:      key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("shift+↓/J", "move down")),
		notifications: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notifications")),
		read:          key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark read")),
		readAll:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "mark all read")),
		refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.enter, k.back, k.refresh},
		{k.moveUp, k.moveDown},
		{k.notifications, k.read, k.readAll, k.quit},
	}
}
