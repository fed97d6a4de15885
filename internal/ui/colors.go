package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Theme{
	Title:   "#7D56F4",
	Live:    "#04B575",
	Pending: "#FFA500",
	Failure: "#FF0000",
	Muted:   "#626262",
})

// Theme names the colors of the mrx views.
type Theme struct {
	Title   string // app name and list titles
	Live    string // connected push channel
	Pending string // unread counts, reconnecting channel
	Failure string // request errors
	Muted   string // help, loading and idle states
}

// Palette renders the header badges and status line.
type Palette struct {
	title   lipgloss.Style
	live    lipgloss.Style
	pending lipgloss.Style
	err     lipgloss.Style
	help    lipgloss.Style
}

func NewPalette(t Theme) *Palette {
	return &Palette{
		title:   NewBold(t.Title).MarginBottom(1),
		live:    NewBold(t.Live),
		pending: NewStyle(t.Pending),
		err:     NewBold(t.Failure),
		help:    NewEm(t.Muted),
	}
}

// Connection renders a push channel state.
func (p *Palette) Connection(state string) string {
	switch state {
	case "connected":
		return p.live.Render(state)
	case "connecting":
		return p.pending.Render(state)
	default:
		return p.help.Render(state)
	}
}

// Unread renders the unread notification count, highlighted when non-zero.
func (p *Palette) Unread(n int) string {
	text := fmt.Sprintf("%d unread", n)
	if n == 0 {
		return text
	}
	return p.pending.Render(text)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
