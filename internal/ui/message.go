package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mrx/internal/store"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateChanged MsgKind = iota
	MsgOperationDone
)

// operation is the outcome of one engine call started from the TUI.
type operation struct {
	name string
	err  error
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(s store.State) Msg {
	return Msg{kind: MsgStateChanged, data: s}
}

// operationDoneMsg is the constructor for [MsgOperationDone]
func operationDoneMsg(name string, err error) Msg {
	return Msg{kind: MsgOperationDone, data: operation{name: name, err: err}}
}
