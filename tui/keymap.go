package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	SelectPrevMessage key.Binding
	SelectNextMessage key.Binding
	FocusInput        key.Binding
	UnfocusInput      key.Binding
	SubmitMessage     key.Binding
	EditMessage       key.Binding
	ViewHistory       key.Binding
	ClearChat         key.Binding
	Quit              key.Binding
}

var DefaultKeyMap = KeyMap{
	SelectPrevMessage: key.NewBinding(key.WithKeys("up")),
	SelectNextMessage: key.NewBinding(key.WithKeys("down")),
	FocusInput:        key.NewBinding(key.WithKeys("enter")),
	UnfocusInput:      key.NewBinding(key.WithKeys("esc", "ctrl+g")),
	SubmitMessage:     key.NewBinding(key.WithKeys("tab")),
	EditMessage:       key.NewBinding(key.WithKeys("e")),
	ViewHistory:       key.NewBinding(key.WithKeys("h")),
	ClearChat:         key.NewBinding(key.WithKeys("ctrl+l")),
	Quit:              key.NewBinding(key.WithKeys("ctrl+c")),
}
