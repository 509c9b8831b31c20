package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"kunai/internal/session"
)

// eventFor translates a key press into a session event for the given state.
// ok is false for keys that mean nothing there.
func eventFor(state session.State, filtering bool, msg tea.KeyMsg) (ev session.Event, ok bool) {
	switch state {
	case session.TaskSelect:
		if filtering {
			return textEvent(msg)
		}
		switch msg.String() {
		case "up", "k":
			return session.Up{}, true
		case "down", "j":
			return session.Down{}, true
		case "enter":
			return session.Submit{}, true
		case "r":
			return session.RefreshTasks{}, true
		case "/":
			return session.StartFilter{Mode: session.FilterName}, true
		case "g":
			return session.StartFilter{Mode: session.FilterPID}, true
		case "q", "esc":
			return session.Escape{}, true
		}

	case session.Search:
		switch msg.String() {
		case "tab":
			return session.ToggleMaps{}, true
		case "ctrl+e":
			return session.OpenEditor{}, true
		case "ctrl+r":
			return session.Rescan{}, true
		}
		return textEvent(msg)

	case session.MapList:
		switch msg.String() {
		case "up", "k":
			return session.Up{}, true
		case "down", "j":
			return session.Down{}, true
		case "enter", " ":
			return session.Submit{}, true
		case "tab":
			return session.ToggleMaps{}, true
		case "esc", "q":
			return session.Escape{}, true
		}

	case session.ValueEdit:
		if msg.String() == "tab" {
			return session.Escape{}, true
		}
		return textEvent(msg)
	}
	return nil, false
}

// textEvent handles keys on screens with a text buffer: arrows move the
// list, everything printable is typed.
func textEvent(msg tea.KeyMsg) (session.Event, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return session.Up{}, true
	case tea.KeyDown:
		return session.Down{}, true
	case tea.KeyEnter:
		return session.Submit{}, true
	case tea.KeyEsc:
		return session.Escape{}, true
	case tea.KeyBackspace:
		return session.Backspace{}, true
	case tea.KeySpace:
		return session.Type{Text: " "}, true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return nil, false
		}
		return session.Type{Text: string(msg.Runes)}, true
	}
	return nil, false
}
