package session

import "kunai/internal/proc"

// State is the screen the session is on.
type State int

const (
	TaskSelect State = iota
	MapList
	Search
	ValueEdit
)

func (s State) String() string {
	switch s {
	case TaskSelect:
		return "task-select"
	case MapList:
		return "map-list"
	case Search:
		return "search"
	case ValueEdit:
		return "value-edit"
	default:
		return "unknown"
	}
}

// Event is a command sent to Session.Dispatch. How an event is interpreted
// depends on the current State; events that mean nothing in a state are
// ignored.
type Event interface {
	event()
}

type (
	// Up moves the selection of the list shown in the current state.
	Up struct{}
	// Down moves the selection of the list shown in the current state.
	Down struct{}
	// Type appends text to the buffer edited in the current state: the task
	// filter, the search pattern or the new value.
	Type struct{ Text string }
	// Backspace removes the last character from the current buffer.
	Backspace struct{}
	// Submit selects the highlighted task, runs a scan, writes the edit, or
	// toggles scanning of the highlighted region, depending on state.
	Submit struct{}
	// Escape leaves the current screen; from TaskSelect it ends the session.
	Escape struct{}
	// ToggleMaps switches between Search and MapList.
	ToggleMaps struct{}
	// OpenEditor starts editing the selected match.
	OpenEditor struct{}
	// Rescan repeats the last submitted search.
	Rescan struct{}
	// StartFilter enters a task filter mode with empty filter text.
	StartFilter struct{ Mode FilterMode }
	// RefreshTasks reloads the task list from the backend.
	RefreshTasks struct{}
	// SelectTask selects t directly, bypassing the task list.
	SelectTask struct{ Task proc.Task }
)

func (Up) event()           {}
func (Down) event()         {}
func (Type) event()         {}
func (Backspace) event()    {}
func (Submit) event()       {}
func (Escape) event()       {}
func (ToggleMaps) event()   {}
func (OpenEditor) event()   {}
func (Rescan) event()       {}
func (StartFilter) event()  {}
func (RefreshTasks) event() {}
func (SelectTask) event()   {}
