package session

import (
	"strings"

	"kunai/internal/proc"
)

// FilterMode selects which task field the filter text is matched against.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterName
	FilterPID
)

func (m FilterMode) String() string {
	switch m {
	case FilterName:
		return "name"
	case FilterPID:
		return "pid"
	default:
		return "none"
	}
}

// TaskList owns the canonical task slice. Filtering never copies tasks: the
// filtered view is a list of indexes into the store, and an empty filter
// means the whole store is visible.
type TaskList struct {
	all    []proc.Task
	view   []int
	mode   FilterMode
	filter string
	sel    Selection
}

// Replace swaps in a fresh task snapshot, re-applies the current filter and
// clears the selection.
func (l *TaskList) Replace(tasks []proc.Task) {
	l.all = tasks
	l.recompute()
}

// Len is the number of visible tasks.
func (l *TaskList) Len() int {
	if l.view == nil {
		return len(l.all)
	}
	return len(l.view)
}

// At returns the i-th visible task.
func (l *TaskList) At(i int) proc.Task {
	if l.view == nil {
		return l.all[i]
	}
	return l.all[l.view[i]]
}

// Selected returns the highlighted visible task, if any.
func (l *TaskList) Selected() (proc.Task, bool) {
	i, ok := l.sel.Index()
	if !ok || i >= l.Len() {
		return proc.Task{}, false
	}
	return l.At(i), true
}

// Selection returns the highlighted index into the visible list.
func (l *TaskList) Selection() (int, bool) { return l.sel.Index() }

// Filter returns the active mode and text.
func (l *TaskList) Filter() (FilterMode, string) { return l.mode, l.filter }

// Filtering reports whether a filter mode is active (even with empty text).
func (l *TaskList) Filtering() bool { return l.mode != FilterNone }

// SetFilter switches mode and text and recomputes the view. The selection is
// always cleared because old indexes may not exist in the new view.
func (l *TaskList) SetFilter(mode FilterMode, text string) {
	l.mode = mode
	l.filter = text
	if mode == FilterNone {
		l.filter = ""
	}
	l.recompute()
}

func (l *TaskList) up()   { l.sel.Up(l.Len()) }
func (l *TaskList) down() { l.sel.Down(l.Len()) }

func (l *TaskList) recompute() {
	l.sel.Clear()
	if l.mode == FilterNone || l.filter == "" {
		l.view = nil
		return
	}
	view := make([]int, 0, len(l.all))
	for i, t := range l.all {
		field := t.Name
		if l.mode == FilterPID {
			field = t.PID
		}
		if strings.Contains(field, l.filter) {
			view = append(view, i)
		}
	}
	l.view = view
}
