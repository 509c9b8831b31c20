package app

import (
	"errors"
	"strings"

	"kunai/internal/proc"
	"kunai/internal/session"
)

// TaskParams narrows the task listing. At most one filter may be set.
type TaskParams struct {
	Name string
	PID  string
}

// ListTasks returns the tasks matching params, using the same substring
// filter as the interactive task list.
func (a *App) ListTasks(params TaskParams) ([]proc.Task, error) {
	name := strings.TrimSpace(params.Name)
	pid := strings.TrimSpace(params.PID)
	if name != "" && pid != "" {
		return nil, errors.New("use either a name or a pid filter, not both")
	}

	tasks, err := a.Tasks()
	if err != nil {
		return nil, err
	}

	var list session.TaskList
	list.Replace(tasks)
	switch {
	case name != "":
		list.SetFilter(session.FilterName, name)
	case pid != "":
		list.SetFilter(session.FilterPID, pid)
	}

	out := make([]proc.Task, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		out = append(out, list.At(i))
	}
	return out, nil
}
