package proc

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultRoot is where procfs is normally mounted.
const DefaultRoot = "/proc"

// Task is an immutable snapshot of one process as listed by procfs.
type Task struct {
	PID     string
	Name    string
	State   string
	Cmdline string
}

// List enumerates the numeric entries under root and returns a Task for each
// process whose status file could be read. Processes that vanish or deny
// access while being listed are skipped. Results are ordered by numeric pid.
func List(root string) ([]Task, error) {
	if root == "" {
		root = DefaultRoot
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	tasks := make([]Task, 0, len(pids))
	for _, pid := range pids {
		t, err := Read(root, strconv.Itoa(pid))
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Read builds the Task for a single pid.
func Read(root, pid string) (Task, error) {
	if root == "" {
		root = DefaultRoot
	}
	name, state, err := readStatus(filepath.Join(root, pid, "status"))
	if err != nil {
		return Task{}, err
	}
	return Task{
		PID:     pid,
		Name:    name,
		State:   state,
		Cmdline: readCmdline(filepath.Join(root, pid, "cmdline")),
	}, nil
}

func readStatus(path string) (name, state string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		switch key {
		case "Name":
			name = strings.TrimSpace(value)
		case "State":
			state = strings.TrimSpace(value)
		}
		if name != "" && state != "" {
			break
		}
	}
	return name, state, sc.Err()
}

// readCmdline joins the NUL-separated argv. Kernel threads have an empty
// cmdline, which is reported as "".
func readCmdline(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	parts := bytes.Split(data, []byte{0})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		out = append(out, string(part))
	}
	return strings.Join(out, " ")
}
