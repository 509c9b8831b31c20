package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"kunai/internal/memory"
	"kunai/internal/proc"
)

type fakeTask struct {
	pid    string
	name   string
	maps   string
	memory map[int64][]byte
}

// writeProcTree lays out a fake procfs with status, cmdline, maps and a
// sparse mem file for every task.
func writeProcTree(t *testing.T, tasks ...fakeTask) string {
	t.Helper()
	root := t.TempDir()
	for _, ft := range tasks {
		dir := filepath.Join(root, ft.pid)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		status := "Name:\t" + ft.name + "\nState:\tS (sleeping)\n"
		if err := os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0o644); err != nil {
			t.Fatalf("write status: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "cmdline"), []byte(ft.name+"\x00"), 0o644); err != nil {
			t.Fatalf("write cmdline: %v", err)
		}
		if ft.maps != "" {
			if err := os.WriteFile(filepath.Join(dir, "maps"), []byte(ft.maps), 0o644); err != nil {
				t.Fatalf("write maps: %v", err)
			}
		}
		f, err := os.Create(filepath.Join(dir, "mem"))
		if err != nil {
			t.Fatalf("create mem: %v", err)
		}
		if err := f.Truncate(0x10000); err != nil {
			t.Fatalf("truncate mem: %v", err)
		}
		for off, data := range ft.memory {
			if _, err := f.WriteAt(data, off); err != nil {
				t.Fatalf("seed mem: %v", err)
			}
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close mem: %v", err)
		}
	}
	return root
}

func readMem(t *testing.T, root, pid string, off int64, n int) string {
	t.Helper()
	f, err := os.Open(filepath.Join(root, pid, "mem"))
	if err != nil {
		t.Fatalf("open mem: %v", err)
	}
	defer f.Close()
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, off); err != nil {
		t.Fatalf("read mem: %v", err)
	}
	return string(buf)
}

// newTestApp builds an App from a JSON config file pointing at root.
func newTestApp(t *testing.T, root string, extra map[string]any) *App {
	t.Helper()
	for _, env := range []string{
		"KUNAI_PROC_ROOT", "KUNAI_ACCESSOR", "KUNAI_STRICT_EDIT_LENGTH",
		"KUNAI_MAX_REGION_SIZE", "KUNAI_LOG_FILE", "KUNAI_LOG_LEVEL",
	} {
		t.Setenv(env, "")
	}

	raw := map[string]any{"proc_root": root}
	for k, v := range extra {
		raw[k] = v
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "kunai.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	a, err := New(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func stubBackend(t *testing.T, list func(string) ([]proc.Task, error), vm func(string) (memory.Accessor, error)) {
	t.Helper()
	resetBackendDeps()
	if list != nil {
		listTasks = list
	}
	if vm != nil {
		newVMAccessor = vm
	}
	t.Cleanup(resetBackendDeps)
}
