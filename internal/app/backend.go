package app

import (
	"fmt"
	"strconv"

	"kunai/internal/config"
	"kunai/internal/memory"
	"kunai/internal/proc"
)

var (
	listTasks      = proc.List
	newVMAccessor  = openVM
	newMemAccessor = func(root, pid string) memory.Accessor { return memory.NewProcMem(root, pid) }
)

func resetBackendDeps() {
	listTasks = proc.List
	newVMAccessor = openVM
	newMemAccessor = func(root, pid string) memory.Accessor { return memory.NewProcMem(root, pid) }
}

// Tasks lists every readable task under the configured proc root.
func (a *App) Tasks() ([]proc.Task, error) {
	return listTasks(a.cfg.ProcRoot)
}

// Maps reads the region table of pid.
func (a *App) Maps(pid string) (memory.Map, error) {
	if err := validatePID(pid); err != nil {
		return nil, err
	}
	return memory.NewMapReader(a.cfg.ProcRoot).ReadMaps(pid)
}

// Accessor returns the configured raw memory backend for pid.
func (a *App) Accessor(pid string) (memory.Accessor, error) {
	if err := validatePID(pid); err != nil {
		return nil, err
	}
	switch a.cfg.Accessor {
	case config.AccessorVM:
		return newVMAccessor(pid)
	default:
		return newMemAccessor(a.cfg.ProcRoot, pid), nil
	}
}

func openVM(pid string) (memory.Accessor, error) {
	vm, err := memory.NewVM(pid)
	if err != nil {
		return nil, err
	}
	return vm, nil
}

func validatePID(pid string) error {
	n, err := strconv.Atoi(pid)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid pid: %q", pid)
	}
	return nil
}
