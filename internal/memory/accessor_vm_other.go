//go:build !linux

package memory

import "fmt"

// VM is only available on linux.
type VM struct {
	PID int
}

func NewVM(pid string) (*VM, error) {
	return nil, fmt.Errorf("vm accessor: %w: process_vm_readv is linux only", ErrNotAccessible)
}

func (v *VM) ReadExact(addr uint64, n int) ([]byte, error) {
	return nil, fmt.Errorf("read %#x: %w", addr, ErrNotAccessible)
}

func (v *VM) WriteExact(addr uint64, data []byte) error {
	return fmt.Errorf("write %#x: %w", addr, ErrNotAccessible)
}
