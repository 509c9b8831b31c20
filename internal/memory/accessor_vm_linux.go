//go:build linux

package memory

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// VM accesses memory with process_vm_readv/process_vm_writev. There is no
// handle to scope: each call names the remote address explicitly. Unlike
// ProcMem it honours page protections, so writes to read-only pages fail.
type VM struct {
	PID int
}

// NewVM returns a VM accessor for the decimal pid string.
func NewVM(pid string) (*VM, error) {
	n, err := strconv.Atoi(pid)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid pid %q", pid)
	}
	return &VM{PID: n}, nil
}

func (v *VM) ReadExact(addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read %#x: negative length %d", addr, n)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(n)
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: n}}

	got, err := unix.ProcessVMReadv(v.PID, local, remote, 0)
	if got == n {
		return buf, nil
	}
	if got <= 0 && isAccessError(err) {
		return nil, accessError("read", addr, err)
	}
	if got < 0 {
		got = 0
	}
	return nil, shortIO("read", addr, got, n, err)
}

func (v *VM) WriteExact(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &data[0]}}
	local[0].SetLen(len(data))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(data)}}

	wrote, err := unix.ProcessVMWritev(v.PID, local, remote, 0)
	if wrote == len(data) {
		return nil
	}
	if wrote <= 0 && isAccessError(err) {
		return accessError("write", addr, err)
	}
	if wrote < 0 {
		wrote = 0
	}
	return shortIO("write", addr, wrote, len(data), err)
}
