package memory

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Accessor reads and writes a target process's memory at absolute virtual
// addresses. Every call is independent: no cursor or handle survives between
// calls, so interleaving operations across regions cannot drift.
type Accessor interface {
	// ReadExact returns exactly n bytes starting at addr, or an error.
	ReadExact(addr uint64, n int) ([]byte, error)
	// WriteExact stores all of data at addr, or returns an error. On error
	// the caller must not assume any byte was or was not written.
	WriteExact(addr uint64, data []byte) error
}

// ProcMem accesses memory through the <root>/<pid>/mem pseudo-file. The file
// is opened for the duration of a single call and always closed before the
// call returns. Reads and writes use positional I/O at the absolute address.
type ProcMem struct {
	Path string
}

// NewProcMem returns an accessor for pid under the procfs root.
func NewProcMem(root, pid string) *ProcMem {
	if root == "" {
		root = "/proc"
	}
	return &ProcMem{Path: filepath.Join(root, pid, "mem")}
}

func (p *ProcMem) ReadExact(addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read %#x: negative length %d", addr, n)
	}
	off, err := fileOffset(addr, n)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	f, err := os.Open(p.Path)
	if err != nil {
		return nil, accessError("open for read", addr, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	got, err := f.ReadAt(buf, off)
	if got == n {
		return buf, nil
	}
	if got == 0 && isAccessError(err) {
		return nil, accessError("read", addr, err)
	}
	return nil, shortIO("read", addr, got, n, err)
}

func (p *ProcMem) WriteExact(addr uint64, data []byte) error {
	off, err := fileOffset(addr, len(data))
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	f, err := os.OpenFile(p.Path, os.O_WRONLY, 0)
	if err != nil {
		return accessError("open for write", addr, err)
	}

	wrote, werr := f.WriteAt(data, off)
	cerr := f.Close()
	if wrote != len(data) {
		if wrote == 0 && isAccessError(werr) {
			return accessError("write", addr, werr)
		}
		return shortIO("write", addr, wrote, len(data), werr)
	}
	if werr != nil {
		return fmt.Errorf("write %#x: %w", addr, werr)
	}
	if cerr != nil {
		return fmt.Errorf("write %#x: close: %w", addr, cerr)
	}
	return nil
}

// fileOffset converts a virtual address into a file offset. Addresses in the
// upper half of the 64-bit space do not fit in an off_t.
func fileOffset(addr uint64, n int) (int64, error) {
	if addr > math.MaxInt64 || uint64(n) > math.MaxInt64-addr {
		return 0, fmt.Errorf("%#x+%d: %w: address outside file offset range", addr, n, ErrNotAccessible)
	}
	return int64(addr), nil
}

func isAccessError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(accessError("", 0, err), ErrNotAccessible)
}
