package memory

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var (
	// ErrNotAccessible is returned when the target process has exited or the
	// caller lacks permission to open its maps or memory.
	ErrNotAccessible = errors.New("process memory not accessible")

	// ErrShortIO is returned when fewer bytes were transferred than requested.
	ErrShortIO = errors.New("short memory transfer")
)

// LineError describes a region table line that could not be parsed. Such
// lines are skipped; the error is only reported to diagnostics.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("maps line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// accessError classifies an open/seek/transfer failure. Missing processes and
// permission problems become ErrNotAccessible; everything else is returned
// wrapped as-is.
func accessError(op string, addr uint64, err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.ESRCH) || errors.Is(err, syscall.EPERM) {
		return fmt.Errorf("%s %#x: %w: %v", op, addr, ErrNotAccessible, err)
	}
	return fmt.Errorf("%s %#x: %w", op, addr, err)
}

func shortIO(op string, addr uint64, got, want int, cause error) error {
	if cause != nil {
		return fmt.Errorf("%s %#x: %w: %d of %d bytes: %v", op, addr, ErrShortIO, got, want, cause)
	}
	return fmt.Errorf("%s %#x: %w: %d of %d bytes", op, addr, ErrShortIO, got, want)
}
