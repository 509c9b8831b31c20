package memory

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"kunai/internal/logflags"
)

// Region is one contiguous span of a process's address space.
//
//	7ffffe15a000-7ffffe17c000 rw-p 00000000 00:00 0   [stack]
//	start        end          perms                    name
type Region struct {
	Start uint64
	End   uint64
	Perms string
	Name  string
	// ShouldScan marks the region for pattern scans. It defaults to true and
	// only the operator changes it.
	ShouldScan bool
}

// Size returns End - Start.
func (r Region) Size() uint64 { return r.End - r.Start }

// Contains reports whether [start, end) lies inside the region.
func (r Region) Contains(start, end uint64) bool {
	return r.Start <= start && start < end && end <= r.End
}

func (r Region) Readable() bool { return len(r.Perms) > 0 && r.Perms[0] == 'r' }

func (r Region) Writable() bool { return len(r.Perms) > 1 && r.Perms[1] == 'w' }

// Anonymous reports whether the region has no backing pathname.
func (r Region) Anonymous() bool { return r.Name == "" }

func (r Region) String() string {
	return fmt.Sprintf("%x-%x %s %s", r.Start, r.End, r.Perms, r.Name)
}

// Map is the ordered region table of one task, in file order.
type Map []Region

// Scannable returns the indexes of regions with ShouldScan set.
func (m Map) Scannable() []int {
	out := make([]int, 0, len(m))
	for i := range m {
		if m[i].ShouldScan {
			out = append(out, i)
		}
	}
	return out
}

// maxLineLen bounds a single region table line. Longer lines are skipped.
const maxLineLen = 1 << 20

// ParseMaps reads a region table. Lines that fail to parse, including lines
// longer than maxLineLen, are skipped and returned as LineErrors; they never
// abort the parse. The returned error is only set when reading r itself
// fails, and the regions parsed up to that point are still returned.
func ParseMaps(r io.Reader) (Map, []*LineError, error) {
	var (
		regions Map
		skipped []*LineError
	)
	br := bufio.NewReaderSize(r, 4096)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br)
		if err != nil && err != io.EOF {
			return regions, skipped, err
		}
		if err == io.EOF && len(raw) == 0 && !tooLong {
			break
		}
		lineNo++
		text := string(raw)
		switch {
		case tooLong:
			skipped = append(skipped, &LineError{Line: lineNo, Err: fmt.Errorf("line exceeds %d bytes", maxLineLen)})
		case strings.TrimSpace(text) == "":
		default:
			region, perr := parseLine(text)
			if perr != nil {
				skipped = append(skipped, &LineError{Line: lineNo, Text: text, Err: perr})
			} else {
				regions = append(regions, region)
			}
		}
		if err == io.EOF {
			break
		}
	}
	return regions, skipped, nil
}

// readLine returns the next line without its terminator. A line over
// maxLineLen is consumed whole and reported with tooLong set and no content.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxLineLen+1 {
				tooLong = true
				line = nil
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}

func parseLine(line string) (Region, error) {
	fields := strings.Fields(line)
	// address, perms, offset, dev, inode
	if len(fields) < 5 {
		return Region{}, fmt.Errorf("expected at least 5 fields, got %d", len(fields))
	}

	lo, hi, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Region{}, errors.New("address range has no '-'")
	}
	start, err := strconv.ParseUint(lo, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("start address: %w", err)
	}
	end, err := strconv.ParseUint(hi, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("end address: %w", err)
	}
	if start >= end {
		return Region{}, fmt.Errorf("empty range %x-%x", start, end)
	}

	return Region{
		Start:      start,
		End:        end,
		Perms:      fields[1],
		Name:       strings.Join(fields[5:], " "),
		ShouldScan: true,
	}, nil
}

// MapReader loads region tables from a procfs tree.
type MapReader struct {
	Root string
}

// NewMapReader returns a reader rooted at root ("/proc" when empty).
func NewMapReader(root string) *MapReader {
	if root == "" {
		root = "/proc"
	}
	return &MapReader{Root: root}
}

// ReadMaps parses <root>/<pid>/maps. If the table cannot be opened the error
// wraps ErrNotAccessible and the map is nil.
func (mr *MapReader) ReadMaps(pid string) (Map, error) {
	path := filepath.Join(mr.Root, pid, "maps")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrNotAccessible, err)
	}
	defer f.Close()

	regions, skipped, err := ParseMaps(f)
	log := logflags.MapsLogger().WithField("pid", pid)
	for _, le := range skipped {
		log.WithField("line", le.Line).Debugf("skipping region: %v", le.Err)
	}
	if err != nil {
		// a process exiting mid-read surfaces here
		return nil, fmt.Errorf("read %s: %w: %v", path, ErrNotAccessible, err)
	}
	log.Debugf("loaded %d regions (%d skipped)", len(regions), len(skipped))
	return regions, nil
}
