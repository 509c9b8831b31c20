package memory

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"kunai/internal/logflags"
)

// ErrEmptyPattern is returned by Scan when there is nothing to search for.
var ErrEmptyPattern = errors.New("empty search pattern")

// Match is one occurrence of a pattern. Start and End are absolute
// addresses. Region indexes the Map the scan ran over; it is a lookup key
// only and is meaningless once that Map is replaced.
type Match struct {
	Start   uint64
	End     uint64
	Value   []byte
	Display string
	Region  int
}

// Len returns the number of bytes covered by the match.
func (m Match) Len() int { return int(m.End - m.Start) }

// RegionFailure records a region whose contents could not be read.
type RegionFailure struct {
	Region int
	Err    error
}

// ScanResult is the outcome of one full scan.
type ScanResult struct {
	Matches []Match
	// Failures lists regions that were skipped because they could not be read.
	Failures []RegionFailure
	// Dropped counts occurrences whose confirmation read failed.
	Dropped int
}

// Scanner searches the scannable regions of a Map for a byte pattern.
type Scanner struct {
	Mem Accessor
	// MaxRegionSize skips larger regions. Zero means no limit.
	MaxRegionSize uint64
	Log           *logrus.Entry
}

// NewScanner returns a Scanner reading through mem.
func NewScanner(mem Accessor) *Scanner {
	return &Scanner{Mem: mem, Log: logflags.ScanLogger()}
}

// Scan reads every region with ShouldScan set, in map order, and returns all
// non-overlapping occurrences of pattern. A region that cannot be read is
// recorded in Failures and the scan moves on. Each occurrence is read again
// from the target before it is reported so Value reflects memory at report
// time; occurrences whose re-read fails are dropped.
func (s *Scanner) Scan(m Map, pattern []byte) (ScanResult, error) {
	var res ScanResult
	if len(pattern) == 0 {
		return res, ErrEmptyPattern
	}
	log := s.Log
	if log == nil {
		log = logflags.ScanLogger()
	}

	for _, idx := range m.Scannable() {
		region := m[idx]
		rlog := log.WithField("region", region.String())

		size := region.Size()
		if s.MaxRegionSize > 0 && size > s.MaxRegionSize {
			err := fmt.Errorf("region of %d bytes exceeds limit of %d", size, s.MaxRegionSize)
			rlog.Debug(err)
			res.Failures = append(res.Failures, RegionFailure{Region: idx, Err: err})
			continue
		}
		if size > math.MaxInt {
			err := fmt.Errorf("region of %d bytes is too large to buffer", size)
			rlog.Debug(err)
			res.Failures = append(res.Failures, RegionFailure{Region: idx, Err: err})
			continue
		}

		buf, err := s.Mem.ReadExact(region.Start, int(size))
		if err != nil {
			rlog.Debugf("unreadable: %v", err)
			res.Failures = append(res.Failures, RegionFailure{Region: idx, Err: err})
			continue
		}

		for _, off := range Occurrences(buf, pattern) {
			start := region.Start + uint64(off)
			value, err := s.Mem.ReadExact(start, len(pattern))
			if err != nil {
				rlog.WithField("addr", fmt.Sprintf("%#x", start)).Debugf("re-read failed: %v", err)
				res.Dropped++
				continue
			}
			res.Matches = append(res.Matches, Match{
				Start:   start,
				End:     start + uint64(len(pattern)),
				Value:   value,
				Display: Display(value),
				Region:  idx,
			})
		}
	}

	log.Debugf("scan for %d-byte pattern: %d matches, %d regions failed, %d dropped",
		len(pattern), len(res.Matches), len(res.Failures), res.Dropped)
	return res, nil
}

// Occurrences returns the offsets of all non-overlapping occurrences of
// pattern in buf, leftmost first.
func Occurrences(buf, pattern []byte) []int {
	if len(pattern) == 0 {
		return nil
	}
	var out []int
	base := 0
	for {
		i := bytes.Index(buf[base:], pattern)
		if i < 0 {
			return out
		}
		out = append(out, base+i)
		base += i + len(pattern)
	}
}
