// Package memtest provides an in-memory address space implementing
// memory.Accessor for tests.
package memtest

import (
	"fmt"

	"kunai/internal/memory"
)

type segment struct {
	start uint64
	data  []byte
}

// Space is a sparse fake address space. Reads and writes must fall entirely
// inside one mapped segment.
type Space struct {
	segs []*segment

	// FailRead makes every read starting at one of these addresses fail.
	FailRead map[uint64]error
	// FailWrite makes every write fail with this error.
	FailWrite error

	Reads  []Op
	Writes []Op
}

// Op records one call made against the Space.
type Op struct {
	Addr uint64
	Len  int
}

// New returns an empty address space.
func New() *Space {
	return &Space{FailRead: make(map[uint64]error)}
}

// Map backs [start, start+len(data)) with a copy of data.
func (s *Space) Map(start uint64, data []byte) {
	s.segs = append(s.segs, &segment{start: start, data: append([]byte(nil), data...)})
}

// Bytes returns a copy of n bytes at addr, or nil if unmapped.
func (s *Space) Bytes(addr uint64, n int) []byte {
	seg := s.find(addr, n)
	if seg == nil {
		return nil
	}
	off := addr - seg.start
	return append([]byte(nil), seg.data[off:off+uint64(n)]...)
}

func (s *Space) find(addr uint64, n int) *segment {
	for _, seg := range s.segs {
		end := seg.start + uint64(len(seg.data))
		if addr >= seg.start && addr+uint64(n) <= end {
			return seg
		}
	}
	return nil
}

func (s *Space) ReadExact(addr uint64, n int) ([]byte, error) {
	s.Reads = append(s.Reads, Op{Addr: addr, Len: n})
	if err := s.FailRead[addr]; err != nil {
		return nil, err
	}
	seg := s.find(addr, n)
	if seg == nil {
		return nil, fmt.Errorf("read %#x: %w: unmapped", addr, memory.ErrShortIO)
	}
	off := addr - seg.start
	return append([]byte(nil), seg.data[off:off+uint64(n)]...), nil
}

func (s *Space) WriteExact(addr uint64, data []byte) error {
	s.Writes = append(s.Writes, Op{Addr: addr, Len: len(data)})
	if s.FailWrite != nil {
		return s.FailWrite
	}
	seg := s.find(addr, len(data))
	if seg == nil {
		return fmt.Errorf("write %#x: %w: unmapped", addr, memory.ErrShortIO)
	}
	copy(seg.data[addr-seg.start:], data)
	return nil
}

var _ memory.Accessor = (*Space)(nil)
