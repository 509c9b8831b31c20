package memory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMaps = `55d0c6a00000-55d0c6a2c000 r--p 00000000 08:02 1311241                    /usr/bin/bash
55d0c7e1f000-55d0c7f8a000 rw-p 00000000 00:00 0                          [heap]
7f1c2a000000-7f1c2a021000 rw-p 00000000 00:00 0
7f1c2b400000-7f1c2b401000 rw-s 00000000 00:05 2049                       /memfd:buf (deleted)
7ffd3c1b0000-7ffd3c1d1000 rw-p 00000000 00:00 0                          [stack]
`

func TestParseMapsValidLines(t *testing.T) {
	m, skipped, err := ParseMaps(strings.NewReader(sampleMaps))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped lines: %v", skipped)
	}
	if len(m) != 5 {
		t.Fatalf("expected 5 regions, got %d", len(m))
	}

	want := []Region{
		{Start: 0x55d0c6a00000, End: 0x55d0c6a2c000, Perms: "r--p", Name: "/usr/bin/bash", ShouldScan: true},
		{Start: 0x55d0c7e1f000, End: 0x55d0c7f8a000, Perms: "rw-p", Name: "[heap]", ShouldScan: true},
		{Start: 0x7f1c2a000000, End: 0x7f1c2a021000, Perms: "rw-p", Name: "", ShouldScan: true},
		{Start: 0x7f1c2b400000, End: 0x7f1c2b401000, Perms: "rw-s", Name: "/memfd:buf (deleted)", ShouldScan: true},
		{Start: 0x7ffd3c1b0000, End: 0x7ffd3c1d1000, Perms: "rw-p", Name: "[stack]", ShouldScan: true},
	}
	for i := range want {
		if m[i] != want[i] {
			t.Fatalf("region %d: got %+v want %+v", i, m[i], want[i])
		}
		if m[i].Start >= m[i].End {
			t.Fatalf("region %d violates start < end", i)
		}
	}
	if !m[2].Anonymous() {
		t.Fatal("expected region without pathname to be anonymous")
	}
	if m[0].Writable() || !m[0].Readable() {
		t.Fatalf("unexpected perms helpers for %q", m[0].Perms)
	}
}

func TestParseMapsSkipsInvalidLinesKeepingOrder(t *testing.T) {
	input := strings.Join([]string{
		"zzzz-1000 rw-p 00000000 00:00 0 [bad-hex]",
		"1000-2000 rw-p 00000000 00:00 0 first",
		"3000 rw-p 00000000 00:00 0 no-dash",
		"2000-3000 r-xp 00000000 00:00 0 second",
		"4000-5000 rw-p",
		"5000-5000 rw-p 00000000 00:00 0 empty",
		"6000-7000 rw-p 00000000 00:00 0",
		"7000-8000 rw-p 00000000 00:00 0 0x-not-hex-end-is-fine-name",
		"8000-9g00 rw-p 00000000 00:00 0 bad-end",
	}, "\n")

	m, skipped, err := ParseMaps(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 4 {
		t.Fatalf("expected 4 regions, got %d: %+v", len(m), m)
	}
	if len(skipped) != 5 {
		t.Fatalf("expected 5 skipped lines, got %d", len(skipped))
	}
	if m[0].Name != "first" || m[1].Name != "second" || m[2].Name != "" || m[3].Start != 0x7000 {
		t.Fatalf("unexpected order: %+v", m)
	}
	if skipped[0].Line != 1 || skipped[1].Line != 3 {
		t.Fatalf("unexpected skipped line numbers: %d, %d", skipped[0].Line, skipped[1].Line)
	}
}

func TestMapScannable(t *testing.T) {
	m := Map{
		{Start: 0, End: 1, ShouldScan: true},
		{Start: 1, End: 2, ShouldScan: false},
		{Start: 2, End: 3, ShouldScan: true},
	}
	got := m.Scannable()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("unexpected scannable indexes: %v", got)
	}
}

func TestMapReaderReadMaps(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "42"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "42", "maps"), []byte(sampleMaps+"garbage\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewMapReader(root).ReadMaps("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 5 {
		t.Fatalf("expected 5 regions, got %d", len(m))
	}
}

func TestMapReaderNotAccessible(t *testing.T) {
	m, err := NewMapReader(t.TempDir()).ReadMaps("999")
	if !errors.Is(err, ErrNotAccessible) {
		t.Fatalf("expected ErrNotAccessible, got %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil map, got %+v", m)
	}
}

func TestParseMapsSkipsOverlongLine(t *testing.T) {
	long := "7f0000000000-7f0000001000 rw-p 00000000 00:00 0 /" + strings.Repeat("x", maxLineLen+10)
	input := "1000-2000 rw-p 00000000 00:00 0 [heap]\n" +
		long + "\n" +
		"3000-4000 r--p 00000000 08:01 42 /usr/lib/libc.so\n"

	m, skipped, err := ParseMaps(strings.NewReader(input))
	if err != nil {
		t.Fatalf("an over-long line must not fail the parse: %v", err)
	}
	if len(m) != 2 || m[0].Name != "[heap]" || m[1].Name != "/usr/lib/libc.so" {
		t.Fatalf("unexpected regions: %+v", m)
	}
	if len(skipped) != 1 || skipped[0].Line != 2 {
		t.Fatalf("expected line 2 skipped, got %+v", skipped)
	}
}

func TestParseMapsLastLineWithoutNewline(t *testing.T) {
	m, skipped, err := ParseMaps(strings.NewReader("1000-2000 rw-p 00000000 00:00 0\r\n3000-4000 rw-p 00000000 00:00 0"))
	if err != nil || len(skipped) != 0 {
		t.Fatalf("unexpected err=%v skipped=%+v", err, skipped)
	}
	if len(m) != 2 || m[1].Start != 0x3000 || m[0].Name != "" {
		t.Fatalf("unexpected regions: %+v", m)
	}
}

type failingReader struct {
	data string
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.data == "" {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestParseMapsReadErrorKeepsParsedRegions(t *testing.T) {
	boom := errors.New("read interrupted")
	r := &failingReader{data: "1000-2000 rw-p 00000000 00:00 0 [heap]\n", err: boom}

	m, _, err := ParseMaps(r)
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if len(m) != 1 || m[0].Start != 0x1000 {
		t.Fatalf("expected parsed regions to survive, got %+v", m)
	}
}

func TestMapReaderSkipsOverlongLine(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "9"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "1000-2000 rw-p 00000000 00:00 0 [heap]\n" + strings.Repeat("z", 2*maxLineLen) + "\n"
	if err := os.WriteFile(filepath.Join(root, "9", "maps"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewMapReader(root).ReadMaps("9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 1 || m[0].Name != "[heap]" {
		t.Fatalf("unexpected regions: %+v", m)
	}
}
