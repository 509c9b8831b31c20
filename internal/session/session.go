package session

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"kunai/internal/logflags"
	"kunai/internal/memory"
	"kunai/internal/proc"
)

// Backend supplies the session with tasks, region tables and memory access.
type Backend interface {
	Tasks() ([]proc.Task, error)
	Maps(pid string) (memory.Map, error)
	Accessor(pid string) (memory.Accessor, error)
}

// Options tunes edit and scan policy.
type Options struct {
	// StrictEditLength rejects edits whose byte length differs from the
	// selected match. By default the write may widen or narrow the value.
	StrictEditLength bool
	// MaxRegionSize is passed to the scanner. Zero means no limit.
	MaxRegionSize uint64
}

// Session holds the whole interactive workflow state. All mutation goes
// through Dispatch; renderers only use the read accessors.
type Session struct {
	backend Backend
	opts    Options
	log     *logrus.Entry

	state State
	done  bool

	tasks TaskList

	task    proc.Task
	regions memory.Map
	mapSel  Selection

	pattern     string
	lastPattern string
	matches     []memory.Match
	matchSel    Selection

	editBuf string
	status  string
}

// New returns a session in TaskSelect with an empty task list.
func New(backend Backend, opts Options) *Session {
	return &Session{
		backend: backend,
		opts:    opts,
		log:     logflags.SessionLogger(),
		state:   TaskSelect,
	}
}

// Dispatch applies ev to the session. It returns false once the session has
// ended; every other outcome, including failures, leaves it running with a
// status message.
func (s *Session) Dispatch(ev Event) bool {
	if s.done {
		return false
	}
	from := s.state
	switch s.state {
	case TaskSelect:
		s.onTaskSelect(ev)
	case Search:
		s.onSearch(ev)
	case MapList:
		s.onMapList(ev)
	case ValueEdit:
		s.onValueEdit(ev)
	}
	if from != s.state {
		s.log.Debugf("%s -> %s on %T", from, s.state, ev)
	}
	return !s.done
}

func (s *Session) onTaskSelect(ev Event) {
	switch ev := ev.(type) {
	case Up:
		s.tasks.up()
	case Down:
		s.tasks.down()
	case Type:
		if s.tasks.Filtering() {
			mode, text := s.tasks.Filter()
			s.tasks.SetFilter(mode, text+ev.Text)
		}
	case Backspace:
		if s.tasks.Filtering() {
			mode, text := s.tasks.Filter()
			s.tasks.SetFilter(mode, trimLastRune(text))
		}
	case StartFilter:
		s.tasks.SetFilter(ev.Mode, "")
	case RefreshTasks:
		s.refreshTasks()
	case Submit:
		if t, ok := s.tasks.Selected(); ok {
			s.selectTask(t)
		}
	case SelectTask:
		s.selectTask(ev.Task)
	case Escape:
		if s.tasks.Filtering() {
			s.tasks.SetFilter(FilterNone, "")
			return
		}
		s.done = true
	}
}

func (s *Session) onSearch(ev Event) {
	switch ev := ev.(type) {
	case Up:
		s.matchSel.Up(len(s.matches))
	case Down:
		s.matchSel.Down(len(s.matches))
	case Type:
		s.pattern += ev.Text
	case Backspace:
		s.pattern = trimLastRune(s.pattern)
	case Submit:
		s.scan(s.pattern)
	case Rescan:
		pattern := s.lastPattern
		if pattern == "" {
			pattern = s.pattern
		}
		s.scan(pattern)
	case ToggleMaps:
		s.state = MapList
	case OpenEditor:
		m, ok := s.SelectedMatch()
		if !ok {
			s.status = "Select a match before editing"
			return
		}
		s.editBuf = m.Display
		s.state = ValueEdit
	case Escape:
		s.state = TaskSelect
	}
}

func (s *Session) onMapList(ev Event) {
	switch ev.(type) {
	case Up:
		s.mapSel.Up(len(s.regions))
	case Down:
		s.mapSel.Down(len(s.regions))
	case Submit:
		i, ok := s.mapSel.Index()
		if !ok || i >= len(s.regions) {
			return
		}
		s.regions[i].ShouldScan = !s.regions[i].ShouldScan
		verb := "excluded from"
		if s.regions[i].ShouldScan {
			verb = "included in"
		}
		s.status = fmt.Sprintf("Region %s %s scans", s.regions[i], verb)
	case ToggleMaps, Escape:
		s.state = Search
	}
}

func (s *Session) onValueEdit(ev Event) {
	switch ev := ev.(type) {
	case Type:
		s.editBuf += ev.Text
	case Backspace:
		s.editBuf = trimLastRune(s.editBuf)
	case Submit:
		s.writeEdit()
	case ToggleMaps, Escape:
		s.state = Search
	}
}

func (s *Session) refreshTasks() {
	tasks, err := s.backend.Tasks()
	if err != nil {
		s.status = fmt.Sprintf("Listing tasks failed: %v", err)
		tasks = nil
	}
	s.tasks.Replace(tasks)
}

// selectTask loads a fresh region table for t and resets everything that
// belonged to the previous task.
func (s *Session) selectTask(t proc.Task) {
	s.task = t
	s.matches = nil
	s.matchSel.Clear()
	s.mapSel.Clear()
	s.pattern = ""
	s.lastPattern = ""
	s.editBuf = ""
	s.status = ""

	regions, err := s.backend.Maps(t.PID)
	if err != nil {
		s.regions = nil
		s.status = fmt.Sprintf("Cannot read maps of pid %s: %v", t.PID, err)
		s.log.WithField("pid", t.PID).Warnf("maps: %v", err)
	} else {
		s.regions = regions
	}
	s.state = Search
}

// scan replaces the match list with a fresh scan of the scannable regions.
func (s *Session) scan(pattern string) {
	if pattern == "" {
		s.status = "Enter a search pattern first"
		return
	}
	s.matches = nil
	s.matchSel.Clear()
	s.lastPattern = pattern

	mem, err := s.backend.Accessor(s.task.PID)
	if err != nil {
		s.status = fmt.Sprintf("Cannot access memory of pid %s: %v", s.task.PID, err)
		return
	}
	sc := memory.NewScanner(mem)
	sc.MaxRegionSize = s.opts.MaxRegionSize
	sc.Log = logflags.ScanLogger().WithField("pid", s.task.PID)

	res, err := sc.Scan(s.regions, []byte(pattern))
	if err != nil {
		s.status = fmt.Sprintf("Scan failed: %v", err)
		return
	}
	s.matches = res.Matches
	s.status = scanStatus(pattern, res)
}

func scanStatus(pattern string, res memory.ScanResult) string {
	msg := fmt.Sprintf("%d match(es) for %q", len(res.Matches), pattern)
	if n := len(res.Failures); n > 0 {
		msg += fmt.Sprintf(", %d region(s) unreadable", n)
	}
	if res.Dropped > 0 {
		msg += fmt.Sprintf(", %d occurrence(s) vanished", res.Dropped)
	}
	return msg
}

// writeEdit stores the edit buffer at the selected match. The bytes come
// from the operator's text only, never from the displayed value. Match and
// map state are left untouched whatever the outcome.
func (s *Session) writeEdit() {
	m, ok := s.SelectedMatch()
	if !ok {
		s.status = "Selected match is gone"
		s.state = Search
		return
	}
	data := []byte(s.editBuf)
	if len(data) == 0 {
		s.status = "Nothing to write"
		return
	}
	if s.opts.StrictEditLength && len(data) != m.Len() {
		s.status = fmt.Sprintf("New value is %d bytes, match is %d bytes", len(data), m.Len())
		return
	}

	mem, err := s.backend.Accessor(s.task.PID)
	if err == nil {
		err = mem.WriteExact(m.Start, data)
	}
	log := s.log.WithFields(logrus.Fields{"pid": s.task.PID, "addr": fmt.Sprintf("%#x", m.Start), "len": len(data)})
	if err != nil {
		s.status = fmt.Sprintf("Write failed: %v", err)
		if errors.Is(err, memory.ErrNotAccessible) {
			s.status += " (process gone or permission denied)"
		}
		log.Warnf("write: %v", err)
	} else {
		s.status = fmt.Sprintf("Wrote %d byte(s) at %#x", len(data), m.Start)
		log.Info("write")
	}
	s.editBuf = ""
	s.state = Search
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// State returns the current screen.
func (s *Session) State() State { return s.state }

// Done reports whether the session has ended.
func (s *Session) Done() bool { return s.done }

// Tasks returns the task list. Callers must treat it as read-only.
func (s *Session) Tasks() *TaskList { return &s.tasks }

// Task returns the task selected last.
func (s *Session) Task() proc.Task { return s.task }

// Regions returns the current region table. Callers must not modify it.
func (s *Session) Regions() memory.Map { return s.regions }

// MapSelection returns the highlighted region index.
func (s *Session) MapSelection() (int, bool) { return s.mapSel.Index() }

// Pattern returns the search input buffer.
func (s *Session) Pattern() string { return s.pattern }

// Matches returns the current match list. Callers must not modify it.
func (s *Session) Matches() []memory.Match { return s.matches }

// MatchSelection returns the highlighted match index.
func (s *Session) MatchSelection() (int, bool) { return s.matchSel.Index() }

// SelectedMatch returns the highlighted match, if any.
func (s *Session) SelectedMatch() (memory.Match, bool) {
	i, ok := s.matchSel.Index()
	if !ok || i >= len(s.matches) {
		return memory.Match{}, false
	}
	return s.matches[i], true
}

// RegionOf returns the region a match was found in.
func (s *Session) RegionOf(m memory.Match) (memory.Region, bool) {
	if m.Region < 0 || m.Region >= len(s.regions) {
		return memory.Region{}, false
	}
	return s.regions[m.Region], true
}

// EditBuffer returns the pending new value.
func (s *Session) EditBuffer() string { return s.editBuf }

// Status returns the latest human-readable outcome or error, or "".
func (s *Session) Status() string { return s.status }
