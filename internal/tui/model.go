package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"kunai/internal/logflags"
	"kunai/internal/proc"
	"kunai/internal/session"
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	NewSession() *session.Session
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("57"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("57"))
	statusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	popupStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginTop(1)
)

// Model represents the Bubble Tea state. The session owns every piece of
// workflow state; the model only translates keys and renders.
type Model struct {
	sess *session.Session
	log  *logrus.Entry

	width  int
	height int

	// first visible row of each list, kept across frames so the cursor
	// stays on screen
	offsets map[string]int
}

// New wraps an existing session.
func New(sess *session.Session) *Model {
	return &Model{
		sess:    sess,
		log:     logflags.TUILogger(),
		width:   80,
		height:  24,
		offsets: make(map[string]int),
	}
}

// Run starts a session and the Bubble Tea program. A non-empty pid skips
// task selection.
func Run(ctrl Controller, pid string) error {
	sess := ctrl.NewSession()
	if pid != "" {
		sess.Dispatch(session.SelectTask{Task: findTask(sess.Tasks(), pid)})
	}
	prog := tea.NewProgram(New(sess), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

func findTask(l *session.TaskList, pid string) proc.Task {
	for i := 0; i < l.Len(); i++ {
		if t := l.At(i); t.PID == pid {
			return t
		}
	}
	return proc.Task{PID: pid}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		ev, ok := eventFor(m.sess.State(), m.sess.Tasks().Filtering(), msg)
		if !ok {
			return m, nil
		}
		if !m.sess.Dispatch(ev) {
			m.log.Debug("session ended")
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	switch m.sess.State() {
	case session.TaskSelect:
		m.viewTasks(&b)
	case session.Search:
		m.viewSearch(&b)
	case session.MapList:
		m.viewMaps(&b)
	case session.ValueEdit:
		m.viewSearch(&b)
		m.viewEditor(&b)
	}

	if status := m.sess.Status(); status != "" {
		style := statusStyle
		if isFailure(status) {
			style = errStyle
		}
		b.WriteString(style.Render(status))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render(helpFor(m.sess.State(), m.sess.Tasks().Filtering())))
	return b.String()
}

func (m *Model) viewTasks(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Select a task"))
	b.WriteByte('\n')

	tasks := m.sess.Tasks()
	mode, text := tasks.Filter()
	switch mode {
	case session.FilterNone:
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d tasks", tasks.Len())))
	default:
		b.WriteString(promptStyle.Render(mode.String()+" filter: ") + text + "_")
	}
	b.WriteByte('\n')

	nameWidth := 20
	cols := []table.Column{
		{Title: "PID", Width: 8},
		{Title: "Name", Width: nameWidth},
		{Title: "State", Width: 14},
		{Title: "Command", Width: m.remaining(8 + nameWidth + 14)},
	}
	rows := make([]table.Row, 0, tasks.Len())
	for i := 0; i < tasks.Len(); i++ {
		t := tasks.At(i)
		rows = append(rows, table.Row{t.PID, t.Name, t.State, t.Cmdline})
	}
	cursor, ok := tasks.Selection()
	b.WriteString(m.table("tasks", cols, rows, cursor, ok))
	b.WriteByte('\n')
}

func (m *Model) viewSearch(b *strings.Builder) {
	task := m.sess.Task()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Memory of %s (pid %s)", valueOrDash(task.Name), task.PID)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d regions, %d selected", len(m.sess.Regions()), len(m.sess.Regions().Scannable()))))
	b.WriteByte('\n')
	b.WriteString(promptStyle.Render("Search: ") + m.sess.Pattern())
	if m.sess.State() == session.Search {
		b.WriteString("_")
	}
	b.WriteByte('\n')

	cols := []table.Column{
		{Title: "Address", Width: 18},
		{Title: "Len", Width: 5},
		{Title: "Value", Width: 24},
		{Title: "Region", Width: m.remaining(18 + 5 + 24)},
	}
	matches := m.sess.Matches()
	rows := make([]table.Row, 0, len(matches))
	for _, mt := range matches {
		region := ""
		if r, ok := m.sess.RegionOf(mt); ok {
			region = r.String()
		}
		rows = append(rows, table.Row{fmt.Sprintf("%#x", mt.Start), fmt.Sprint(mt.Len()), mt.Display, region})
	}
	cursor, ok := m.sess.MatchSelection()
	b.WriteString(m.table("matches", cols, rows, cursor, ok))
	b.WriteByte('\n')
}

func (m *Model) viewMaps(b *strings.Builder) {
	task := m.sess.Task()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Regions of %s (pid %s)", valueOrDash(task.Name), task.PID)))
	b.WriteByte('\n')

	cols := []table.Column{
		{Title: "Scan", Width: 4},
		{Title: "Range", Width: 34},
		{Title: "Perms", Width: 5},
		{Title: "Size", Width: 10},
		{Title: "Name", Width: m.remaining(4 + 34 + 5 + 10)},
	}
	regions := m.sess.Regions()
	rows := make([]table.Row, 0, len(regions))
	for _, r := range regions {
		mark := " "
		if r.ShouldScan {
			mark = "✓"
		}
		name := r.Name
		if r.Anonymous() {
			name = "[anon]"
		}
		rows = append(rows, table.Row{mark, fmt.Sprintf("%x-%x", r.Start, r.End), r.Perms, humanSize(r.Size()), name})
	}
	cursor, ok := m.sess.MapSelection()
	b.WriteString(m.table("maps", cols, rows, cursor, ok))
	b.WriteByte('\n')
}

func (m *Model) viewEditor(b *strings.Builder) {
	mt, ok := m.sess.SelectedMatch()
	if !ok {
		return
	}
	detail := fmt.Sprintf(
		"address=%#x\ncurrent=%s\nnew=%s_",
		mt.Start,
		mt.Display,
		m.sess.EditBuffer(),
	)
	b.WriteString(popupStyle.Render(detail))
	b.WriteByte('\n')
}

// table renders a read-only bubbles table with the session's cursor. Only
// the window of rows around the cursor is handed to the table, so the
// highlighted row is always drawn. An unset selection renders without a
// highlighted row.
func (m *Model) table(list string, cols []table.Column, rows []table.Row, cursor int, selected bool) string {
	height := m.tableHeight()
	// header line plus its bottom border
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	off := scrollOffset(m.offsets[list], cursor, selected, len(rows), visible)
	m.offsets[list] = off
	window := rows[off:min(off+visible, len(rows))]

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(window),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	if selected {
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)
		cursor -= off
	} else {
		s.Selected = lipgloss.NewStyle()
		cursor = 0
	}
	t.SetStyles(s)
	t.SetCursor(cursor)
	return t.View()
}

// scrollOffset moves the first visible row the least amount needed to keep
// cursor inside a window of visible rows out of n.
func scrollOffset(off, cursor int, selected bool, n, visible int) int {
	if selected {
		if cursor < off {
			off = cursor
		}
		if cursor >= off+visible {
			off = cursor - visible + 1
		}
	}
	if off > n-visible {
		off = n - visible
	}
	if off < 0 {
		off = 0
	}
	return off
}

func (m *Model) tableHeight() int {
	h := m.height - 8
	if m.sess.State() == session.ValueEdit {
		h -= 5
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) remaining(used int) int {
	w := m.width - used - 8
	if w < 10 {
		w = 10
	}
	return w
}

func helpFor(state session.State, filtering bool) string {
	switch state {
	case session.TaskSelect:
		if filtering {
			return "Commands: type to filter • ↑/↓ move • enter select • esc clear filter"
		}
		return "Commands: ↑/k ↓/j move • enter select • / name filter • g pid filter • r refresh • q quit"
	case session.Search:
		return "Commands: type pattern • enter scan • ctrl+r rescan • ↑/↓ match • ctrl+e edit • tab regions • esc tasks"
	case session.MapList:
		return "Commands: ↑/k ↓/j move • enter/space toggle scan • tab/esc back"
	case session.ValueEdit:
		return "Commands: type value • enter write • esc/tab cancel"
	}
	return ""
}

func isFailure(status string) bool {
	for _, prefix := range []string{"Cannot", "Write failed", "Scan failed", "Listing tasks failed", "New value is"} {
		if strings.HasPrefix(status, prefix) {
			return true
		}
	}
	return false
}

func humanSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
