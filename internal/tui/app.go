package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/ipc"
)

// Source is the daemon surface the view polls and drives.
type Source interface {
	GetStatus() (*ipc.StatusData, error)
	GetTree(displayID uint64) ([]container.TreeEntry, error)
	Raise(windowID uint32) error
	Focus(windowID uint32) error
	SwitchLayout(displayID uint64, mode string, reorder bool) error
	MinimizeAll(displayID uint64) error
}

var _ Source = (*ipc.Client)(nil)

// snapshotMsg carries one poll of the daemon.
type snapshotMsg struct {
	displays []daemon.DisplayStatus
	tree     []container.TreeEntry
	err      error
}

type tickMsg time.Time

// actionMsg reports the outcome of a command sent to the daemon.
type actionMsg struct {
	what string
	err  error
}

var stackColumns = []table.Column{
	{Title: "ID", Width: 10},
	{Title: "Name", Width: 20},
	{Title: "Layer", Width: 6},
	{Title: "Type", Width: 18},
	{Title: "Mode", Width: 12},
	{Title: "Z", Width: 4},
	{Title: "Rect", Width: 22},
	{Title: "Vis", Width: 4},
	{Title: "Cov", Width: 4},
}

var displayColumns = []table.Column{
	{Title: "ID", Width: 6},
	{Title: "Name", Width: 12},
	{Title: "Layout", Width: 8},
	{Title: "Windows", Width: 8},
	{Title: "Focused", Width: 10},
	{Title: "Active", Width: 10},
	{Title: "Bounds", Width: 22},
}

// model is the root bubbletea model for the TUI.
type model struct {
	source   Source
	interval time.Duration

	activeTab Tab
	stack     table.Model
	screens   table.Model

	connected bool
	displays  []daemon.DisplayStatus
	tree      []container.TreeEntry
	message   string

	width  int
	height int
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62"))
	t.SetStyles(styles)
	return t
}

func newModel(source Source, interval time.Duration) model {
	if interval <= 0 {
		interval = time.Second
	}
	return model{
		source:    source,
		interval:  interval,
		activeTab: TabStack,
		stack:     newTable(stackColumns),
		screens:   newTable(displayColumns),
	}
}

func (m model) fetch() tea.Msg {
	status, err := m.source.GetStatus()
	if err != nil {
		return snapshotMsg{err: err}
	}
	tree, err := m.source.GetTree(0)
	if err != nil {
		return snapshotMsg{err: err}
	}
	return snapshotMsg{displays: status.Displays, tree: tree}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// act runs fn against the daemon and reports the outcome.
func act(what string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{what: what, err: fn()}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch, m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabStack
			return m, nil
		case "2":
			m.activeTab = TabDisplays
			return m, nil
		case "r":
			return m, m.fetch
		case "f":
			if id, ok := m.selectedWindow(); ok {
				return m, act(fmt.Sprintf("focus %d", id), func() error { return m.source.Focus(id) })
			}
			return m, nil
		case "u":
			if id, ok := m.selectedWindow(); ok {
				return m, act(fmt.Sprintf("raise %d", id), func() error { return m.source.Raise(id) })
			}
			return m, nil
		case "l":
			if d, ok := m.selectedDisplay(); ok {
				next := "tile"
				if d.Layout == "tile" {
					next = "cascade"
				}
				return m, act("layout "+next, func() error { return m.source.SwitchLayout(uint64(d.ID), next, false) })
			}
			return m, nil
		case "m":
			if d, ok := m.selectedDisplay(); ok {
				return m, act("minimize all", func() error { return m.source.MinimizeAll(uint64(d.ID)) })
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := m.contentHeight()
		m.stack.SetHeight(h)
		m.screens.SetHeight(h)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch, m.tick())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.message = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.message = ""
		m.displays = msg.displays
		m.tree = msg.tree
		m.stack.SetRows(stackRows(msg.tree))
		m.screens.SetRows(displayRows(msg.displays))
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.message = msg.what + ": " + msg.err.Error()
			return m, nil
		}
		m.message = ""
		return m, m.fetch
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabStack:
		m.stack, cmd = m.stack.Update(msg)
	case TabDisplays:
		m.screens, cmd = m.screens.Update(msg)
	}
	return m, cmd
}

// contentHeight returns the height available for the table.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1) + header (2)
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) selectedWindow() (uint32, bool) {
	if m.activeTab != TabStack || len(m.tree) == 0 {
		return 0, false
	}
	i := m.stack.Cursor()
	if i < 0 || i >= len(m.tree) {
		return 0, false
	}
	return m.tree[i].ID, true
}

// selectedDisplay is the highlighted display, or on the stack tab the
// display of the highlighted window.
func (m model) selectedDisplay() (daemon.DisplayStatus, bool) {
	switch m.activeTab {
	case TabDisplays:
		i := m.screens.Cursor()
		if i >= 0 && i < len(m.displays) {
			return m.displays[i], true
		}
	case TabStack:
		i := m.stack.Cursor()
		if i >= 0 && i < len(m.tree) {
			for _, d := range m.displays {
				if d.ID == m.tree[i].Display {
					return d, true
				}
			}
		}
	}
	return daemon.DisplayStatus{}, false
}

func stackRows(entries []container.TreeEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if e.Parent != 0 {
			name = "└ " + name
		}
		rows = append(rows, table.Row{
			strconv.FormatUint(uint64(e.ID), 10),
			name,
			e.Bucket,
			e.Type.String(),
			e.Mode.String(),
			strconv.Itoa(e.Z),
			fmt.Sprintf("%d,%d %dx%d", e.Rect.X, e.Rect.Y, e.Rect.Width, e.Rect.Height),
			yesNo(e.Visible),
			yesNo(e.Covered),
		})
	}
	return rows
}

func displayRows(displays []daemon.DisplayStatus) []table.Row {
	rows := make([]table.Row, 0, len(displays))
	for _, d := range displays {
		b := d.Bounds
		rows = append(rows, table.Row{
			strconv.FormatUint(uint64(d.ID), 10),
			d.Name,
			d.Layout,
			strconv.Itoa(d.Windows),
			strconv.FormatUint(uint64(d.Focused), 10),
			strconv.FormatUint(uint64(d.Active), 10),
			fmt.Sprintf("%d,%d %dx%d", b.X, b.Y, b.Width, b.Height),
		})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "-"
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, len(m.displays), len(m.tree), m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width, m.message)

	var content string
	switch m.activeTab {
	case TabStack:
		content = m.stack.View()
	case TabDisplays:
		content = m.screens.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
