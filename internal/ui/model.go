package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobanhawi/duscan/internal/drives"
	"github.com/mobanhawi/duscan/internal/scanner"
)

// Node is a local alias for the scanner node.
type Node = scanner.Node

// AppState controls what the model is showing.
type AppState int

const (
	// StatePicking lists mounted volumes when no path argument was given.
	StatePicking AppState = iota
	// StateScanning is the live scanning progress view.
	StateScanning
	// StateBrowsing is the interactive tree browser.
	StateBrowsing
	// StateError displays any unrecoverable errors.
	StateError
)

// progressInterval is the observer cadence for the live counters.
const progressInterval = 100 * time.Millisecond

// volumesMsg delivers the volume list for the picker.
type volumesMsg struct {
	vols []drives.Volume
	err  error
}

// scanDoneMsg is sent when scanning completes.
type scanDoneMsg struct {
	root *Node
}

// progressTickMsg re-renders the counters while a scan runs.
type progressTickMsg time.Time

// Model is the Bubble Tea application model.
type Model struct {
	state AppState

	// Picker state
	volumes   []drives.Volume
	volCursor int
	volErr    error

	// Scan state
	rootPath string
	workers  int
	progress *scanner.Progress

	// Navigation state; current dir = stack top, root when empty.
	root       *Node
	stack      []*Node
	cursor     int
	sortByName bool

	scanErr error

	// UI dimensions
	width  int
	height int

	// Widgets
	sp spinner.Model
}

// New constructs a model. An empty rootPath opens the volume picker first;
// otherwise scanning starts immediately.
func New(rootPath string, workers int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleScanning

	state := StateScanning
	if rootPath == "" {
		state = StatePicking
	}
	return Model{
		state:    state,
		rootPath: rootPath,
		workers:  workers,
		progress: scanner.NewProgress(),
		sp:       sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.state == StatePicking {
		return tea.Batch(m.sp.Tick, loadVolumes)
	}
	return tea.Batch(m.sp.Tick, startScan(m.rootPath, m.workers, m.progress), progressTick())
}

// loadVolumes lists mounted volumes for the picker.
func loadVolumes() tea.Msg {
	vols, err := drives.List()
	return volumesMsg{vols: vols, err: err}
}

// startScan runs the scanner in the background; the model polls m.progress
// until the done message arrives.
func startScan(root string, workers int, p *scanner.Progress) tea.Cmd {
	return func() tea.Msg {
		node := scanner.New(workers).Scan(context.Background(), root, p)
		return scanDoneMsg{root: node}
	}
}

// progressTick schedules the next counter refresh.
func progressTick() tea.Cmd {
	return tea.Tick(progressInterval, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

// currentDir returns the directory currently being browsed.
func (m *Model) currentDir() *Node {
	if len(m.stack) == 0 {
		return m.root
	}
	return m.stack[len(m.stack)-1]
}

// visibleChildren returns the children of the current dir.
func (m *Model) visibleChildren() []*Node {
	d := m.currentDir()
	if d == nil {
		return nil
	}
	return d.Children
}

// selected returns the currently highlighted node (may be nil).
func (m *Model) selected() *Node {
	children := m.visibleChildren()
	if len(children) == 0 || m.cursor >= len(children) {
		return nil
	}
	return children[m.cursor]
}

// clampCursor ensures the cursor is within bounds.
func (m *Model) clampCursor() {
	n := len(m.visibleChildren())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
