package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case volumesMsg:
		if msg.err != nil {
			m.state = StateError
			m.scanErr = msg.err
			return m, nil
		}
		m.volumes = msg.vols
		m.volCursor = 0
		return m, nil

	case progressTickMsg:
		if m.state != StateScanning {
			return m, nil
		}
		// The tick only forces a re-render; the counters are read straight
		// off Progress in View.
		return m, progressTick()

	case scanDoneMsg:
		m.root = msg.root
		m.state = StateBrowsing
		m.cursor = 0
		m.stack = nil
		m.sortByName = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StatePicking:
		return m.handleKeyPicking(msg)
	case StateScanning:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case StateBrowsing:
		return m.handleKeyBrowsing(msg)
	case StateError:
		if msg.String() == "ctrl+c" || msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleKeyPicking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.volCursor > 0 {
			m.volCursor--
		}
	case "down", "j":
		if m.volCursor < len(m.volumes)-1 {
			m.volCursor++
		}
	case "enter":
		if m.volCursor < len(m.volumes) {
			m.rootPath = m.volumes[m.volCursor].Path
			m.state = StateScanning
			return m, tea.Batch(startScan(m.rootPath, m.workers, m.progress), progressTick())
		}
	}
	return m, nil
}

func (m Model) handleKeyBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visibleChildren())-1 {
			m.cursor++
		}
	case "right", "enter", "l":
		if sel := m.selected(); sel != nil && sel.IsDir {
			m.stack = append(m.stack, sel)
			m.cursor = 0
		}
	case "left", "backspace", "h":
		if len(m.stack) > 0 {
			m.stack = m.stack[:len(m.stack)-1]
			m.clampCursor()
		}
	case "s":
		m.toggleSort()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		if n := len(m.visibleChildren()); n > 0 {
			m.cursor = n - 1
		}
	}
	return m, nil
}

// toggleSort flips between size and name order. The sorts are recursive, so
// one call re-orders every directory in the tree.
func (m *Model) toggleSort() {
	if m.root == nil {
		return
	}
	m.sortByName = !m.sortByName
	if m.sortByName {
		m.root.SortByName()
	} else {
		m.root.SortBySize()
	}
	m.cursor = 0
}
