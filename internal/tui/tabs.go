package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tabActiveMsg is emitted after the active tab changes.
type tabActiveMsg int

// tabsModel is a reusable horizontal tab bar.
//
// Visual style:
//
//	Commands (3)  │  Agents (2)
//	────────────
type tabsModel struct {
	tabs      []string // labels including counts, e.g. "Commands (3)"
	activeTab int
}

func newTabsModel(labels []string) tabsModel {
	return tabsModel{tabs: labels}
}

func (m tabsModel) setLabels(labels []string) tabsModel {
	m.tabs = labels
	if m.activeTab >= len(labels) {
		m.activeTab = 0
	}
	return m
}

// update handles Tab / Shift+Tab to cycle through tabs.
// Returns the updated model, an optional command, and whether the key was consumed.
// blocked should be true when the parent wants to prevent tab switching (e.g. during filter mode).
func (m tabsModel) update(msg tea.Msg, blocked bool) (tabsModel, tea.Cmd, bool) {
	if blocked {
		return m, nil, false
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}

	n := len(m.tabs)
	if n == 0 {
		return m, nil, false
	}

	switch {
	case key.Matches(kmsg, keys.Tab):
		m.activeTab = (m.activeTab + 1) % n
		return m, func() tea.Msg { return tabActiveMsg(m.activeTab) }, true

	case key.Matches(kmsg, keys.ShiftTab):
		m.activeTab = (m.activeTab - 1 + n) % n
		return m, func() tea.Msg { return tabActiveMsg(m.activeTab) }, true
	}

	return m, nil, false
}

// view renders the tab bar as a single line plus an underline below the
// active tab.
func (m tabsModel) view() string {
	if len(m.tabs) == 0 {
		return ""
	}

	const indent = "  "
	sep := indent + tabSeparatorStyle.Render("│") + indent

	var b strings.Builder
	b.WriteString(indent)
	offset := lipgloss.Width(indent)
	activeW := 0
	for i, label := range m.tabs {
		if i > 0 {
			b.WriteString(sep)
		}
		w := lipgloss.Width(label)
		switch {
		case i < m.activeTab:
			offset += w + lipgloss.Width(sep)
		case i == m.activeTab:
			activeW = w
		}
		if i == m.activeTab {
			b.WriteString(tabActiveStyle.Render(label))
		} else {
			b.WriteString(tabInactiveStyle.Render(label))
		}
	}

	underline := strings.Repeat(" ", offset) +
		tabUnderlineStyle.Render(strings.Repeat("─", activeW))

	return b.String() + "\n" + underline
}
