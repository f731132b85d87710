package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ccpilot/internal/core"
)

// browserTab indexes the entity kind tabs.
type browserTab int

const (
	tabCommands browserTab = iota
	tabAgents
	tabSkills
	tabMemory
	tabMCP
	tabPlugins
	tabHooks
)

// browserModel is the main view: a tab bar over the entity kinds and a
// filterable list of the active kind's entries.
type browserModel struct {
	width  int
	height int

	tabs tabsModel
	list list.Model

	// Data (pushed from App).
	snap *snapshot
}

func newBrowserModel() browserModel {
	d := newEntityDelegate()
	l := list.New(nil, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetShowPagination(false)

	return browserModel{
		tabs: newTabsModel(nil),
		list: l,
	}
}

func (m browserModel) setSize(width, height int) browserModel {
	m.width = width
	m.height = height
	// List sizing happens dynamically in view() via render-then-measure.
	m.list.SetSize(width, max(1, height))
	return m
}

func (m browserModel) setData(snap *snapshot) browserModel {
	m.snap = snap
	m.tabs = m.tabs.setLabels(m.tabLabels())
	m.list.SetItems(m.activeItems())
	return m
}

func (m browserModel) tabLabels() []string {
	if m.snap == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("Commands (%d)", len(m.snap.commands)),
		fmt.Sprintf("Agents (%d)", len(m.snap.agents)),
		fmt.Sprintf("Skills (%d)", len(m.snap.skills)),
		fmt.Sprintf("Memory (%d)", len(m.snap.memory)),
		fmt.Sprintf("MCP (%d)", len(m.snap.servers)),
		fmt.Sprintf("Plugins (%d)", len(m.snap.plugins)),
		fmt.Sprintf("Hooks (%d)", len(m.snap.hooks)),
	}
}

func (m browserModel) activeItems() []list.Item {
	if m.snap == nil {
		return nil
	}
	switch browserTab(m.tabs.activeTab) {
	case tabCommands:
		return viewsToItems(m.snap.commands)
	case tabAgents:
		return viewsToItems(m.snap.agents)
	case tabSkills:
		return viewsToItems(m.snap.skills)
	case tabMemory:
		return viewsToItems(m.snap.memory)
	case tabMCP:
		return serversToItems(m.snap.servers)
	case tabPlugins:
		return pluginsToItems(m.snap.plugins)
	case tabHooks:
		return hooksToItems(m.snap.hooks)
	}
	return nil
}

func (m browserModel) update(msg tea.Msg, app *App) (browserModel, tea.Cmd) {
	// Tab switching first. Blocked while the filter input is open so tab
	// keystrokes land in the filter.
	var tabCmd tea.Cmd
	var consumed bool
	m.tabs, tabCmd, consumed = m.tabs.update(msg, m.list.SettingFilter())
	if consumed {
		m.list.ResetFilter()
		m.list.Select(0)
		m.list.SetItems(m.activeItems())
		return m, tabCmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys while filtering.
		if m.list.SettingFilter() {
			break
		}

		switch {
		case key.Matches(msg, keys.Toggle):
			return m, m.toggleSelected(app)

		case key.Matches(msg, keys.Enter):
			return m, m.openPreview(app)

		case key.Matches(msg, keys.Refresh):
			return m, app.reload()
		}
	}

	// Forward everything else to the list (j/k, filtering, paging).
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleSelected flips the enablement of the selected entry and reloads.
func (m browserModel) toggleSelected(app *App) tea.Cmd {
	item := m.list.SelectedItem()
	if item == nil {
		return nil
	}

	switch it := item.(type) {
	case entityItem:
		view := it.view
		if !view.Controllable || view.Authoring == nil {
			return warnCmd("cannot toggle: plugin-provided entry")
		}
		def := *view.Authoring
		disable := view.State == core.StateEnabled
		return app.mutate(
			toggleLabel(view.Name, disable),
			func() error { return app.deps.Toggler.SetDisabled(def, disable) },
		)

	case serverItem:
		server := it.server
		if !server.Controllable {
			return warnCmd("cannot toggle: plugin-provided server")
		}
		disable := server.State == core.StateEnabled
		return app.mutate(
			toggleLabel(server.Name, disable),
			func() error {
				return app.deps.Toggler.SetMCPServerDisabled(server, app.deps.Project, disable)
			},
		)

	case pluginItem:
		plugin := it.plugin
		enable := !plugin.Enabled
		label := "Disabled " + plugin.Name
		if enable {
			label = "Enabled " + plugin.Name
		}
		return app.mutate(label, func() error {
			return app.deps.Toggler.SetPluginEnabled(plugin, enable)
		})

	case hookItem:
		return warnCmd("hooks are read-only")
	}

	return nil
}

func toggleLabel(name string, disable bool) string {
	if disable {
		return "Disabled " + name
	}
	return "Enabled " + name
}

// openPreview shows the selected entry's content in the preview overlay.
func (m browserModel) openPreview(app *App) tea.Cmd {
	item := m.list.SelectedItem()
	if item == nil {
		return nil
	}

	switch it := item.(type) {
	case entityItem:
		view := it.view
		var content string
		if view.Authoring != nil {
			content = view.Authoring.Content
		} else if len(view.Definitions) > 0 {
			content = view.Definitions[0].Content
		}
		if strings.TrimSpace(content) == "" {
			return warnCmd("nothing to preview")
		}
		return func() tea.Msg {
			return openPreviewMsg{title: view.Name, content: content}
		}

	case serverItem:
		server := it.server
		if len(server.Config) == 0 {
			return warnCmd("nothing to preview")
		}
		// Wrap the raw config in a fence so glamour renders it as JSON.
		content := "```json\n" + string(server.Config) + "\n```"
		return func() tea.Msg {
			return openPreviewMsg{title: server.Name, content: content}
		}
	}

	return nil
}

func (m browserModel) view() string {
	if m.snap == nil {
		return mutedStyle.Render("  Loading...")
	}

	// --- Render-then-measure: render fixed chrome first, then size the list. ---

	tabBar := m.tabs.view() + "\n"

	var footer string
	if m.snap.project != "" {
		footer = "  " + mutedStyle.Render("project: "+m.snap.project)
	} else {
		footer = "  " + mutedStyle.Render("no project context")
	}
	if m.snap.status.State == core.SwitchOverridden && m.snap.status.Profile != nil {
		footer += "  " + warningStyle.Render("profile: "+m.snap.status.Profile.Title)
	}
	footerBlock := "\n\n" + footer

	count := len(m.list.Items())

	chromeH := lipgloss.Height(tabBar) + lipgloss.Height(footerBlock)

	// DefaultDelegate renders 2 lines per item plus 1 spacing line. The list
	// internally reserves a line for its (hidden) title bar, so add it back
	// when computing the fit.
	if count > 0 {
		maxH := m.height - chromeH
		if maxH < 1 {
			maxH = 1
		}
		listH := count*3 + 1
		if listH > maxH {
			listH = maxH
		}
		m.list.SetSize(m.width, listH)
	}

	var b strings.Builder
	b.WriteString(tabBar)

	if count == 0 {
		b.WriteString("\n" + mutedStyle.Render("  Nothing here"))
	} else {
		b.WriteString(m.list.View())
	}

	b.WriteString(footerBlock)

	return b.String()
}
