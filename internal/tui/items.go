package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/tidwall/gjson"

	"ccpilot/internal/core"
)

// stateBadge renders the colored status marker for an entity state.
func stateBadge(s core.State) string {
	switch s {
	case core.StateEnabled:
		return enabledStyle.Render("● enabled")
	case core.StateDisabled:
		return disabledStyle.Render("○ disabled")
	case core.StateRuntimeDisabled:
		return runtimeStyle.Render("◐ runtime-disabled")
	}
	return mutedStyle.Render(string(s))
}

// ---------------------------------------------------------------------------
// Entity items (commands, agents, skills, memory)
// ---------------------------------------------------------------------------

// entityItem wraps a resolved EffectiveView for the bubbles list.
// Implements list.DefaultItem (Title + Description + FilterValue).
type entityItem struct {
	view core.EffectiveView
}

func (i entityItem) Title() string {
	title := i.view.Name + "  " + stateBadge(i.view.State)
	if i.view.Err != nil {
		title += "  " + errorStyle.Render("(malformed)")
	}
	if !i.view.Controllable {
		title += "  " + mutedStyle.Render("(read-only)")
	}
	return title
}

func (i entityItem) Description() string {
	var parts []string
	if a := i.view.Authoring; a != nil {
		parts = append(parts, scopeBadgeStyle.Render(string(a.Scope)))
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	} else if len(i.view.Definitions) > 0 {
		d := i.view.Definitions[0]
		parts = append(parts, scopeBadgeStyle.Render(string(d.Scope)))
		if d.PluginName != "" {
			parts = append(parts, "plugin: "+d.PluginName)
		}
	}
	if n := len(i.view.Definitions); n > 1 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d definitions", n)))
	}
	if len(parts) == 0 {
		return "No description"
	}
	return strings.Join(parts, "  ")
}

func (i entityItem) FilterValue() string { return i.view.Name }

// viewsToItems converts resolved views to list items.
func viewsToItems(views []core.EffectiveView) []list.Item {
	items := make([]list.Item, len(views))
	for i, v := range views {
		items[i] = entityItem{view: v}
	}
	return items
}

// ---------------------------------------------------------------------------
// MCP server items
// ---------------------------------------------------------------------------

// serverItem wraps an MCPServerInfo for the bubbles list.
type serverItem struct {
	server core.MCPServerInfo
}

func (i serverItem) Title() string {
	title := i.server.Name + "  " + stateBadge(i.server.State)
	if i.server.Err != nil {
		title += "  " + errorStyle.Render("(malformed)")
	}
	if !i.server.Controllable {
		title += "  " + mutedStyle.Render("(read-only)")
	}
	return title
}

func (i serverItem) Description() string {
	parts := []string{
		scopeBadgeStyle.Render(string(i.server.Scope)),
		i.server.Source,
	}
	if i.server.PluginName != "" {
		parts = append(parts, "plugin: "+i.server.PluginName)
	}
	if i.server.DefinedIn != "" {
		parts = append(parts, mutedStyle.Render(i.server.DefinedIn))
	}
	return strings.Join(parts, "  ")
}

func (i serverItem) FilterValue() string { return i.server.Name }

func serversToItems(servers []core.MCPServerInfo) []list.Item {
	items := make([]list.Item, len(servers))
	for i, s := range servers {
		items[i] = serverItem{server: s}
	}
	return items
}

// ---------------------------------------------------------------------------
// Plugin items
// ---------------------------------------------------------------------------

// pluginItem wraps a PluginInfo for the bubbles list.
type pluginItem struct {
	plugin core.PluginInfo
}

func (i pluginItem) Title() string {
	state := core.StateEnabled
	if !i.plugin.Enabled {
		state = core.StateDisabled
	}
	title := i.plugin.Name + "  " + stateBadge(state)
	if i.plugin.Version != "" {
		title += "  " + mutedStyle.Render("v"+i.plugin.Version)
	}
	return title
}

func (i pluginItem) Description() string {
	parts := []string{scopeBadgeStyle.Render(string(i.plugin.Scope))}
	var pkgs []string
	p := i.plugin.Packages
	if p.HasCommands {
		pkgs = append(pkgs, "commands")
	}
	if p.HasAgents {
		pkgs = append(pkgs, "agents")
	}
	if p.HasSkills {
		pkgs = append(pkgs, "skills")
	}
	if p.HasMCP {
		pkgs = append(pkgs, "mcp")
	}
	if len(pkgs) > 0 {
		parts = append(parts, strings.Join(pkgs, ", "))
	}
	return strings.Join(parts, "  ")
}

func (i pluginItem) FilterValue() string { return i.plugin.Name }

func pluginsToItems(plugins []core.PluginInfo) []list.Item {
	items := make([]list.Item, len(plugins))
	for i, p := range plugins {
		items[i] = pluginItem{plugin: p}
	}
	return items
}

// ---------------------------------------------------------------------------
// Hook items
// ---------------------------------------------------------------------------

// hookItem wraps a HooksEntry. Hooks are surfaced read-only: they execute
// arbitrary shell commands, so flipping them from a picker is off the table.
type hookItem struct {
	entry core.HooksEntry
}

func (i hookItem) Title() string {
	title := string(i.entry.Source) + "  " + mutedStyle.Render("(read-only)")
	if i.entry.Err != nil {
		title += "  " + errorStyle.Render("(malformed)")
	}
	return title
}

func (i hookItem) Description() string {
	n := 0
	gjson.ParseBytes(i.entry.Hooks).ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return fmt.Sprintf("%d hook events  %s", n, mutedStyle.Render(i.entry.Path))
}

func (i hookItem) FilterValue() string { return string(i.entry.Source) }

func hooksToItems(entries []core.HooksEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = hookItem{entry: e}
	}
	return items
}

// ---------------------------------------------------------------------------
// Profile items
// ---------------------------------------------------------------------------

// profileItem wraps a Profile for the profile picker list.
type profileItem struct {
	profile core.Profile
}

func (i profileItem) Title() string {
	if i.profile.Using {
		return i.profile.Title + "  " + activeProfileStyle.Render("● active")
	}
	return i.profile.Title
}

func (i profileItem) Description() string {
	return mutedStyle.Render("id: " + i.profile.ID)
}

func (i profileItem) FilterValue() string { return i.profile.Title }

func profilesToItems(profiles []core.Profile) []list.Item {
	items := make([]list.Item, len(profiles))
	for i, p := range profiles {
		items[i] = profileItem{profile: p}
	}
	return items
}
