package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ccpilot/internal/core"
)

// profilesModel is the profile picker overlay. Enter activates the selected
// profile, r restores the original settings, d deletes after confirmation.
type profilesModel struct {
	width  int
	height int

	list list.Model

	// Data (set on activate).
	profiles []core.Profile
	status   core.SwitchStatus
}

func newProfilesModel() profilesModel {
	l := list.New(nil, newEntityDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetShowPagination(false)

	return profilesModel{
		list: l,
	}
}

func (m profilesModel) setSize(width, height int) profilesModel {
	m.width = width
	m.height = height
	// List sizing happens dynamically in view() via render-then-measure.
	m.list.SetSize(width, max(1, height))
	return m
}

// activate is called when the picker opens. The cursor starts on the
// profile currently in use, if any.
func (m profilesModel) activate(profiles []core.Profile, status core.SwitchStatus) profilesModel {
	m.profiles = profiles
	m.status = status

	m.list.SetItems(profilesToItems(profiles))
	m.list.ResetFilter()

	for i, p := range profiles {
		if p.Using {
			m.list.Select(i)
			break
		}
	}

	return m
}

func (m profilesModel) update(msg tea.Msg, app *App) (profilesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys while filtering.
		if m.list.SettingFilter() {
			break
		}

		switch {
		case key.Matches(msg, keys.Enter):
			return m, m.activateSelected(app)

		case key.Matches(msg, keys.Restore):
			return m, m.restore(app)

		case key.Matches(msg, keys.Delete):
			return m, m.deleteSelected(app)
		}
	}

	// Forward to list for navigation + filtering.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m profilesModel) selected() (core.Profile, bool) {
	item := m.list.SelectedItem()
	if item == nil {
		return core.Profile{}, false
	}
	pi, ok := item.(profileItem)
	if !ok {
		return core.Profile{}, false
	}
	return pi.profile, ok
}

// activateSelected swaps the selected profile into the live settings slot.
func (m profilesModel) activateSelected(app *App) tea.Cmd {
	profile, ok := m.selected()
	if !ok {
		return nil
	}
	if profile.Using {
		return warnCmd(profile.Title + " is already active")
	}
	return app.mutate(
		"Activated "+profile.Title,
		func() error { return app.deps.Switcher.Activate(profile.ID) },
	)
}

// restore puts the backed-up original settings back in the live slot.
func (m profilesModel) restore(app *App) tea.Cmd {
	if m.status.State != core.SwitchOverridden {
		return warnCmd("original settings already active")
	}
	return app.mutate(
		"Restored original settings",
		func() error { return app.deps.Switcher.RestoreOriginal() },
	)
}

// deleteSelected removes the selected profile after confirmation. Deleting
// the active profile restores the original settings first.
func (m profilesModel) deleteSelected(app *App) tea.Cmd {
	profile, ok := m.selected()
	if !ok {
		return nil
	}

	deleteCmd := app.mutate(
		"Deleted "+profile.Title,
		func() error { return app.deps.Switcher.DeleteProfile(profile.ID) },
	)

	app.confirm = app.confirm.show(
		fmt.Sprintf("Delete profile %s?", profile.Title),
		deleteCmd,
	)
	return nil
}

func (m profilesModel) view() string {
	// --- Render-then-measure ---

	header := renderSectionHeader("PROFILES", m.width) + "\n"

	var statusLine string
	if m.status.State == core.SwitchOverridden && m.status.Profile != nil {
		statusLine = "  " + warningStyle.Render("live settings overridden by "+m.status.Profile.Title)
	} else {
		statusLine = "  " + mutedStyle.Render("live settings are the original")
	}
	footerBlock := "\n\n" + statusLine

	if len(m.profiles) == 0 {
		return header +
			mutedStyle.Render("  No profiles yet.") + "\n" +
			mutedStyle.Render("  Create one with: ccpilot profile create") +
			footerBlock
	}

	chromeH := lipgloss.Height(header) + lipgloss.Height(footerBlock)
	listH := m.height - chromeH
	if listH < 1 {
		listH = 1
	}
	m.list.SetSize(m.width, listH)

	return header + m.list.View() + footerBlock
}
