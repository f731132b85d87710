// Package tui implements the interactive terminal UI: a tabbed browser over
// commands, agents, skills, memory, MCP servers, plugins and hooks, plus a
// profile picker for swapping settings profiles in and out of the live slot.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"ccpilot/internal/core"
)

// Deps carries the core services the TUI operates on.
type Deps struct {
	Paths    *core.Paths
	Scanner  *core.Scanner
	Toggler  *core.Toggler
	Store    *core.ProfileStore
	Switcher *core.Switcher
	Project  string
	Version  string
}

// Run starts the interactive UI and blocks until the user quits.
func Run(deps Deps) error {
	p := tea.NewProgram(newApp(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// appView represents the active screen.
type appView int

const (
	viewBrowser  appView = iota // Tabbed entity browser (default)
	viewProfiles                // Profile picker overlay
	viewPreview                 // Content preview overlay
)

// snapshot is one consistent read of everything the UI shows.
type snapshot struct {
	project  string
	commands []core.EffectiveView
	agents   []core.EffectiveView
	skills   []core.EffectiveView
	memory   []core.EffectiveView
	servers  []core.MCPServerInfo
	plugins  []core.PluginInfo
	hooks    []core.HooksEntry
	profiles []core.Profile
	status   core.SwitchStatus
}

// App is the root Bubbletea model.
type App struct {
	deps Deps

	// View state.
	activeView appView
	width      int
	height     int
	ready      bool

	// Sub-models.
	browser  browserModel
	profiles profilesModel

	// Content preview.
	previewViewport viewport.Model
	previewTitle    string
	previewLoading  bool
	previewSpinner  spinner.Model

	// Cached glamour renderer (lazy-initialized on first preview).
	glamourRenderer *glamour.TermRenderer

	// Help bar.
	help help.Model

	// Shared data.
	snap *snapshot

	// loadSeq orders in-flight scans. A scan result tagged with an older
	// sequence number is stale and dropped: last request wins.
	loadSeq int

	// Toast notifications in the help bar area.
	toast toastModel

	// Confirmation dialog (overlays the content when active).
	confirm confirmModel
}

func newApp(deps Deps) App {
	h := help.New()
	h.ShortSeparator = "  |  "

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)

	return App{
		deps:           deps,
		browser:        newBrowserModel(),
		profiles:       newProfilesModel(),
		help:           h,
		previewSpinner: s,
		toast:          newToastModel(),
		confirm:        newConfirmModel(),
	}
}

// --- Messages ---

type loadedDataMsg struct {
	seq  int
	snap *snapshot
	err  error
}

type errMsg struct {
	err error
}

type warnMsg struct {
	text string
}

// mutationDoneMsg reports a completed write (toggle, activate, delete).
type mutationDoneMsg struct {
	label string
}

// openPreviewMsg is sent by the browser to open the content preview.
type openPreviewMsg struct {
	title   string
	content string
}

// previewRenderedMsg is sent when background glamour rendering completes.
type previewRenderedMsg struct {
	content  string
	renderer *glamour.TermRenderer
}

// warnCmd shows a warning toast.
func warnCmd(text string) tea.Cmd {
	return func() tea.Msg { return warnMsg{text: text} }
}

// mutate wraps a write operation: run it, surface errors, and on success
// show a toast and rescan.
func (a *App) mutate(label string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err: err}
		}
		return mutationDoneMsg{label: label}
	}
}

// reload schedules a fresh scan, invalidating any in-flight one.
func (a *App) reload() tea.Cmd {
	a.loadSeq++
	return a.loadCmd(a.loadSeq)
}

func (a App) loadCmd(seq int) tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		snap, err := loadSnapshot(deps)
		return loadedDataMsg{seq: seq, snap: snap, err: err}
	}
}

// loadSnapshot performs every scan the UI needs in one pass.
func loadSnapshot(deps Deps) (*snapshot, error) {
	ctx := context.Background()
	snap := &snapshot{project: deps.Project}

	var err error
	if snap.commands, err = resolveScan(deps.Scanner.ScanCommands, ctx, deps.Project); err != nil {
		return nil, err
	}
	if snap.agents, err = resolveScan(deps.Scanner.ScanAgents, ctx, deps.Project); err != nil {
		return nil, err
	}
	if snap.skills, err = resolveScan(deps.Scanner.ScanSkills, ctx, deps.Project); err != nil {
		return nil, err
	}
	if snap.memory, err = resolveScan(deps.Scanner.ScanMemory, ctx, deps.Project); err != nil {
		return nil, err
	}
	if snap.servers, err = deps.Scanner.ScanMCPServers(ctx, deps.Project); err != nil {
		return nil, err
	}
	if snap.plugins, err = deps.Scanner.ListPlugins(deps.Project); err != nil {
		return nil, err
	}
	if snap.hooks, err = deps.Scanner.ScanHooks(ctx, deps.Project); err != nil {
		return nil, err
	}
	if snap.profiles, err = deps.Store.List(); err != nil {
		return nil, err
	}
	if snap.status, err = deps.Switcher.Status(); err != nil {
		return nil, err
	}
	return snap, nil
}

func resolveScan(scan func(context.Context, string) ([]core.Definition, error), ctx context.Context, project string) ([]core.EffectiveView, error) {
	defs, err := scan(ctx, project)
	if err != nil {
		return nil, err
	}
	return core.Resolve(defs), nil
}

// --- Init / Update / View ---

func (a App) Init() tea.Cmd {
	// The initial scan carries the zero sequence number the model starts with.
	return a.loadCmd(a.loadSeq)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.propagateSize()
		return a, nil

	case loadedDataMsg:
		if msg.seq != a.loadSeq {
			// Stale scan superseded by a newer request.
			return a, nil
		}
		if msg.err != nil {
			var cmd tea.Cmd
			a.toast, cmd = a.toast.show(fmt.Sprintf("Error: %v", msg.err), toastError)
			return a, cmd
		}
		a.snap = msg.snap
		a.browser = a.browser.setData(a.snap)
		if a.activeView == viewProfiles {
			a.profiles = a.profiles.activate(a.snap.profiles, a.snap.status)
		}
		if a.ready {
			a.propagateSize()
		}
		return a, nil

	case mutationDoneMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.show(msg.label, toastSuccess)
		return a, tea.Batch(cmd, a.reload())

	case errMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.show(fmt.Sprintf("Error: %v", msg.err), toastError)
		return a, cmd

	case warnMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.show(msg.text, toastWarning)
		return a, cmd

	case openPreviewMsg:
		a.activeView = viewPreview
		a.previewTitle = msg.title
		a.previewLoading = true
		w, h := a.innerContentSize()
		// -4 for the preview's own header, separator, footer and separator lines.
		a.previewViewport = viewport.New(w, max(0, h-4))

		rawContent := msg.content
		cachedRenderer := a.glamourRenderer
		renderCmd := func() tea.Msg {
			r := cachedRenderer
			if r == nil {
				var err error
				r, err = glamour.NewTermRenderer(
					glamour.WithAutoStyle(),
					glamour.WithWordWrap(w),
				)
				if err != nil {
					return previewRenderedMsg{content: rawContent}
				}
			}
			rendered, err := r.Render(rawContent)
			if err != nil {
				rendered = rawContent
			}
			return previewRenderedMsg{
				content:  strings.TrimRight(rendered, "\n"),
				renderer: r,
			}
		}
		return a, tea.Batch(a.previewSpinner.Tick, renderCmd)

	case previewRenderedMsg:
		a.previewLoading = false
		a.previewViewport.SetContent(msg.content)
		if msg.renderer != nil {
			a.glamourRenderer = msg.renderer
		}
		return a, nil

	case spinner.TickMsg:
		if a.toast.active && a.toast.kind == toastLoading {
			var cmd tea.Cmd
			a.toast, cmd = a.toast.update(msg)
			return a, cmd
		}
		if a.previewLoading {
			var cmd tea.Cmd
			a.previewSpinner, cmd = a.previewSpinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case toastDismissMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.update(msg)
		return a, cmd

	case confirmResultMsg:
		// Callers react through the onConfirm command; nothing to do here.
		return a, nil

	case tea.KeyMsg:
		// Confirmation dialog intercepts all keys when active.
		if a.confirm.active {
			var cmd tea.Cmd
			var consumed bool
			a.confirm, cmd, consumed = a.confirm.update(msg)
			if consumed {
				return a, cmd
			}
		}

		// Preview keys: viewport needs arrows/pgup/pgdn, esc closes.
		if a.activeView == viewPreview {
			if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Quit) {
				a.activeView = viewBrowser
				return a, nil
			}
			var cmd tea.Cmd
			a.previewViewport, cmd = a.previewViewport.Update(msg)
			return a, cmd
		}

		// Global quit, unless a list filter is capturing input.
		if key.Matches(msg, keys.Quit) && !a.isListFiltering() {
			return a, tea.Quit
		}

		// Global back: close the profile picker.
		if key.Matches(msg, keys.Back) && !a.isListFiltering() {
			if a.activeView == viewProfiles {
				a.activeView = viewBrowser
				return a, nil
			}
		}

		// Open the profile picker from the browser.
		if a.activeView == viewBrowser && !a.browser.list.SettingFilter() {
			if key.Matches(msg, keys.Profiles) {
				if a.snap != nil {
					a.activeView = viewProfiles
					a.profiles = a.profiles.activate(a.snap.profiles, a.snap.status)
				}
				return a, nil
			}
		}
	}

	// Delegate to the active sub-model.
	var cmd tea.Cmd
	switch a.activeView {
	case viewBrowser:
		a.browser, cmd = a.browser.update(msg, &a)
	case viewProfiles:
		a.profiles, cmd = a.profiles.update(msg, &a)
	}

	return a, cmd
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	// Layout: fixed header + flex content box + fixed help bar. Header and
	// help bar always render; the content box gets whatever remains.

	header := a.renderHeader()
	helpBar := a.renderHelpBar()

	// A toast replaces the help bar while visible.
	if a.toast.active {
		helpBar = a.toast.view()
	}

	// JoinVertical adds \n between each block: 3 blocks, 2 separators.
	separators := 2
	chromeH := lipgloss.Height(header) + lipgloss.Height(helpBar) + separators

	// Frame = border + padding; border alone excludes padding.
	frameV := contentStyle.GetVerticalFrameSize()
	frameH := contentStyle.GetHorizontalFrameSize()
	borderV := contentStyle.GetVerticalBorderSize()
	borderH := contentStyle.GetHorizontalBorderSize()

	innerW := max(0, a.width-borderH)
	innerH := max(0, a.height-chromeH-borderV)

	textW := max(0, a.width-frameH)
	textH := max(0, a.height-chromeH-frameV)

	content := ""
	switch a.activeView {
	case viewBrowser:
		content = a.browser.view()
	case viewProfiles:
		content = a.profiles.view()
	case viewPreview:
		content = a.renderPreview()
	}

	if a.confirm.active {
		content = a.confirm.view()
	}

	// Clamp so overlong content cannot inflate the box: clampWidth prevents
	// wrapping, clampHeight prevents overflow.
	content = clampWidth(content, textW)
	content = clampHeight(content, textH)

	styled := contentStyle.
		Width(innerW).
		Height(innerH).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, styled, helpBar)
}

func (a App) renderHeader() string {
	logo := logoStyle.Render("ccpilot")

	location := "~"
	if a.deps.Project != "" {
		location = a.deps.Project
	}
	path := headerPathStyle.Render(location)

	var hints string
	switch a.activeView {
	case viewBrowser:
		hints = headerHintStyle.Render("[p] profiles  v" + a.deps.Version)
	case viewProfiles:
		hints = headerHintStyle.Render("Profiles")
	case viewPreview:
		hints = headerHintStyle.Render(a.previewTitle)
	}

	// Indent 1 char to align with the content box's left border.
	indent := " "
	left := lipgloss.JoinHorizontal(lipgloss.Top, indent, logo, " ", path)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(hints) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + hints
}

func (a App) renderHelpBar() string {
	var km help.KeyMap

	switch a.activeView {
	case viewBrowser:
		km = browserHelpKeyMap{}
	case viewProfiles:
		overridden := a.snap != nil && a.snap.status.State == core.SwitchOverridden
		km = profilesHelpKeyMap{overridden: overridden}
	case viewPreview:
		km = previewHelpKeyMap{}
	}

	// Indent 1 char to align with the content box's left border.
	return " " + helpStyle.Render(a.help.View(km))
}

func (a App) renderPreview() string {
	w, _ := a.innerContentSize()
	title := viewportTitleStyle.Render(" " + a.previewTitle + " ")
	line := strings.Repeat("─", max(0, w-lipgloss.Width(title)))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, mutedStyle.Render(line))

	if a.previewLoading {
		return header + "\n\n" + a.previewSpinner.View() + " Rendering preview..."
	}

	pct := fmt.Sprintf(" %3.0f%% ", a.previewViewport.ScrollPercent()*100)
	footer := previewPctStyle.Render(pct)

	return header + "\n\n" + a.previewViewport.View() + "\n\n" + footer
}

// isListFiltering reports whether any list sub-model is in filter mode.
func (a App) isListFiltering() bool {
	switch a.activeView {
	case viewBrowser:
		return a.browser.list.SettingFilter()
	case viewProfiles:
		return a.profiles.list.SettingFilter()
	}
	return false
}

func (a *App) propagateSize() {
	w, h := a.innerContentSize()
	// innerContentSize returns the text area after border + padding.
	a.browser = a.browser.setSize(w, h)
	a.profiles = a.profiles.setSize(w, h)
	a.confirm = a.confirm.setSize(w, h)

	if a.activeView == viewPreview {
		a.previewViewport.Width = w
		a.previewViewport.Height = max(0, h-4) // header + separator + footer + separator
	}
}

// innerContentSize computes the text area available to sub-models: the
// space inside contentStyle after border and padding are removed. Frame
// sizes come from contentStyle itself so this adapts if the style changes.
func (a App) innerContentSize() (width, height int) {
	header := a.renderHeader()
	helpBar := a.renderHelpBar()

	// 3 blocks joined vertically, 2 separators. A toast replaces the help
	// bar in place, so no extra block.
	separators := 2
	chromeH := lipgloss.Height(header) + lipgloss.Height(helpBar) + separators

	frameV := contentStyle.GetVerticalFrameSize()
	frameH := contentStyle.GetHorizontalFrameSize()

	width = max(0, a.width-frameH)
	height = max(0, a.height-chromeH-frameV)

	return width, height
}

// clampHeight truncates content to at most maxLines lines. A safety net for
// sub-models that render taller than their allocated height.
func clampHeight(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content
	}
	return strings.Join(lines[:maxLines], "\n")
}

// clampWidth truncates each line to at most maxWidth visible characters
// (ANSI-escape aware). Prevents lipgloss from wrapping long lines inside a
// Width()-constrained box, which would inflate its rendered height.
func clampWidth(content string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > maxWidth {
			lines[i] = ansi.Truncate(line, maxWidth, "")
		}
	}
	return strings.Join(lines, "\n")
}
