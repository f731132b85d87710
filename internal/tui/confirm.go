package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is a reusable confirmation dialog rendered as a centered
// bordered modal over the content area. When active it intercepts all key
// input.
//
// left/right/tab move focus between Yes and No. Enter activates the focused
// button. y/n/esc are shortcut accelerators.
//
// Usage:
//
//	app.confirm = app.confirm.show("Delete profile Work?", deleteCmd)
//
// On confirm the stored onConfirm command runs and a confirmResultMsg is
// sent. On cancel the dialog is dismissed silently.
type confirmModel struct {
	active    bool
	message   string
	onConfirm tea.Cmd
	focusYes  bool

	// Available area for centering, set by the app.
	width  int
	height int
}

// confirmResultMsg is sent after the user responds to a confirmation dialog.
type confirmResultMsg struct {
	confirmed bool
}

func newConfirmModel() confirmModel {
	return confirmModel{}
}

// show activates the dialog with the given prompt and action. Focus lands
// on No, the safe default for destructive actions.
func (m confirmModel) show(message string, onConfirm tea.Cmd) confirmModel {
	m.active = true
	m.message = message
	m.onConfirm = onConfirm
	m.focusYes = false
	return m
}

func (m confirmModel) setSize(width, height int) confirmModel {
	m.width = width
	m.height = height
	return m
}

// respond dismisses the dialog and reports the outcome. On a confirmed
// response the stored action runs alongside the result message.
func (m confirmModel) respond(confirmed bool) (confirmModel, tea.Cmd) {
	action := m.onConfirm
	m.active = false
	m.message = ""
	m.onConfirm = nil
	m.focusYes = false

	result := func() tea.Msg { return confirmResultMsg{confirmed: confirmed} }
	if confirmed && action != nil {
		return m, tea.Batch(action, result)
	}
	return m, result
}

// update handles key input while the dialog is active.
// Returns the updated model, any commands, and whether the message was consumed.
func (m confirmModel) update(msg tea.Msg) (confirmModel, tea.Cmd, bool) {
	if !m.active {
		return m, nil, false
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}

	switch {
	case key.Matches(keyMsg, confirmYesKey):
		m, cmd := m.respond(true)
		return m, cmd, true

	case key.Matches(keyMsg, confirmNoKey), key.Matches(keyMsg, keys.Back):
		m, cmd := m.respond(false)
		return m, cmd, true

	case key.Matches(keyMsg, keys.Enter):
		m, cmd := m.respond(m.focusYes)
		return m, cmd, true

	case key.Matches(keyMsg, confirmMove):
		m.focusYes = !m.focusYes
		return m, nil, true
	}

	// Swallow everything else so keys never reach the view below.
	return m, nil, true
}

// view renders the centered dialog box with the message and Yes / No buttons.
func (m confirmModel) view() string {
	if !m.active {
		return ""
	}

	question := lipgloss.NewStyle().
		Width(40).
		Align(lipgloss.Center).
		Render(m.message)

	yesBtn := dialogButtonStyle.Render("Yes")
	noBtn := dialogActiveButtonStyle.Render("No")
	if m.focusYes {
		yesBtn = dialogActiveButtonStyle.Render("Yes")
		noBtn = dialogButtonStyle.Render("No")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, "  ", noBtn)
	dialog := dialogBoxStyle.Render(
		lipgloss.JoinVertical(lipgloss.Center, question, "", buttons),
	)

	if m.width <= 0 || m.height <= 0 {
		return dialog
	}

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

// Key bindings for the confirm dialog (not part of the global keyMap).
var (
	confirmYesKey = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	)
	confirmNoKey = key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "cancel"),
	)
	confirmMove = key.NewBinding(
		key.WithKeys("left", "right", "h", "l", "tab", "shift+tab"),
	)
)
