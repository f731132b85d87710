package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// toastType defines the visual style and behavior of a toast notification.
type toastType int

const (
	toastSuccess toastType = iota
	toastError
	toastWarning
	toastLoading // Shows a spinner; persists until dismissed programmatically.
)

// toastAutoDismiss is how long success/error toasts stay visible.
const toastAutoDismiss = 3 * time.Second

// toastModel manages a single toast notification shown in the help bar area.
// At most one toast is visible at a time; showing a new one replaces the
// previous. It is a self-contained component driven only through
// show/dismiss/update/view.
type toastModel struct {
	active  bool
	message string
	kind    toastType
	id      int // Monotonic ID to ignore stale dismiss messages.

	// Spinner for loading toasts.
	spinner spinner.Model

	// Counter for generating unique IDs.
	nextID int
}

// toastDismissMsg is sent by the auto-dismiss timer.
type toastDismissMsg struct {
	id int
}

func newToastModel() toastModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
	return toastModel{
		spinner: s,
	}
}

// show displays a new toast, replacing any existing one.
// Returns the model and any commands needed (spinner tick, auto-dismiss timer).
func (m toastModel) show(message string, kind toastType) (toastModel, tea.Cmd) {
	m.active = true
	m.message = message
	m.kind = kind
	m.id = m.nextID
	m.nextID++

	if kind == toastLoading {
		// Loading toasts spin until dismissed by the caller.
		return m, m.spinner.Tick
	}

	id := m.id
	return m, tea.Tick(toastAutoDismiss, func(_ time.Time) tea.Msg {
		return toastDismissMsg{id: id}
	})
}

// dismiss hides the toast immediately.
func (m toastModel) dismiss() toastModel {
	m.active = false
	m.message = ""
	return m
}

// update handles spinner ticks and auto-dismiss messages.
func (m toastModel) update(msg tea.Msg) (toastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case toastDismissMsg:
		// Only dismiss on a matching ID so stale timers cannot kill newer toasts.
		if msg.id == m.id {
			m = m.dismiss()
		}
		return m, nil

	case spinner.TickMsg:
		if m.active && m.kind == toastLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// view renders the toast left-aligned with 1 char indent.
// Returns empty string if no toast is active.
func (m toastModel) view() string {
	if !m.active {
		return ""
	}

	var style lipgloss.Style

	switch m.kind {
	case toastSuccess:
		style = enabledStyle
	case toastError:
		style = errorStyle
	case toastWarning:
		style = warningStyle
	case toastLoading:
		return " " + m.spinner.View() + mutedStyle.Render(m.message)
	}

	return " " + style.Render(m.message)
}
