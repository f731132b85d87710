package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs a command tree and collects every message it produces.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, drain(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func TestConfirmShow(t *testing.T) {
	m := newConfirmModel()
	m = m.show("Delete profile Work?", func() tea.Msg { return nil })

	if !m.active {
		t.Error("confirm should be active after show")
	}
	if m.message != "Delete profile Work?" {
		t.Errorf("message = %q, want prompt text", m.message)
	}
	if m.focusYes {
		t.Error("focus should default to No")
	}
}

func TestConfirmAcceleratorYes(t *testing.T) {
	type actionRan struct{}
	m := newConfirmModel()
	m = m.show("Delete profile Work?", func() tea.Msg { return actionRan{} })

	m, cmd, consumed := m.update(keyPress("y"))
	if !consumed {
		t.Fatal("y should be consumed")
	}
	if m.active {
		t.Error("dialog should be dismissed after confirming")
	}

	var gotAction, gotResult bool
	for _, msg := range drain(cmd) {
		switch msg := msg.(type) {
		case actionRan:
			gotAction = true
		case confirmResultMsg:
			gotResult = true
			if !msg.confirmed {
				t.Error("result should report confirmed")
			}
		}
	}
	if !gotAction {
		t.Error("onConfirm action should run on y")
	}
	if !gotResult {
		t.Error("a confirmResultMsg should be sent")
	}
}

func TestConfirmAcceleratorNo(t *testing.T) {
	type actionRan struct{}
	m := newConfirmModel()
	m = m.show("Delete profile Work?", func() tea.Msg { return actionRan{} })

	m, cmd, _ := m.update(keyPress("n"))
	if m.active {
		t.Error("dialog should be dismissed after cancel")
	}

	for _, msg := range drain(cmd) {
		switch msg := msg.(type) {
		case actionRan:
			t.Error("onConfirm action must not run on cancel")
		case confirmResultMsg:
			if msg.confirmed {
				t.Error("result should report cancelled")
			}
		}
	}
}

func TestConfirmEscCancels(t *testing.T) {
	m := newConfirmModel()
	m = m.show("Delete profile Work?", nil)

	m, _, consumed := m.update(keyPress("esc"))
	if !consumed {
		t.Error("esc should be consumed")
	}
	if m.active {
		t.Error("esc should dismiss the dialog")
	}
}

func TestConfirmEnterFollowsFocus(t *testing.T) {
	type actionRan struct{}
	m := newConfirmModel()
	m = m.show("Delete profile Work?", func() tea.Msg { return actionRan{} })

	// Default focus is No: enter cancels.
	m2, cmd, _ := m.update(keyPress("enter"))
	if m2.active {
		t.Error("enter should dismiss the dialog")
	}
	for _, msg := range drain(cmd) {
		if _, ok := msg.(actionRan); ok {
			t.Error("enter on No must not run the action")
		}
	}

	// Move focus to Yes, then enter confirms.
	m = m.show("Delete profile Work?", func() tea.Msg { return actionRan{} })
	m, _, _ = m.update(keyPress("tab"))
	if !m.focusYes {
		t.Fatal("tab should move focus to Yes")
	}
	_, cmd, _ = m.update(keyPress("enter"))
	var gotAction bool
	for _, msg := range drain(cmd) {
		if _, ok := msg.(actionRan); ok {
			gotAction = true
		}
	}
	if !gotAction {
		t.Error("enter on Yes should run the action")
	}
}

func TestConfirmFocusToggles(t *testing.T) {
	m := newConfirmModel()
	m = m.show("Delete profile Work?", nil)

	m, _, _ = m.update(keyPress("left"))
	if !m.focusYes {
		t.Error("left should move focus to Yes")
	}
	m, _, _ = m.update(keyPress("right"))
	if m.focusYes {
		t.Error("right should move focus back to No")
	}
}

func TestConfirmSwallowsOtherKeys(t *testing.T) {
	m := newConfirmModel()
	m = m.show("Delete profile Work?", nil)

	m, cmd, consumed := m.update(keyPress("z"))
	if !consumed {
		t.Error("unrelated keys should be swallowed while active")
	}
	if cmd != nil {
		t.Error("unrelated keys should produce no command")
	}
	if !m.active {
		t.Error("unrelated keys should not dismiss the dialog")
	}
}

func TestConfirmInactivePassesThrough(t *testing.T) {
	m := newConfirmModel()
	_, _, consumed := m.update(keyPress("y"))
	if consumed {
		t.Error("inactive dialog should not consume keys")
	}
}

func TestConfirmViewContainsPrompt(t *testing.T) {
	m := newConfirmModel()
	m = m.show("Delete profile Work?", nil)
	m = m.setSize(80, 24)

	v := m.view()
	if !strings.Contains(v, "Delete profile Work?") {
		t.Error("view should contain the prompt text")
	}
	if !strings.Contains(v, "Yes") || !strings.Contains(v, "No") {
		t.Error("view should render both buttons")
	}
}

func TestConfirmViewInactive(t *testing.T) {
	m := newConfirmModel()
	if v := m.view(); v != "" {
		t.Errorf("view() = %q, want empty when inactive", v)
	}
}
