package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestToastShow(t *testing.T) {
	m := newToastModel()
	m, cmd := m.show("Enabled code-review", toastSuccess)

	if !m.active {
		t.Error("toast should be active after show")
	}
	if m.message != "Enabled code-review" {
		t.Errorf("message = %q, want %q", m.message, "Enabled code-review")
	}
	if m.kind != toastSuccess {
		t.Errorf("kind = %d, want toastSuccess (%d)", m.kind, toastSuccess)
	}
	if cmd == nil {
		t.Error("show(success) should return a cmd for the auto-dismiss timer")
	}
}

func TestToastShowLoading(t *testing.T) {
	m := newToastModel()
	m, cmd := m.show("Scanning...", toastLoading)

	if m.kind != toastLoading {
		t.Errorf("kind = %d, want toastLoading (%d)", m.kind, toastLoading)
	}
	if cmd == nil {
		t.Error("show(loading) should return a cmd for the spinner tick")
	}
}

func TestToastDismissMatchingID(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("hello", toastSuccess)

	m, _ = m.update(toastDismissMsg{id: m.id})
	if m.active {
		t.Error("toast should be dismissed when ID matches")
	}
	if m.view() != "" {
		t.Errorf("view() = %q, want empty after dismiss", m.view())
	}
}

func TestToastDismissStaleID(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("first", toastSuccess)
	staleID := m.id

	m, _ = m.show("second", toastSuccess)
	if m.id == staleID {
		t.Fatal("second toast should have a different ID")
	}

	// A timer from the replaced toast must not kill the new one.
	m, _ = m.update(toastDismissMsg{id: staleID})
	if !m.active {
		t.Error("toast should still be active when dismiss ID is stale")
	}
	if m.message != "second" {
		t.Errorf("message = %q, want %q", m.message, "second")
	}
}

func TestToastShowReplacesExisting(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("Enabled github", toastSuccess)
	firstID := m.id

	m, _ = m.show("Error: not found", toastError)
	if m.message != "Error: not found" {
		t.Errorf("message = %q, want replacement text", m.message)
	}
	if m.kind != toastError {
		t.Errorf("kind = %d, want toastError (%d)", m.kind, toastError)
	}
	if m.id == firstID {
		t.Error("new toast should have a different ID from the replaced one")
	}
}

func TestToastViewInactive(t *testing.T) {
	m := newToastModel()
	if v := m.view(); v != "" {
		t.Errorf("view() = %q, want empty when inactive", v)
	}
}

func TestToastViewContainsMessage(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("Activated Work", toastSuccess)
	v := m.view()

	if !strings.Contains(v, "Activated Work") {
		t.Errorf("view() = %q, should contain message text", v)
	}
	if !strings.HasPrefix(v, " ") {
		t.Errorf("view() = %q, should start with space indent", v)
	}
}

func TestToastSpinnerTickIgnoredWhenNotLoading(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("done", toastSuccess)

	tick := spinner.TickMsg{Time: time.Now()}
	m2, cmd := m.update(tick)
	if cmd != nil {
		t.Error("spinner tick on non-loading toast should return nil cmd")
	}
	if m2.message != m.message || m2.active != m.active {
		t.Error("spinner tick on non-loading toast should not change state")
	}
}

func TestToastSpinnerTickWhileLoading(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("Scanning...", toastLoading)

	tick := spinner.TickMsg{Time: time.Now()}
	m2, _ := m.update(tick)
	if !m2.active {
		t.Error("loading toast should still be active after spinner tick")
	}
	if m2.kind != toastLoading {
		t.Errorf("kind = %d, want toastLoading (%d)", m2.kind, toastLoading)
	}
}
