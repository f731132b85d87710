package core

import (
	"errors"
	"testing"
	"time"
)

func TestResolvePrecedence(t *testing.T) {
	defs := []Definition{
		{Kind: KindCommand, Name: "deploy", Scope: ScopeUser, Path: "/u/deploy.md", Exists: true},
		{Kind: KindCommand, Name: "deploy", Scope: ScopeProject, Path: "/p/deploy.md", Exists: true},
		{Kind: KindCommand, Name: "deploy", Scope: ScopeProjectLocal, Path: "/pl/deploy.md", Exists: true},
	}

	views := Resolve(defs)
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	view := views[0]
	if view.Authoring == nil || view.Authoring.Scope != ScopeProjectLocal {
		t.Errorf("expected project-local authoring, got %+v", view.Authoring)
	}
	if view.State != StateEnabled {
		t.Errorf("expected enabled, got %s", view.State)
	}
	if len(view.Definitions) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(view.Definitions))
	}
	if view.Definitions[0].Scope != ScopeProjectLocal || view.Definitions[2].Scope != ScopeUser {
		t.Errorf("definitions not ordered by precedence: %+v", view.Definitions)
	}
}

func TestResolveDisabledMarker(t *testing.T) {
	defs := []Definition{
		{Kind: KindAgent, Name: "reviewer", Scope: ScopeProject, Path: "/p/reviewer.md", Exists: true, Disabled: true},
		{Kind: KindAgent, Name: "reviewer", Scope: ScopeUser, Path: "/u/reviewer.md", Exists: true},
	}

	views := Resolve(defs)
	if views[0].State != StateDisabled {
		t.Errorf("winning scope disabled, expected disabled state, got %s", views[0].State)
	}
	if !views[0].Controllable {
		t.Error("expected controllable view")
	}
}

func TestResolvePluginShadowedByUser(t *testing.T) {
	defs := []Definition{
		{Kind: KindCommand, Name: "lint", Scope: ScopePluginUser, Path: "/plug/lint.md", Exists: true, PluginName: "tools", PluginEnabled: true},
		{Kind: KindCommand, Name: "lint", Scope: ScopeUser, Path: "/u/lint.md", Exists: true},
	}

	view := Resolve(defs)[0]
	if view.Authoring == nil || view.Authoring.Scope != ScopeUser {
		t.Fatalf("plugin definition must never be authoring, got %+v", view.Authoring)
	}
	if !view.Controllable {
		t.Error("user-backed view should be controllable")
	}
}

func TestResolvePluginOnly(t *testing.T) {
	tests := []struct {
		name          string
		pluginEnabled bool
		wantState     State
	}{
		{"enabled plugin", true, StateEnabled},
		{"disabled plugin", false, StateRuntimeDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := []Definition{{
				Kind: KindSkill, Name: "pdf", Scope: ScopePluginUser, Path: "/plug/pdf/SKILL.md",
				Exists: true, PluginName: "docs", PluginEnabled: tt.pluginEnabled,
			}}
			view := Resolve(defs)[0]
			if view.State != tt.wantState {
				t.Errorf("state = %s, want %s", view.State, tt.wantState)
			}
			if view.Controllable {
				t.Error("plugin-only view must not be controllable")
			}
			if view.Authoring != nil {
				t.Error("plugin-only view must have no authoring definition")
			}
		})
	}
}

func TestResolveSameScopeNewestWins(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	defs := []Definition{
		{Kind: KindCommand, Name: "fmt", Scope: ScopeUser, Path: "/u/a/fmt.md", Exists: true, ModTime: older},
		{Kind: KindCommand, Name: "fmt", Scope: ScopeUser, Path: "/u/b/fmt.md", Exists: true, ModTime: newer},
	}

	view := Resolve(defs)[0]
	if view.Authoring.Path != "/u/b/fmt.md" {
		t.Errorf("newest definition should win, got %s", view.Authoring.Path)
	}
}

func TestResolveMalformedNeverEnabled(t *testing.T) {
	defs := []Definition{
		{Kind: KindSkill, Name: "broken", Scope: ScopeUser, Path: "/u/broken/SKILL.md", Exists: true, Err: ErrMalformed},
	}
	view := Resolve(defs)[0]
	if view.State == StateEnabled {
		t.Error("malformed definition must not resolve to enabled")
	}
	if !errors.Is(view.Err, ErrMalformed) {
		t.Errorf("expected ErrMalformed on view, got %v", view.Err)
	}
}

func TestResolveRuntimeDisabled(t *testing.T) {
	defs := []Definition{
		{Kind: KindMCP, Name: "github", Scope: ScopeProject, Path: "/p/.mcp.json", Exists: true, RuntimeDisabled: true},
	}
	if got := Resolve(defs)[0].State; got != StateRuntimeDisabled {
		t.Errorf("state = %s, want %s", got, StateRuntimeDisabled)
	}
}

func TestResolveHooksNotControllable(t *testing.T) {
	defs := []Definition{
		{Kind: KindHook, Name: "PreToolUse", Scope: ScopeUser, Path: "/u/settings.json", Exists: true},
	}
	if Resolve(defs)[0].Controllable {
		t.Error("hook views are read-only")
	}
}

func TestResolveGroupsSorted(t *testing.T) {
	defs := []Definition{
		{Kind: KindCommand, Name: "zeta", Scope: ScopeUser, Exists: true},
		{Kind: KindCommand, Name: "alpha", Scope: ScopeUser, Exists: true},
		{Kind: KindAgent, Name: "mid", Scope: ScopeUser, Exists: true},
	}
	views := Resolve(defs)
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	if views[0].Kind != KindAgent || views[1].Name != "alpha" || views[2].Name != "zeta" {
		t.Errorf("views not deterministically ordered: %+v", views)
	}
}
