package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.md")
	content := "---\ndescription: deploy\n---\nrun the deploy\n"
	writeTestFile(t, path, content)

	tog := NewToggler(NewPathsWithHome(dir))
	def := Definition{Kind: KindCommand, Name: "deploy", Scope: ScopeUser, Path: path}

	if err := tog.SetDisabled(def, true); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if fileExists(path) {
		t.Error("active file should be gone after disable")
	}
	if !fileExists(path + disabledSuffix) {
		t.Fatal("marker file missing after disable")
	}

	if err := tog.SetDisabled(def, false); err != nil {
		t.Fatalf("enable: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Error("content changed across a disable/enable round trip")
	}
	if fileExists(path + disabledSuffix) {
		t.Error("marker file left behind after enable")
	}
}

func TestToggleIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.md")
	writeTestFile(t, path, "agent\n")

	tog := NewToggler(NewPathsWithHome(dir))
	def := Definition{Kind: KindAgent, Name: "agent", Scope: ScopeUser, Path: path}

	if err := tog.SetDisabled(def, false); err != nil {
		t.Fatalf("enable of enabled entity should be a no-op, got %v", err)
	}
	if err := tog.SetDisabled(def, true); err != nil {
		t.Fatal(err)
	}
	if err := tog.SetDisabled(def, true); err != nil {
		t.Fatalf("disable of disabled entity should be a no-op, got %v", err)
	}
}

func TestToggleStaleDefinition(t *testing.T) {
	// The definition claims the entity is enabled, but it was already
	// disabled behind our back. The state on disk decides.
	dir := t.TempDir()
	path := filepath.Join(dir, "cmd.md")
	writeTestFile(t, path+disabledSuffix, "body\n")

	tog := NewToggler(NewPathsWithHome(dir))
	def := Definition{Kind: KindCommand, Name: "cmd", Scope: ScopeUser, Path: path}

	if err := tog.SetDisabled(def, true); err != nil {
		t.Fatalf("expected idempotent success, got %v", err)
	}
	if fileExists(path + disabledSuffix + disabledSuffix) {
		t.Error("double marker must never be produced")
	}
}

func TestToggleConflict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.md")
	writeTestFile(t, path, "a\n")
	writeTestFile(t, path+disabledSuffix, "b\n")

	tog := NewToggler(NewPathsWithHome(dir))
	def := Definition{Kind: KindCommand, Name: "dup", Scope: ScopeUser, Path: path}

	err := tog.SetDisabled(def, true)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestToggleNotFound(t *testing.T) {
	dir := t.TempDir()
	tog := NewToggler(NewPathsWithHome(dir))
	def := Definition{Kind: KindCommand, Name: "ghost", Scope: ScopeUser, Path: filepath.Join(dir, "ghost.md")}

	if err := tog.SetDisabled(def, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleNotControllable(t *testing.T) {
	dir := t.TempDir()
	tog := NewToggler(NewPathsWithHome(dir))

	tests := []struct {
		name string
		def  Definition
	}{
		{"plugin scope", Definition{Kind: KindCommand, Name: "x", Scope: ScopePluginUser, Path: filepath.Join(dir, "x.md")}},
		{"hook kind", Definition{Kind: KindHook, Name: "PreToolUse", Scope: ScopeUser, Path: filepath.Join(dir, "settings.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tog.SetDisabled(tt.def, true); !errors.Is(err, ErrNotControllable) {
				t.Errorf("expected ErrNotControllable, got %v", err)
			}
		})
	}
}

func TestToggleSkill(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skills", "pdf", "SKILL.md")
	writeTestFile(t, path, "---\nname: pdf\n---\n")

	tog := NewToggler(NewPathsWithHome(dir))
	def := Definition{Kind: KindSkill, Name: "pdf", Scope: ScopeUser, Path: path}

	if err := tog.SetDisabled(def, true); err != nil {
		t.Fatal(err)
	}
	if !fileExists(path + disabledSuffix) {
		t.Error("SKILL.md marker missing")
	}
	if !dirExists(filepath.Dir(path)) {
		t.Error("skill directory must survive a toggle")
	}
}
