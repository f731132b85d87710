package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestScanner(t *testing.T) (*Scanner, *Paths) {
	t.Helper()
	home := t.TempDir()
	return NewScanner(NewPathsWithHome(home)), NewPathsWithHome(home)
}

func TestScanCommands(t *testing.T) {
	s, paths := newTestScanner(t)
	project := t.TempDir()

	writeTestFile(t, filepath.Join(paths.CommandsDir(ScopeUser, ""), "deploy.md"),
		"---\ndescription: ship it\n---\nDeploy the app.\n")
	writeTestFile(t, filepath.Join(paths.CommandsDir(ScopeUser, ""), "review.md.disabled"), "Review.\n")
	writeTestFile(t, filepath.Join(paths.CommandsDir(ScopeProject, project), "deploy.md"), "Project deploy.\n")
	writeTestFile(t, filepath.Join(paths.CommandsDir(ScopeUser, ""), "git", "commit.md"), "Commit.\n")

	defs, err := s.ScanCommands(context.Background(), project)
	if err != nil {
		t.Fatal(err)
	}

	byKey := map[string]Definition{}
	for _, d := range defs {
		byKey[d.Name+"/"+string(d.Scope)] = d
	}

	if d := byKey["deploy/user"]; d.Description != "ship it" {
		t.Errorf("frontmatter description not parsed: %+v", d)
	}
	if d := byKey["review/user"]; !d.Disabled {
		t.Error("marker file should scan as disabled")
	}
	if _, ok := byKey["deploy/project"]; !ok {
		t.Error("project scope definition missing")
	}
	if _, ok := byKey["git/commit/user"]; !ok {
		t.Errorf("nested command not namespaced: %v", byKey)
	}
}

func TestScanCommandsMissingDirs(t *testing.T) {
	s, _ := newTestScanner(t)
	defs, err := s.ScanCommands(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 0 {
		t.Errorf("expected no definitions, got %d", len(defs))
	}
}

func TestScanCommandsCancelled(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ScanCommands(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScanSkills(t *testing.T) {
	s, paths := newTestScanner(t)

	writeTestFile(t, filepath.Join(paths.SkillsDir(ScopeUser, ""), "pdf", "SKILL.md"),
		"---\nname: pdf\ndescription: Work with PDFs\n---\nBody.\n")
	writeTestFile(t, filepath.Join(paths.SkillsDir(ScopeUser, ""), "off", "SKILL.md.disabled"),
		"---\nname: off\n---\n")
	writeTestFile(t, filepath.Join(paths.SkillsDir(ScopeUser, ""), "broken", "SKILL.md"),
		"---\nname: [unclosed\n---\n")

	defs, err := s.ScanSkills(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]Definition{}
	for _, d := range defs {
		byName[d.Name] = d
	}

	if d := byName["pdf"]; d.Description != "Work with PDFs" || d.Disabled {
		t.Errorf("pdf skill = %+v", d)
	}
	if d := byName["off"]; !d.Disabled {
		t.Error("marker skill should be disabled")
	}
	if d := byName["broken"]; !errors.Is(d.Err, ErrMalformed) {
		t.Errorf("broken skill should carry ErrMalformed, got %v", d.Err)
	}
}

func TestScanSkillConflict(t *testing.T) {
	s, paths := newTestScanner(t)
	dir := filepath.Join(paths.SkillsDir(ScopeUser, ""), "dup")
	writeTestFile(t, filepath.Join(dir, "SKILL.md"), "---\nname: dup\n---\n")
	writeTestFile(t, filepath.Join(dir, "SKILL.md.disabled"), "---\nname: dup\n---\n")

	defs, err := s.ScanSkills(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 || !errors.Is(defs[0].Err, ErrConflict) {
		t.Errorf("expected one conflicted definition, got %+v", defs)
	}
}

func TestScanMemory(t *testing.T) {
	s, paths := newTestScanner(t)
	project := t.TempDir()

	writeTestFile(t, paths.UserMemory(), "User memory.\n")
	writeTestFile(t, disabledPath(paths.ProjectMemory(project)), "Project memory.\n")

	defs, err := s.ScanMemory(context.Background(), project)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 memory definitions, got %d", len(defs))
	}
	for _, d := range defs {
		switch d.Scope {
		case ScopeUser:
			if d.Disabled || d.Content != "User memory.\n" {
				t.Errorf("user memory = %+v", d)
			}
		case ScopeProject:
			if !d.Disabled {
				t.Error("project memory should be disabled")
			}
		}
	}
}

func TestScanHooks(t *testing.T) {
	s, paths := newTestScanner(t)
	project := t.TempDir()

	writeTestFile(t, paths.UserSettings(),
		`{"hooks":{"PreToolUse":[{"matcher":"Bash","hooks":[{"type":"command","command":"echo hi"}]}]}}`)
	writeTestFile(t, paths.SettingsFile(ScopeProject, project), "{broken")

	entries, err := s.ScanHooks(context.Background(), project)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	for _, e := range entries {
		switch e.Source {
		case ScopeUser:
			if e.Hooks == nil {
				t.Error("user hooks block missing")
			}
		case ScopeProject:
			if !errors.Is(e.Err, ErrMalformed) {
				t.Errorf("malformed settings should yield a per-entry error, got %v", e.Err)
			}
		case ScopeProjectLocal:
			if e.Exists {
				t.Error("absent settings.local.json should not exist")
			}
		}
	}
}

func TestScanPluginProvided(t *testing.T) {
	s, paths := newTestScanner(t)
	install := t.TempDir()
	writeTestFile(t, filepath.Join(install, "commands", "audit.md"), "Audit.\n")
	writeTestFile(t, paths.InstalledPluginsFile(),
		`{"plugins":{"sec-tools@acme":[{"scope":"user","installPath":"`+install+`","version":"1.0.0"}]}}`)
	writeTestFile(t, paths.UserSettings(), `{"enabledPlugins":{"sec-tools@acme":false}}`)

	defs, err := s.ScanCommands(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 plugin command, got %d", len(defs))
	}
	d := defs[0]
	if d.Scope != ScopePluginUser || d.PluginName != "sec-tools@acme" || d.PluginEnabled {
		t.Errorf("plugin definition = %+v", d)
	}

	views := Resolve(defs)
	if views[0].State != StateRuntimeDisabled {
		t.Errorf("disabled plugin's command should resolve runtime-disabled, got %s", views[0].State)
	}
}

func TestProjects(t *testing.T) {
	s, paths := newTestScanner(t)
	writeTestFile(t, paths.ClaudeJSON(),
		`{"projects":{"/work/b":{},"/work/a":{"mcpServers":{}}}}`)

	projects, err := s.Projects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 || projects[0] != "/work/a" || projects[1] != "/work/b" {
		t.Errorf("projects = %v", projects)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantDesc string
		wantErr  bool
	}{
		{"with header", "---\ndescription: hello\n---\nbody\n", "hello", false},
		{"no header", "just a body\n", "", false},
		{"unterminated", "---\ndescription: x\n", "", true},
		{"bad yaml", "---\ndescription: [\n---\n", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, _, err := splitFrontmatter(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if meta.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", meta.Description, tt.wantDesc)
			}
		})
	}
}
