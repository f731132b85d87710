package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestWriter(t *testing.T) (*Writer, *Paths) {
	t.Helper()
	paths := NewPathsWithHome(t.TempDir())
	return NewWriter(paths, NewToggler(paths)), paths
}

func TestWriteEntityCreates(t *testing.T) {
	w, paths := newTestWriter(t)

	if err := w.WriteEntity(KindCommand, ScopeUser, "", "deploy", "Deploy.\n"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(paths.CommandsDir(ScopeUser, ""), "deploy.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Deploy.\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteEntityKeepsDisabledState(t *testing.T) {
	w, paths := newTestWriter(t)
	active := filepath.Join(paths.AgentsDir(ScopeUser, ""), "reviewer.md")
	writeTestFile(t, disabledPath(active), "old\n")

	if err := w.WriteEntity(KindAgent, ScopeUser, "", "reviewer", "new\n"); err != nil {
		t.Fatal(err)
	}
	if fileExists(active) {
		t.Error("editing a disabled entity must not re-enable it")
	}
	data, _ := os.ReadFile(disabledPath(active))
	if string(data) != "new\n" {
		t.Errorf("marker content = %q", data)
	}
}

func TestWriteEntityPluginScope(t *testing.T) {
	w, _ := newTestWriter(t)
	err := w.WriteEntity(KindCommand, ScopePluginUser, "", "x", "body")
	if !errors.Is(err, ErrNotControllable) {
		t.Errorf("expected ErrNotControllable, got %v", err)
	}
}

func TestDeleteEntity(t *testing.T) {
	w, paths := newTestWriter(t)
	path := filepath.Join(paths.CommandsDir(ScopeUser, ""), "old.md")
	writeTestFile(t, path, "x\n")

	if err := w.DeleteEntity(KindCommand, ScopeUser, "", "old"); err != nil {
		t.Fatal(err)
	}
	if fileExists(path) {
		t.Error("file should be removed")
	}
	if err := w.DeleteEntity(KindCommand, ScopeUser, "", "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSkillRemovesDirectory(t *testing.T) {
	w, paths := newTestWriter(t)
	dir := filepath.Join(paths.SkillsDir(ScopeUser, ""), "pdf")
	writeTestFile(t, filepath.Join(dir, "SKILL.md"), "---\nname: pdf\n---\n")
	writeTestFile(t, filepath.Join(dir, "scripts", "run.sh"), "#!/bin/sh\n")

	if err := w.DeleteEntity(KindSkill, ScopeUser, "", "pdf"); err != nil {
		t.Fatal(err)
	}
	if dirExists(dir) {
		t.Error("skill directory should be removed entirely")
	}
}

func TestUpsertMCPServer(t *testing.T) {
	w, paths := newTestWriter(t)
	writeTestFile(t, paths.UserMCPJSON(), `{"mcpServers":{"old":{"command":"o"}},"other":1}`)

	if err := w.UpsertMCPServer("new", []byte(`{"command":"n","args":["--x"]}`)); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(paths.UserMCPJSON())
	if gjson.GetBytes(raw, "mcpServers.new.command").String() != "n" {
		t.Errorf("server not written: %s", raw)
	}
	if gjson.GetBytes(raw, "mcpServers.old.command").String() != "o" || gjson.GetBytes(raw, "other").Int() != 1 {
		t.Errorf("unrelated keys lost: %s", raw)
	}

	if err := w.UpsertMCPServer("bad", []byte(`{oops`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestDeleteMCPServerScrubsArrays(t *testing.T) {
	w, paths := newTestWriter(t)
	writeTestFile(t, paths.UserMCPJSON(), `{"mcpServers":{"gh":{"command":"g"}}}`)
	writeTestFile(t, paths.UserSettings(),
		`{"enabledMcpjsonServers":["gh","keep"],"disabledMcpjsonServers":["gh"]}`)

	if err := w.DeleteMCPServer("gh"); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(paths.UserMCPJSON())
	if gjson.GetBytes(raw, "mcpServers.gh").Exists() {
		t.Error("server should be gone from the manifest")
	}
	settings, _ := os.ReadFile(paths.UserSettings())
	if gjson.GetBytes(settings, `enabledMcpjsonServers.#(=="gh")`).Exists() ||
		gjson.GetBytes(settings, `disabledMcpjsonServers.#(=="gh")`).Exists() {
		t.Errorf("arrays not scrubbed: %s", settings)
	}
	if !gjson.GetBytes(settings, `enabledMcpjsonServers.#(=="keep")`).Exists() {
		t.Error("other array entries must survive")
	}

	if err := w.DeleteMCPServer("gh"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
