package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Writer creates, edits and removes the authoring artifacts behind entities.
// Writes are disabled-aware: editing an entity that is currently switched
// off updates the marker file in place, so the edit does not silently
// re-enable it.
type Writer struct {
	paths   *Paths
	toggler *Toggler
}

// NewWriter returns a Writer sharing the Toggler's per-entity locks.
func NewWriter(p *Paths, t *Toggler) *Writer {
	return &Writer{paths: p, toggler: t}
}

// entityPath returns the active artifact path for a file-backed entity.
func (w *Writer) entityPath(kind Kind, scope Scope, project, name string) (string, error) {
	if scope.IsPlugin() {
		return "", fmt.Errorf("%s %q is plugin-provided: %w", kind, name, ErrNotControllable)
	}
	switch kind {
	case KindCommand:
		return filepath.Join(w.paths.CommandsDir(scope, project), filepath.FromSlash(name)+".md"), nil
	case KindAgent:
		return filepath.Join(w.paths.AgentsDir(scope, project), filepath.FromSlash(name)+".md"), nil
	case KindSkill:
		return filepath.Join(w.paths.SkillsDir(scope, project), name, skillFileName), nil
	case KindMemory:
		if scope == ScopeUser {
			return w.paths.UserMemory(), nil
		}
		return w.paths.ProjectMemory(project), nil
	}
	return "", fmt.Errorf("%s %q: %w", kind, name, ErrNotControllable)
}

// WriteEntity writes an entity's content, creating it if needed. A disabled
// entity keeps its marker name and stays disabled.
func (w *Writer) WriteEntity(kind Kind, scope Scope, project, name, content string) error {
	active, err := w.entityPath(kind, scope, project, name)
	if err != nil {
		return err
	}

	lock := w.toggler.lockFor(active)
	lock.Lock()
	defer lock.Unlock()

	target := active
	if !fileExists(active) && fileExists(disabledPath(active)) {
		target = disabledPath(active)
	}
	return atomicWrite(target, []byte(content), 0o644)
}

// DeleteEntity removes an entity's backing artifact, whichever of the active
// and marker names is present. Skills lose their whole directory.
func (w *Writer) DeleteEntity(kind Kind, scope Scope, project, name string) error {
	active, err := w.entityPath(kind, scope, project, name)
	if err != nil {
		return err
	}

	lock := w.toggler.lockFor(active)
	lock.Lock()
	defer lock.Unlock()

	if !fileExists(active) && !fileExists(disabledPath(active)) {
		return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}

	if kind == KindSkill {
		return os.RemoveAll(filepath.Dir(active))
	}
	for _, p := range []string{active, disabledPath(active)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	cleanupEmptyDir(filepath.Dir(active))
	return nil
}

// cleanupEmptyDir removes a directory if it is empty.
func cleanupEmptyDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	if len(entries) == 0 {
		_ = os.Remove(dir)
	}
}

// UpsertMCPServer writes a server config into ~/.mcp.json, preserving every
// other key in the file.
func (w *Writer) UpsertMCPServer(name string, config json.RawMessage) error {
	if !gjson.ValidBytes(config) {
		return fmt.Errorf("mcp server %q config: %w", name, ErrMalformed)
	}

	path := w.paths.UserMCPJSON()
	lock := w.toggler.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	raw, err := readSettingsJSON(path)
	if err != nil {
		return err
	}
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) {
		return fmt.Errorf("%s: %w", path, ErrMalformed)
	}

	updated, err := sjson.SetRaw(raw, "mcpServers."+escapeJSONKey(name), string(config))
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	return atomicWrite(path, []byte(updated), 0o644)
}

// DeleteMCPServer removes a server from ~/.mcp.json and scrubs its name from
// the enablement arrays in the user settings, so a later server with the
// same name starts from a clean slate.
func (w *Writer) DeleteMCPServer(name string) error {
	path := w.paths.UserMCPJSON()
	lock := w.toggler.lockFor(path)
	lock.Lock()

	raw, err := readSettingsJSON(path)
	if err != nil {
		lock.Unlock()
		return err
	}
	if raw == "" || !gjson.Valid(raw) || !gjson.Get(raw, "mcpServers."+escapeJSONKey(name)).Exists() {
		lock.Unlock()
		return fmt.Errorf("mcp server %q: %w", name, ErrNotFound)
	}

	updated, err := sjson.Delete(raw, "mcpServers."+escapeJSONKey(name))
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("updating %s: %w", path, err)
	}
	if err := atomicWrite(path, []byte(updated), 0o644); err != nil {
		lock.Unlock()
		return err
	}
	lock.Unlock()

	settingsPath := w.paths.UserSettings()
	slock := w.toggler.lockFor(settingsPath)
	slock.Lock()
	defer slock.Unlock()

	settings, err := readSettingsJSON(settingsPath)
	if err != nil || settings == "" || !gjson.Valid(settings) {
		return err
	}
	settings, err = arrayRemove(settings, "enabledMcpjsonServers", name)
	if err == nil {
		settings, err = arrayRemove(settings, "disabledMcpjsonServers", name)
	}
	if err != nil {
		return fmt.Errorf("updating %s: %w", settingsPath, err)
	}
	return atomicWrite(settingsPath, []byte(settings), 0o644)
}
