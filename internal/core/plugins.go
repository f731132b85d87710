package core

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// loadInstalledPlugins reads the installation records. A missing file means
// no plugins are installed.
func loadInstalledPlugins(p *Paths) (map[string][]PluginInstall, error) {
	raw, err := readFileString(p.InstalledPluginsFile())
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var file installedPluginsFile
	if err := json.Unmarshal(standardizeJSON([]byte(raw)), &file); err != nil {
		return nil, fmt.Errorf("%s: %w", p.InstalledPluginsFile(), ErrMalformed)
	}
	for name, installs := range file.Plugins {
		for i := range installs {
			installs[i].InstallPath = expandPath(installs[i].InstallPath)
		}
		file.Plugins[name] = installs
	}
	return file.Plugins, nil
}

// pluginSettingsPath returns the settings file that governs enablement for
// an install at the given scope. Local installs answer to their project's
// settings.local.json, everything else to the user settings.
func pluginSettingsPath(p *Paths, scope Scope, projectPath string) (string, error) {
	if scope == ScopePluginLocal {
		if projectPath == "" {
			return "", fmt.Errorf("local plugin install has no project path")
		}
		return p.SettingsFile(ScopeProjectLocal, projectPath), nil
	}
	return p.UserSettings(), nil
}

// ListPlugins returns every plugin installation visible from the given
// project, user-scope installs plus local installs recorded for that project.
// Enablement comes from the enabledPlugins object in the settings file that
// matches the install's scope; a plugin absent from that object counts as
// enabled, and so does one whose settings file cannot be read.
func (s *Scanner) ListPlugins(project string) ([]PluginInfo, error) {
	installed, err := loadInstalledPlugins(s.paths)
	if err != nil {
		return nil, err
	}
	if len(installed) == 0 {
		return nil, nil
	}

	settingsCache := make(map[string]string)
	settingsFor := func(path string) string {
		if raw, ok := settingsCache[path]; ok {
			return raw
		}
		raw, err := readSettingsJSON(path)
		if err != nil {
			raw = ""
		}
		settingsCache[path] = raw
		return raw
	}

	var plugins []PluginInfo
	for name, installs := range installed {
		for _, inst := range installs {
			var scope Scope
			switch inst.Scope {
			case "local":
				if project == "" || inst.ProjectPath != project {
					continue
				}
				scope = ScopePluginLocal
			default:
				scope = ScopePluginUser
			}

			enabled := true
			if path, err := pluginSettingsPath(s.paths, scope, inst.ProjectPath); err == nil {
				if raw := settingsFor(path); raw != "" {
					if v := gjson.Get(raw, "enabledPlugins."+escapeJSONKey(name)); v.Exists() {
						enabled = v.Bool()
					}
				}
			}

			plugins = append(plugins, PluginInfo{
				Name:        name,
				Scope:       scope,
				Version:     inst.Version,
				ProjectPath: inst.ProjectPath,
				Enabled:     enabled,
				Packages:    detectPackages(inst.InstallPath),
				InstallPath: inst.InstallPath,
				InstalledAt: inst.InstalledAt,
			})
		}
	}

	sort.Slice(plugins, func(i, j int) bool {
		if plugins[i].Name != plugins[j].Name {
			return plugins[i].Name < plugins[j].Name
		}
		return plugins[i].Scope < plugins[j].Scope
	})
	return plugins, nil
}

// detectPackages probes which asset kinds a plugin install ships.
func detectPackages(installPath string) PluginPackages {
	return PluginPackages{
		HasAgents:   dirExists(filepath.Join(installPath, "agents")),
		HasSkills:   dirExists(filepath.Join(installPath, "skills")),
		HasCommands: dirExists(filepath.Join(installPath, "commands")),
		HasMCP:      fileExists(filepath.Join(installPath, ".mcp.json")),
	}
}

// SetPluginEnabled records an install's enablement in the enabledPlugins
// object of the settings file governing its scope, leaving every other
// settings key untouched. Local installs write to their project's
// settings.local.json, user installs to the user settings.
func (t *Toggler) SetPluginEnabled(plugin PluginInfo, enabled bool) error {
	installed, err := loadInstalledPlugins(t.paths)
	if err != nil {
		return err
	}
	if _, ok := installed[plugin.Name]; !ok {
		return fmt.Errorf("plugin %q: %w", plugin.Name, ErrNotFound)
	}

	path, err := pluginSettingsPath(t.paths, plugin.Scope, plugin.ProjectPath)
	if err != nil {
		return err
	}
	lock := t.lockFor(path)
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

	updated, err := sjson.Set(raw, "enabledPlugins."+escapeJSONKey(plugin.Name), enabled)
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	return atomicWrite(path, []byte(updated), 0o644)
}
