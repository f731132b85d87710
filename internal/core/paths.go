package core

import (
	"os"
	"path/filepath"
)

// Paths resolves every file location ccpilot reads or writes. All lookups go
// through a single home root so tests can point the whole tool at a temp
// directory.
type Paths struct {
	home string
}

// NewPaths resolves against the real user home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{home: home}, nil
}

// NewPathsWithHome is used by tests to operate on a custom root.
func NewPathsWithHome(home string) *Paths {
	return &Paths{home: home}
}

// Home returns the resolved home directory.
func (p *Paths) Home() string { return p.home }

// StateDir is ccpilot's own state directory.
func (p *Paths) StateDir() string { return filepath.Join(p.home, ".ccpilot") }

// ProfilesFile holds the stored profile index.
func (p *Paths) ProfilesFile() string { return filepath.Join(p.StateDir(), "profiles.json") }

// BackupFile holds the snapshot of the live settings taken before the first
// profile override.
func (p *Paths) BackupFile() string { return filepath.Join(p.StateDir(), "settings.backup.json") }

// ClaudeDir is the Claude Code user configuration directory.
func (p *Paths) ClaudeDir() string { return filepath.Join(p.home, ".claude") }

// ProjectsDir holds the per-project session transcripts.
func (p *Paths) ProjectsDir() string { return filepath.Join(p.ClaudeDir(), "projects") }

// UserSettings is the live guarded settings slot.
func (p *Paths) UserSettings() string { return filepath.Join(p.ClaudeDir(), "settings.json") }

// ClaudeJSON is the per-user runtime state file with the projects map.
func (p *Paths) ClaudeJSON() string { return filepath.Join(p.home, ".claude.json") }

// UserMCPJSON is the user-level MCP server manifest.
func (p *Paths) UserMCPJSON() string { return filepath.Join(p.home, ".mcp.json") }

// UserMemory is the user-level memory file.
func (p *Paths) UserMemory() string { return filepath.Join(p.ClaudeDir(), "CLAUDE.md") }

// PluginsDir is where Claude Code keeps plugin state.
func (p *Paths) PluginsDir() string { return filepath.Join(p.ClaudeDir(), "plugins") }

// InstalledPluginsFile records every plugin installation.
func (p *Paths) InstalledPluginsFile() string {
	return filepath.Join(p.PluginsDir(), "installed_plugins.json")
}

// MarketplacesFile records synced plugin marketplaces.
func (p *Paths) MarketplacesFile() string {
	return filepath.Join(p.PluginsDir(), "marketplaces.json")
}

// CommandsDir returns the commands directory for a scope. project may be ""
// for the user scope.
func (p *Paths) CommandsDir(scope Scope, project string) string {
	if scope == ScopeUser {
		return filepath.Join(p.ClaudeDir(), "commands")
	}
	return filepath.Join(project, ".claude", "commands")
}

// AgentsDir returns the agents directory for a scope.
func (p *Paths) AgentsDir(scope Scope, project string) string {
	if scope == ScopeUser {
		return filepath.Join(p.ClaudeDir(), "agents")
	}
	return filepath.Join(project, ".claude", "agents")
}

// SkillsDir returns the skills directory for a scope.
func (p *Paths) SkillsDir(scope Scope, project string) string {
	if scope == ScopeUser {
		return filepath.Join(p.ClaudeDir(), "skills")
	}
	return filepath.Join(project, ".claude", "skills")
}

// ProjectMemory is the project-level memory file.
func (p *Paths) ProjectMemory(project string) string {
	return filepath.Join(project, "CLAUDE.md")
}

// ProjectMCPJSON is the project-level MCP server manifest.
func (p *Paths) ProjectMCPJSON(project string) string {
	return filepath.Join(project, ".mcp.json")
}

// SettingsFile returns the settings file for a scope. Plugin scopes have no
// settings file of their own and fall back to the user settings.
func (p *Paths) SettingsFile(scope Scope, project string) string {
	switch scope {
	case ScopeProject:
		return filepath.Join(project, ".claude", "settings.json")
	case ScopeProjectLocal:
		return filepath.Join(project, ".claude", "settings.local.json")
	default:
		return p.UserSettings()
	}
}
