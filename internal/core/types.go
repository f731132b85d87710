// Package core provides the business logic for ccpilot.
// It has zero UI dependencies and is independently testable.
package core

import (
	"encoding/json"
	"time"
)

// Kind identifies an entity type managed by ccpilot.
type Kind string

const (
	KindCommand Kind = "command"
	KindAgent   Kind = "agent"
	KindSkill   Kind = "skill"
	KindMemory  Kind = "memory"
	KindHook    Kind = "hook"
	KindMCP     Kind = "mcp"
	KindPlugin  Kind = "plugin"
)

// Scope is the layer at which a definition is declared.
type Scope string

const (
	ScopeUser         Scope = "user"
	ScopeProject      Scope = "project"
	ScopeProjectLocal Scope = "project-local"
	ScopePluginUser   Scope = "plugin-user"
	ScopePluginLocal  Scope = "plugin-local"
)

// precedence returns the rank of a scope. Lower rank wins when the same
// logical name is defined at several scopes. Plugin scopes rank last: they
// are visible but never become the authoring definition.
func (s Scope) precedence() int {
	switch s {
	case ScopeProjectLocal:
		return 0
	case ScopeProject:
		return 1
	case ScopeUser:
		return 2
	case ScopePluginLocal:
		return 3
	case ScopePluginUser:
		return 4
	}
	return 5
}

// IsPlugin reports whether the scope is plugin-provided.
func (s Scope) IsPlugin() bool {
	return s == ScopePluginUser || s == ScopePluginLocal
}

// State is the resolved effective status of an entity.
type State string

const (
	StateEnabled         State = "enabled"
	StateDisabled        State = "disabled"
	StateRuntimeDisabled State = "runtime-disabled"
)

// Definition is one per-scope declaration of a logical entity.
// Within a single scope a logical name has at most one definition.
type Definition struct {
	Kind        Kind            `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Scope       Scope           `json:"scope"`
	Path        string          `json:"path"`              // backing artifact on disk
	Content     string          `json:"content,omitempty"` // raw content for file-backed kinds
	Config      json.RawMessage `json:"config,omitempty"`  // structured config for mcp/hook kinds
	Exists      bool            `json:"exists"`
	Disabled    bool            `json:"disabled"` // disable marker present at this scope
	// RuntimeDisabled marks definitions that stay on disk but are switched
	// off through settings, e.g. MCP servers listed in both enabled and
	// disabled arrays.
	RuntimeDisabled bool      `json:"runtimeDisabled,omitempty"`
	ModTime         time.Time `json:"modTime,omitempty"`

	// Plugin provenance, set for plugin-* scopes.
	PluginName    string `json:"pluginName,omitempty"`
	PluginEnabled bool   `json:"pluginEnabled,omitempty"`

	ProjectPath string `json:"projectPath,omitempty"`

	// Err is a per-item read/parse failure. A definition with Err set still
	// participates in resolution but is never reported as enabled.
	Err error `json:"-"`
}

// EffectiveView is the resolved, single view of a logical entity after
// applying scope precedence across all of its definitions.
type EffectiveView struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	State State  `json:"state"`

	// Authoring is the highest-precedence non-plugin definition, whose
	// content is "the" editable content. Nil when only plugin definitions
	// exist.
	Authoring *Definition `json:"authoring,omitempty"`

	// Definitions holds every definition that fed this view, all scopes
	// included, highest precedence first.
	Definitions []Definition `json:"definitions"`

	// Controllable reports whether the owning scope permits rename/write
	// operations from the current context.
	Controllable bool `json:"controllable"`

	Err error `json:"-"`
}

// Profile is a named, storable alternative configuration for Claude Code.
type Profile struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt int64           `json:"createdAt"`
	Settings  json.RawMessage `json:"settings"`
	Using     bool            `json:"using"`
}

// profileIndex is the on-disk shape of ~/.ccpilot/profiles.json.
type profileIndex struct {
	Profiles []Profile `json:"profiles"`
}

// PluginInstall is one installation record from installed_plugins.json.
type PluginInstall struct {
	Scope        string `json:"scope"` // "user" | "local"
	InstallPath  string `json:"installPath"`
	Version      string `json:"version"`
	InstalledAt  string `json:"installedAt"`
	LastUpdated  string `json:"lastUpdated"`
	GitCommitSHA string `json:"gitCommitSha"`
	ProjectPath  string `json:"projectPath,omitempty"`
}

// installedPluginsFile mirrors ~/.claude/plugins/installed_plugins.json.
type installedPluginsFile struct {
	Plugins map[string][]PluginInstall `json:"plugins"`
}

// PluginPackages reports which asset directories a plugin ships.
type PluginPackages struct {
	HasAgents   bool `json:"hasAgents"`
	HasSkills   bool `json:"hasSkills"`
	HasCommands bool `json:"hasCommands"`
	HasMCP      bool `json:"hasMcp"`
}

// PluginInfo is the effective view of one plugin installation.
type PluginInfo struct {
	Name        string         `json:"name"`
	Scope       Scope          `json:"scope"`
	Version     string         `json:"version"`
	ProjectPath string         `json:"projectPath,omitempty"`
	Enabled     bool           `json:"enabled"`
	Packages    PluginPackages `json:"packages"`
	InstallPath string         `json:"installPath"`
	InstalledAt string         `json:"installedAt"`
}

// Marketplace is a synced plugin marketplace known to the tool.
type Marketplace struct {
	Name string `json:"name"`
	Repo string `json:"repo"` // recorded source, e.g. "acme/plugins" or a clone URL
}

// HooksEntry is the hooks block found in one settings file.
type HooksEntry struct {
	Source Scope           `json:"source"`
	Path   string          `json:"path"`
	Exists bool            `json:"exists"`
	Hooks  json.RawMessage `json:"hooks,omitempty"`
	Err    error           `json:"-"`
}
