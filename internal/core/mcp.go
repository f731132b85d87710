package core

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MCP server sources. The source decides both where the definition lives and
// which mechanism toggles it.
const (
	MCPSourceMCPJSON = "mcpjson" // .mcp.json manifests, toggled via settings arrays
	MCPSourceDirect  = "direct"  // ~/.claude.json entries, toggled via disabledMcpServers
	MCPSourcePlugin  = "plugin"  // plugin-shipped manifests, read-only
)

// MCPServerInfo is one MCP server with its resolved enablement.
type MCPServerInfo struct {
	Name         string          `json:"name"`
	Scope        Scope           `json:"scope"`
	Source       string          `json:"source"`
	Config       json.RawMessage `json:"config,omitempty"`
	State        State           `json:"state"`
	Controllable bool            `json:"controllable"`
	DefinedIn    string          `json:"definedIn"`
	PluginName   string          `json:"pluginName,omitempty"`
	Err          error           `json:"-"`
}

// mcpEnablement holds the merged settings arrays that control .mcp.json
// servers.
type mcpEnablement struct {
	enabled  map[string]bool
	disabled map[string]bool
}

// stateFor computes the three-state enablement of an .mcp.json server.
// A name only in the disabled array is disabled outright; a name in both
// arrays was approved once and then switched off at runtime.
func (e mcpEnablement) stateFor(name string) State {
	inEnabled := e.enabled[name]
	inDisabled := e.disabled[name]
	switch {
	case inDisabled && inEnabled:
		return StateRuntimeDisabled
	case inDisabled:
		return StateDisabled
	default:
		return StateEnabled
	}
}

// ScanMCPServers lists every MCP server visible from the given project:
// .mcp.json manifests at the user and project level, direct entries from
// ~/.claude.json, and plugin-shipped manifests.
func (s *Scanner) ScanMCPServers(ctx context.Context, project string) ([]MCPServerInfo, error) {
	var servers []MCPServerInfo

	enablement, err := s.mcpEnablement(project)
	if err != nil {
		return nil, err
	}

	type manifest struct {
		scope Scope
		path  string
	}
	manifests := []manifest{{ScopeUser, s.paths.UserMCPJSON()}}
	if project != "" {
		manifests = append(manifests, manifest{ScopeProject, s.paths.ProjectMCPJSON(project)})
	}

	for _, m := range manifests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := scanMCPManifest(m.path, m.scope, MCPSourceMCPJSON)
		if err != nil {
			servers = append(servers, MCPServerInfo{
				Scope: m.scope, Source: MCPSourceMCPJSON, DefinedIn: m.path, Err: err,
			})
			continue
		}
		for i := range found {
			found[i].State = enablement.stateFor(found[i].Name)
			found[i].Controllable = true
		}
		servers = append(servers, found...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	direct, err := s.scanDirectServers(project)
	if err != nil {
		return nil, err
	}
	servers = append(servers, direct...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plugins, err := s.ListPlugins(project)
	if err == nil {
		for _, p := range plugins {
			manifestPath := filepath.Join(p.InstallPath, ".mcp.json")
			if !fileExists(manifestPath) {
				continue
			}
			found, err := scanMCPManifest(manifestPath, p.Scope, MCPSourcePlugin)
			if err != nil {
				continue
			}
			for i := range found {
				found[i].PluginName = p.Name
				found[i].Controllable = false
				// The manifest itself stays enabled; a disabled plugin
				// switches its servers off at a higher layer.
				if p.Enabled {
					found[i].State = StateEnabled
				} else {
					found[i].State = StateRuntimeDisabled
				}
			}
			servers = append(servers, found...)
		}
	}

	sort.SliceStable(servers, func(i, j int) bool {
		if servers[i].Name != servers[j].Name {
			return servers[i].Name < servers[j].Name
		}
		return servers[i].Scope.precedence() < servers[j].Scope.precedence()
	})
	return servers, nil
}

// scanMCPManifest reads the mcpServers object from one .mcp.json file.
func scanMCPManifest(path string, scope Scope, source string) ([]MCPServerInfo, error) {
	raw, err := readSettingsJSON(path)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformed)
	}

	var servers []MCPServerInfo
	gjson.Get(raw, "mcpServers").ForEach(func(key, value gjson.Result) bool {
		servers = append(servers, MCPServerInfo{
			Name:      key.String(),
			Scope:     scope,
			Source:    source,
			Config:    []byte(value.Raw),
			DefinedIn: path,
		})
		return true
	})
	return servers, nil
}

// scanDirectServers reads servers declared straight in ~/.claude.json, both
// at the root and under this project's entry in the projects map.
func (s *Scanner) scanDirectServers(project string) ([]MCPServerInfo, error) {
	path := s.paths.ClaudeJSON()
	raw, err := readSettingsJSON(path)
	if err != nil {
		// An unreadable file degrades to one erroneous item, same as
		// malformed content, so the rest of the scan still lands.
		return []MCPServerInfo{{Scope: ScopeUser, Source: MCPSourceDirect, DefinedIn: path,
			Err: fmt.Errorf("%s: %w", path, err)}}, nil
	}
	if raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return []MCPServerInfo{{Scope: ScopeUser, Source: MCPSourceDirect, DefinedIn: path,
			Err: fmt.Errorf("%s: %w", path, ErrMalformed)}}, nil
	}

	collect := func(base string, scope Scope) []MCPServerInfo {
		disabled := make(map[string]bool)
		for _, v := range gjson.Get(raw, base+"disabledMcpServers").Array() {
			disabled[v.String()] = true
		}
		var servers []MCPServerInfo
		gjson.Get(raw, base+"mcpServers").ForEach(func(key, value gjson.Result) bool {
			state := StateEnabled
			if disabled[key.String()] {
				state = StateDisabled
			}
			servers = append(servers, MCPServerInfo{
				Name:         key.String(),
				Scope:        scope,
				Source:       MCPSourceDirect,
				Config:       []byte(value.Raw),
				State:        state,
				Controllable: true,
				DefinedIn:    path,
			})
			return true
		})
		return servers
	}

	servers := collect("", ScopeUser)
	if project != "" {
		base := "projects." + escapeJSONKey(project) + "."
		servers = append(servers, collect(base, ScopeProjectLocal)...)
	}
	return servers, nil
}

// mcpEnablement merges the enabledMcpjsonServers and disabledMcpjsonServers
// arrays from every settings layer visible from the project.
func (s *Scanner) mcpEnablement(project string) (mcpEnablement, error) {
	e := mcpEnablement{enabled: make(map[string]bool), disabled: make(map[string]bool)}
	files := []string{s.paths.UserSettings()}
	if project != "" {
		files = append(files,
			s.paths.SettingsFile(ScopeProject, project),
			s.paths.SettingsFile(ScopeProjectLocal, project),
		)
	}
	for _, f := range files {
		raw, err := readSettingsJSON(f)
		if err != nil {
			return e, err
		}
		if raw == "" || !gjson.Valid(raw) {
			continue
		}
		for _, v := range gjson.Get(raw, "enabledMcpjsonServers").Array() {
			e.enabled[v.String()] = true
		}
		for _, v := range gjson.Get(raw, "disabledMcpjsonServers").Array() {
			e.disabled[v.String()] = true
		}
	}
	return e, nil
}

// SetMCPServerDisabled flips one MCP server's enablement. For .mcp.json
// servers this edits the settings arrays: disabling moves the name into
// disabledMcpjsonServers and out of enabledMcpjsonServers, enabling removes
// it from the disabled array so an earlier approval takes over again. For
// direct servers it edits the disabledMcpServers array in ~/.claude.json.
// Plugin-shipped servers are refused.
func (t *Toggler) SetMCPServerDisabled(server MCPServerInfo, project string, disabled bool) error {
	switch server.Source {
	case MCPSourcePlugin:
		return fmt.Errorf("mcp server %q is plugin-provided: %w", server.Name, ErrNotControllable)
	case MCPSourceDirect:
		return t.setDirectServerDisabled(server, project, disabled)
	case MCPSourceMCPJSON:
		return t.setMCPJSONServerDisabled(server, project, disabled)
	}
	return fmt.Errorf("mcp server %q: %w", server.Name, ErrNotControllable)
}

func (t *Toggler) setMCPJSONServerDisabled(server MCPServerInfo, project string, disabled bool) error {
	var path string
	if server.Scope == ScopeUser || project == "" {
		path = t.paths.UserSettings()
	} else {
		path = t.paths.SettingsFile(ScopeProjectLocal, project)
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

	if disabled {
		raw, err = arrayAdd(raw, "disabledMcpjsonServers", server.Name)
		if err == nil {
			raw, err = arrayRemove(raw, "enabledMcpjsonServers", server.Name)
		}
	} else {
		raw, err = arrayRemove(raw, "disabledMcpjsonServers", server.Name)
	}
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	return atomicWrite(path, []byte(raw), 0o644)
}

func (t *Toggler) setDirectServerDisabled(server MCPServerInfo, project string, disabled bool) error {
	path := t.paths.ClaudeJSON()
	lock := t.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	raw, err := readSettingsJSON(path)
	if err != nil {
		return err
	}
	if raw == "" {
		return fmt.Errorf("mcp server %q: %w", server.Name, ErrNotFound)
	}
	if !gjson.Valid(raw) {
		return fmt.Errorf("%s: %w", path, ErrMalformed)
	}

	base := ""
	if server.Scope != ScopeUser && project != "" {
		base = "projects." + escapeJSONKey(project) + "."
	}
	if !gjson.Get(raw, base+"mcpServers."+escapeJSONKey(server.Name)).Exists() {
		return fmt.Errorf("mcp server %q: %w", server.Name, ErrNotFound)
	}

	if disabled {
		raw, err = arrayAdd(raw, base+"disabledMcpServers", server.Name)
	} else {
		raw, err = arrayRemove(raw, base+"disabledMcpServers", server.Name)
	}
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	return atomicWrite(path, []byte(raw), 0o644)
}

// arrayAdd appends value to the string array at path if not already present.
func arrayAdd(raw, path, value string) (string, error) {
	for _, v := range gjson.Get(raw, path).Array() {
		if v.String() == value {
			return raw, nil
		}
	}
	return sjson.Set(raw, path+".-1", value)
}

// arrayRemove deletes every occurrence of value from the string array at
// path. An empty array stays in place rather than being deleted, keeping the
// edit minimal.
func arrayRemove(raw, path, value string) (string, error) {
	arr := gjson.Get(raw, path)
	if !arr.Exists() {
		return raw, nil
	}
	var err error
	for {
		idx := -1
		for i, v := range gjson.Get(raw, path).Array() {
			if v.String() == value {
				idx = i
				break
			}
		}
		if idx < 0 {
			return raw, nil
		}
		raw, err = sjson.Delete(raw, fmt.Sprintf("%s.%d", path, idx))
		if err != nil {
			return raw, err
		}
	}
}
