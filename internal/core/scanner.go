package core

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const skillFileName = "SKILL.md"

// Scanner discovers entity definitions across every scope: the user layer
// under ~/.claude, the project layer under <project>/.claude, and the
// read-only plugin layer. Scans are point-in-time snapshots; they never
// mutate anything.
type Scanner struct {
	paths *Paths
}

// NewScanner creates a Scanner resolving locations through p.
func NewScanner(p *Paths) *Scanner {
	return &Scanner{paths: p}
}

// markdownLocation is one directory to scan for markdown-backed entities.
type markdownLocation struct {
	scope   Scope
	dir     string
	project string
	plugin  *PluginInfo
}

// ScanCommands finds slash command definitions in every scope. project may be
// "" to scan the user layer only.
func (s *Scanner) ScanCommands(ctx context.Context, project string) ([]Definition, error) {
	locs := []markdownLocation{{scope: ScopeUser, dir: s.paths.CommandsDir(ScopeUser, "")}}
	if project != "" {
		locs = append(locs, markdownLocation{scope: ScopeProject, dir: s.paths.CommandsDir(ScopeProject, project), project: project})
	}
	locs = append(locs, s.pluginLocations(project, "commands")...)
	return s.scanMarkdownLocations(ctx, KindCommand, locs)
}

// ScanAgents finds subagent definitions in every scope.
func (s *Scanner) ScanAgents(ctx context.Context, project string) ([]Definition, error) {
	locs := []markdownLocation{{scope: ScopeUser, dir: s.paths.AgentsDir(ScopeUser, "")}}
	if project != "" {
		locs = append(locs, markdownLocation{scope: ScopeProject, dir: s.paths.AgentsDir(ScopeProject, project), project: project})
	}
	locs = append(locs, s.pluginLocations(project, "agents")...)
	return s.scanMarkdownLocations(ctx, KindAgent, locs)
}

// ScanSkills finds skill directories in every scope. A skill is a directory
// holding a SKILL.md (or SKILL.md.disabled) with YAML frontmatter.
func (s *Scanner) ScanSkills(ctx context.Context, project string) ([]Definition, error) {
	locs := []markdownLocation{{scope: ScopeUser, dir: s.paths.SkillsDir(ScopeUser, "")}}
	if project != "" {
		locs = append(locs, markdownLocation{scope: ScopeProject, dir: s.paths.SkillsDir(ScopeProject, project), project: project})
	}
	locs = append(locs, s.pluginLocations(project, "skills")...)

	var defs []Definition
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		defs = append(defs, s.scanSkillDir(loc)...)
	}
	return defs, nil
}

// ScanMemory finds the memory files. The user and project memory are
// independent entities: each is toggled on its own, so they are named by
// scope rather than by filename.
func (s *Scanner) ScanMemory(ctx context.Context, project string) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var defs []Definition
	if d, ok := s.memoryAt(ScopeUser, s.paths.UserMemory(), ""); ok {
		defs = append(defs, d)
	}
	if project != "" {
		if d, ok := s.memoryAt(ScopeProject, s.paths.ProjectMemory(project), project); ok {
			defs = append(defs, d)
		}
	}
	return defs, nil
}

func (s *Scanner) memoryAt(scope Scope, path, project string) (Definition, bool) {
	active := fileExists(path)
	marker := fileExists(disabledPath(path))
	if !active && !marker {
		return Definition{}, false
	}
	def := Definition{
		Kind:        KindMemory,
		Name:        string(scope),
		Scope:       scope,
		Path:        path,
		Exists:      true,
		Disabled:    marker && !active,
		ProjectPath: project,
	}
	read := path
	if def.Disabled {
		read = disabledPath(path)
	}
	if active && marker {
		def.Err = fmt.Errorf("both %s and %s exist: %w", path, disabledPath(path), ErrConflict)
		return def, true
	}
	if info, err := os.Stat(read); err == nil {
		def.ModTime = info.ModTime()
	}
	content, err := readFileString(read)
	if err != nil {
		def.Err = err
		return def, true
	}
	def.Content = content
	return def, true
}

// ScanHooks collects the hooks block from each settings file. Hooks are
// view-only: they are reported per source file and never toggled here.
func (s *Scanner) ScanHooks(ctx context.Context, project string) ([]HooksEntry, error) {
	type src struct {
		scope Scope
		path  string
	}
	sources := []src{{ScopeUser, s.paths.UserSettings()}}
	if project != "" {
		sources = append(sources,
			src{ScopeProject, s.paths.SettingsFile(ScopeProject, project)},
			src{ScopeProjectLocal, s.paths.SettingsFile(ScopeProjectLocal, project)},
		)
	}

	var entries []HooksEntry
	for _, sc := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := HooksEntry{Source: sc.scope, Path: sc.path}
		raw, err := readSettingsJSON(sc.path)
		if err != nil {
			entry.Err = err
			entries = append(entries, entry)
			continue
		}
		if raw == "" {
			entries = append(entries, entry)
			continue
		}
		entry.Exists = true
		if !gjson.Valid(raw) {
			entry.Err = fmt.Errorf("%s: %w", sc.path, ErrMalformed)
			entries = append(entries, entry)
			continue
		}
		if hooks := gjson.Get(raw, "hooks"); hooks.Exists() {
			entry.Hooks = []byte(hooks.Raw)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// pluginLocations returns the asset directories contributed by enabled and
// disabled plugin installations.
func (s *Scanner) pluginLocations(project, sub string) []markdownLocation {
	plugins, err := s.ListPlugins(project)
	if err != nil {
		return nil
	}
	var locs []markdownLocation
	for i := range plugins {
		p := plugins[i]
		dir := filepath.Join(p.InstallPath, sub)
		if !dirExists(dir) {
			continue
		}
		locs = append(locs, markdownLocation{scope: p.Scope, dir: dir, project: p.ProjectPath, plugin: &plugins[i]})
	}
	return locs
}

func (s *Scanner) scanMarkdownLocations(ctx context.Context, kind Kind, locs []markdownLocation) ([]Definition, error) {
	var defs []Definition
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		defs = append(defs, s.scanMarkdownDir(kind, loc)...)
	}
	return defs, nil
}

// scanMarkdownDir walks one directory for .md and .md.disabled entries.
// Nested directories namespace the logical name with "/".
func (s *Scanner) scanMarkdownDir(kind Kind, loc markdownLocation) []Definition {
	var defs []Definition
	_ = filepath.WalkDir(loc.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		base := enabledPath(d.Name())
		if !strings.HasSuffix(base, ".md") {
			return nil
		}

		disabled := isDisabledPath(path)
		rel, relErr := filepath.Rel(loc.dir, enabledPath(path))
		if relErr != nil {
			return nil
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".md")

		def := Definition{
			Kind:        kind,
			Name:        name,
			Scope:       loc.scope,
			Path:        enabledPath(path),
			Exists:      true,
			Disabled:    disabled,
			ProjectPath: loc.project,
		}
		if loc.plugin != nil {
			def.PluginName = loc.plugin.Name
			def.PluginEnabled = loc.plugin.Enabled
		}
		if info, infoErr := d.Info(); infoErr == nil {
			def.ModTime = info.ModTime()
		}

		// A file present under both names is ambiguous; surface it rather
		// than guessing which copy counts.
		if disabled && fileExists(enabledPath(path)) {
			return nil
		}
		if !disabled && fileExists(disabledPath(path)) {
			def.Err = fmt.Errorf("both %s and %s exist: %w", path, disabledPath(path), ErrConflict)
			defs = append(defs, def)
			return nil
		}

		content, readErr := readFileString(path)
		if readErr != nil {
			def.Err = readErr
			defs = append(defs, def)
			return nil
		}
		def.Content = content
		if meta, _, fmErr := splitFrontmatter(content); fmErr == nil {
			def.Description = meta.Description
		}
		defs = append(defs, def)
		return nil
	})
	return defs
}

// scanSkillDir lists skill directories under one skills root.
func (s *Scanner) scanSkillDir(loc markdownLocation) []Definition {
	entries, err := os.ReadDir(loc.dir)
	if err != nil {
		return nil
	}
	var defs []Definition
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillDir := filepath.Join(loc.dir, entry.Name())
		activeMd := filepath.Join(skillDir, skillFileName)
		markerMd := disabledPath(activeMd)
		active := fileExists(activeMd)
		marker := fileExists(markerMd)
		if !active && !marker {
			continue
		}

		def := Definition{
			Kind:        KindSkill,
			Name:        entry.Name(),
			Scope:       loc.scope,
			Path:        activeMd,
			Exists:      true,
			Disabled:    marker && !active,
			ProjectPath: loc.project,
		}
		if loc.plugin != nil {
			def.PluginName = loc.plugin.Name
			def.PluginEnabled = loc.plugin.Enabled
		}
		if active && marker {
			def.Err = fmt.Errorf("both %s and %s exist: %w", activeMd, markerMd, ErrConflict)
			defs = append(defs, def)
			continue
		}

		read := activeMd
		if def.Disabled {
			read = markerMd
		}
		if info, statErr := os.Stat(read); statErr == nil {
			def.ModTime = info.ModTime()
		}
		content, readErr := readFileString(read)
		if readErr != nil {
			def.Err = readErr
			defs = append(defs, def)
			continue
		}
		def.Content = content
		meta, _, fmErr := splitFrontmatter(content)
		if fmErr != nil {
			def.Err = fmt.Errorf("%s: %w", read, ErrMalformed)
			defs = append(defs, def)
			continue
		}
		def.Description = meta.Description
		defs = append(defs, def)
	}
	return defs
}

// Projects lists the project directories recorded in ~/.claude.json.
func (s *Scanner) Projects() ([]string, error) {
	raw, err := readSettingsJSON(s.paths.ClaudeJSON())
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%s: %w", s.paths.ClaudeJSON(), ErrMalformed)
	}
	var projects []string
	gjson.Get(raw, "projects").ForEach(func(key, _ gjson.Result) bool {
		projects = append(projects, key.String())
		return true
	})
	sort.Strings(projects)
	return projects, nil
}

// frontmatter is the YAML header shared by commands, agents and skills.
type frontmatter struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	ArgumentHint string `yaml:"argument-hint"`
	Model        string `yaml:"model"`
}

// splitFrontmatter separates the YAML header from the markdown body. Content
// without a leading "---" is all body; that is not an error, since the header
// is optional for commands.
func splitFrontmatter(content string) (frontmatter, string, error) {
	var meta frontmatter

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "---" {
		return meta, content, nil
	}

	var header strings.Builder
	closed := false
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
		header.WriteString(line)
		header.WriteString("\n")
	}
	if !closed {
		return meta, content, fmt.Errorf("unterminated frontmatter")
	}

	var body strings.Builder
	for sc.Scan() {
		body.WriteString(sc.Text())
		body.WriteString("\n")
	}
	if err := yaml.Unmarshal([]byte(header.String()), &meta); err != nil {
		return meta, body.String(), fmt.Errorf("parsing frontmatter: %w", err)
	}
	return meta, body.String(), nil
}
