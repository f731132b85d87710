package core

import "sort"

// Resolve collapses per-scope definitions into one effective view per logical
// entity. It is a pure function of its input: grouping is by (kind, name),
// ordering within a group is by scope precedence with newer files winning a
// same-scope tie, and the resulting state comes from the winning definition.
func Resolve(defs []Definition) []EffectiveView {
	groups := make(map[string][]Definition)
	var order []string
	for _, d := range defs {
		key := string(d.Kind) + "\x00" + d.Name
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}
	sort.Strings(order)

	views := make([]EffectiveView, 0, len(order))
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			pi, pj := group[i].Scope.precedence(), group[j].Scope.precedence()
			if pi != pj {
				return pi < pj
			}
			if !group[i].ModTime.Equal(group[j].ModTime) {
				return group[i].ModTime.After(group[j].ModTime)
			}
			return group[i].Path < group[j].Path
		})
		views = append(views, resolveGroup(group))
	}
	return views
}

func resolveGroup(group []Definition) EffectiveView {
	view := EffectiveView{
		Kind:        group[0].Kind,
		Name:        group[0].Name,
		Definitions: group,
	}

	for i := range group {
		if !group[i].Scope.IsPlugin() {
			view.Authoring = &group[i]
			break
		}
	}

	if view.Authoring != nil {
		winner := view.Authoring
		view.Controllable = winner.Kind != KindHook
		view.Err = winner.Err
		switch {
		case winner.Err != nil:
			view.State = StateDisabled
		case winner.Disabled:
			view.State = StateDisabled
		case winner.RuntimeDisabled:
			view.State = StateRuntimeDisabled
		default:
			view.State = StateEnabled
		}
		return view
	}

	// Plugin-only entity: visible, never toggleable here. Its state follows
	// the owning plugin's enablement; the files stay on disk when the plugin
	// is switched off, so that reads as runtime-disabled rather than
	// disabled.
	winner := group[0]
	view.Controllable = false
	view.Err = winner.Err
	switch {
	case winner.Err != nil:
		view.State = StateDisabled
	case !winner.PluginEnabled:
		view.State = StateRuntimeDisabled
	default:
		view.State = StateEnabled
	}
	return view
}
