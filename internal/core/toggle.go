package core

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// disabledSuffix marks a file as switched off. The file keeps its content and
// its place on disk; only the name changes, so re-enabling is a rename back.
const disabledSuffix = ".disabled"

// isDisabledPath reports whether a path carries the disable marker.
func isDisabledPath(path string) bool {
	return strings.HasSuffix(path, disabledSuffix)
}

// enabledPath strips the disable marker if present.
func enabledPath(path string) string {
	return strings.TrimSuffix(path, disabledSuffix)
}

// disabledPath appends the disable marker if not already present.
func disabledPath(path string) string {
	if isDisabledPath(path) {
		return path
	}
	return path + disabledSuffix
}

// Toggler flips file-backed entities between enabled and disabled by renaming
// their backing artifact. Each logical target is serialized by its own lock,
// so concurrent toggles of different entities never block each other.
type Toggler struct {
	paths *Paths
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewToggler returns a ready Toggler.
func NewToggler(p *Paths) *Toggler {
	return &Toggler{paths: p, locks: make(map[string]*sync.Mutex)}
}

func (t *Toggler) lockFor(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}

// SetDisabled moves the definition's backing file into the requested state.
// It is idempotent: asking for the state the file is already in succeeds
// without touching disk. The current state is re-read from disk, so a stale
// definition cannot cause a double rename.
func (t *Toggler) SetDisabled(def Definition, disabled bool) error {
	if def.Scope.IsPlugin() {
		return fmt.Errorf("%s %q is plugin-provided: %w", def.Kind, def.Name, ErrNotControllable)
	}
	switch def.Kind {
	case KindCommand, KindAgent, KindSkill, KindMemory:
	default:
		return fmt.Errorf("%s %q: %w", def.Kind, def.Name, ErrNotControllable)
	}

	active := enabledPath(def.Path)
	marker := disabledPath(active)

	lock := t.lockFor(active)
	lock.Lock()
	defer lock.Unlock()

	activeExists := fileExists(active)
	markerExists := fileExists(marker)

	if activeExists && markerExists {
		return fmt.Errorf("both %s and %s exist: %w", active, marker, ErrConflict)
	}

	if disabled {
		if markerExists {
			return nil
		}
		if !activeExists {
			return fmt.Errorf("%s %q: %w", def.Kind, def.Name, ErrNotFound)
		}
		if err := os.Rename(active, marker); err != nil {
			return fmt.Errorf("disabling %s: %w", active, err)
		}
		return nil
	}

	if activeExists {
		return nil
	}
	if !markerExists {
		return fmt.Errorf("%s %q: %w", def.Kind, def.Name, ErrNotFound)
	}
	if err := os.Rename(marker, active); err != nil {
		return fmt.Errorf("enabling %s: %w", marker, err)
	}
	return nil
}
