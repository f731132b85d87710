package core

import "errors"

// Sentinel errors returned by core operations. Callers match with errors.Is.
var (
	// ErrNotFound means the named entity or profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a rename or create would collide with an existing
	// path or name.
	ErrConflict = errors.New("already exists")

	// ErrNotControllable means the entity's owning scope does not permit
	// toggling from the current context, e.g. plugin-provided artifacts.
	ErrNotControllable = errors.New("not controllable at this scope")

	// ErrMalformed means a source file could not be parsed.
	ErrMalformed = errors.New("malformed file")

	// ErrInconsistent means the live settings slot could not be brought in
	// line with the recorded state; manual inspection of the backup is
	// required before further switches.
	ErrInconsistent = errors.New("settings state inconsistent, inspect backup")
)
