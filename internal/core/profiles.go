package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// originalProfileTitle names the snapshot profile created alongside the
// first user-made profile, so the pre-ccpilot settings stay selectable.
const originalProfileTitle = "Original Config"

// ProfileStore manages the profile index at ~/.ccpilot/profiles.json.
// All reads and writes go through one mutex; the file on disk is replaced
// atomically, never edited in place.
type ProfileStore struct {
	paths *Paths
	mu    sync.Mutex
}

// NewProfileStore returns a store over p's profiles file.
func NewProfileStore(p *Paths) *ProfileStore {
	return &ProfileStore{paths: p}
}

// load reads the index. A missing file is an empty index.
func (ps *ProfileStore) load() (profileIndex, error) {
	var idx profileIndex
	raw, err := readFileString(ps.paths.ProfilesFile())
	if err != nil {
		return idx, err
	}
	if raw == "" {
		return idx, nil
	}
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		return idx, fmt.Errorf("%s: %w", ps.paths.ProfilesFile(), ErrMalformed)
	}
	return idx, nil
}

func (ps *ProfileStore) save(idx profileIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(ps.paths.ProfilesFile(), append(data, '\n'), 0o644)
}

// List returns every profile ordered by creation time, oldest first.
func (ps *ProfileStore) List() ([]Profile, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	idx, err := ps.load()
	if err != nil {
		return nil, err
	}
	profiles := idx.Profiles
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt < profiles[j].CreatedAt
	})
	return profiles, nil
}

// Get returns the profile with the given id.
func (ps *ProfileStore) Get(id string) (Profile, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	idx, err := ps.load()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range idx.Profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("profile %q: %w", id, ErrNotFound)
}

// Active returns the profile currently marked as in use, or ok=false when
// the live settings are the original ones.
func (ps *ProfileStore) Active() (Profile, bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	idx, err := ps.load()
	if err != nil {
		return Profile{}, false, err
	}
	for _, p := range idx.Profiles {
		if p.Using {
			return p, true, nil
		}
	}
	return Profile{}, false, nil
}

// Create stores a new profile. An empty id gets a generated one; a supplied
// id that already exists is a conflict. settings may be nil for an empty
// profile. On the first ever create the current live settings are captured
// as a separate snapshot profile, so the pre-existing configuration remains
// one switch away.
func (ps *ProfileStore) Create(id, title string, settings json.RawMessage) (Profile, error) {
	if title == "" {
		return Profile{}, fmt.Errorf("profile title must not be empty")
	}
	if settings == nil {
		settings = json.RawMessage("{}")
	}
	if !gjson.ValidBytes(settings) {
		return Profile{}, fmt.Errorf("profile settings: %w", ErrMalformed)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	idx, err := ps.load()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range idx.Profiles {
		if id != "" && p.ID == id {
			return Profile{}, fmt.Errorf("profile %q: %w", id, ErrConflict)
		}
	}
	if id == "" {
		id = ps.uniqueID(idx)
	}

	if len(idx.Profiles) == 0 && title != originalProfileTitle {
		snapshot, err := ps.snapshotOriginal(idx)
		if err != nil {
			return Profile{}, err
		}
		if snapshot != nil {
			idx.Profiles = append(idx.Profiles, *snapshot)
		}
	}

	profile := Profile{
		ID:        id,
		Title:     title,
		CreatedAt: time.Now().UnixMilli(),
		Settings:  settings,
	}
	idx.Profiles = append(idx.Profiles, profile)
	if err := ps.save(idx); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// snapshotOriginal captures the live user settings into a profile. Returns
// nil when there is nothing to capture.
func (ps *ProfileStore) snapshotOriginal(idx profileIndex) (*Profile, error) {
	raw, err := readSettingsJSON(ps.paths.UserSettings())
	if err != nil {
		return nil, err
	}
	if raw == "" || !gjson.Valid(raw) {
		return nil, nil
	}
	return &Profile{
		ID:        ps.uniqueID(idx),
		Title:     originalProfileTitle,
		CreatedAt: time.Now().UnixMilli(),
		Settings:  json.RawMessage(raw),
	}, nil
}

func (ps *ProfileStore) uniqueID(idx profileIndex) string {
	for {
		id := newID()
		taken := false
		for _, p := range idx.Profiles {
			if p.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// Update replaces the title and/or settings of an existing profile. Empty
// title and nil settings each mean "leave unchanged".
func (ps *ProfileStore) Update(id, title string, settings json.RawMessage) (Profile, error) {
	if settings != nil && !gjson.ValidBytes(settings) {
		return Profile{}, fmt.Errorf("profile settings: %w", ErrMalformed)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	idx, err := ps.load()
	if err != nil {
		return Profile{}, err
	}
	for i := range idx.Profiles {
		if idx.Profiles[i].ID != id {
			continue
		}
		if title != "" {
			idx.Profiles[i].Title = title
		}
		if settings != nil {
			idx.Profiles[i].Settings = settings
		}
		if err := ps.save(idx); err != nil {
			return Profile{}, err
		}
		return idx.Profiles[i], nil
	}
	return Profile{}, fmt.Errorf("profile %q: %w", id, ErrNotFound)
}

// Duplicate copies a profile under a new id and title.
func (ps *ProfileStore) Duplicate(id, title string) (Profile, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	idx, err := ps.load()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range idx.Profiles {
		if p.ID != id {
			continue
		}
		if title == "" {
			title = p.Title + " Copy"
		}
		dup := Profile{
			ID:        ps.uniqueID(idx),
			Title:     title,
			CreatedAt: time.Now().UnixMilli(),
			Settings:  p.Settings,
		}
		idx.Profiles = append(idx.Profiles, dup)
		if err := ps.save(idx); err != nil {
			return Profile{}, err
		}
		return dup, nil
	}
	return Profile{}, fmt.Errorf("profile %q: %w", id, ErrNotFound)
}

// remove deletes a profile from the index without touching the live
// settings. The Switcher wraps this to restore first when the profile is
// active.
func (ps *ProfileStore) remove(id string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	idx, err := ps.load()
	if err != nil {
		return err
	}
	for i, p := range idx.Profiles {
		if p.ID == id {
			idx.Profiles = append(idx.Profiles[:i], idx.Profiles[i+1:]...)
			return ps.save(idx)
		}
	}
	return fmt.Errorf("profile %q: %w", id, ErrNotFound)
}

// setUsing marks exactly the given profile as in use; an empty id clears
// every flag.
func (ps *ProfileStore) setUsing(id string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	idx, err := ps.load()
	if err != nil {
		return err
	}
	found := id == ""
	for i := range idx.Profiles {
		using := idx.Profiles[i].ID == id
		idx.Profiles[i].Using = using
		if using {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	return ps.save(idx)
}
