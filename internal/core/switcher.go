package core

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SwitchState says whose settings occupy the live slot.
type SwitchState string

const (
	// SwitchOriginal means ~/.claude/settings.json holds the user's own
	// configuration, untouched by ccpilot.
	SwitchOriginal SwitchState = "original"
	// SwitchOverridden means a profile's settings occupy the live slot and
	// the original is parked in the backup file.
	SwitchOverridden SwitchState = "overridden"
)

// SwitchStatus reports the switch engine's view of the live slot.
type SwitchStatus struct {
	State        SwitchState `json:"state"`
	Profile      *Profile    `json:"profile,omitempty"`
	BackupExists bool        `json:"backupExists"`
}

// backupRecord is the on-disk shape of settings.backup.json. Content holds
// the verbatim bytes of the live file so a restore is byte-identical;
// Existed distinguishes "file was empty" from "file was not there".
type backupRecord struct {
	Existed    bool   `json:"existed"`
	Content    string `json:"content,omitempty"`
	CapturedAt int64  `json:"capturedAt"`
}

// Switcher swaps profile settings in and out of the live slot. The backup is
// written durably before the live file is first touched, so the original
// settings survive any later failure. All operations are serialized.
type Switcher struct {
	paths *Paths
	store *ProfileStore
	mu    sync.Mutex
}

// NewSwitcher returns a Switcher over the given store.
func NewSwitcher(p *Paths, store *ProfileStore) *Switcher {
	return &Switcher{paths: p, store: store}
}

// Activate puts the profile's settings into the live slot. Coming from the
// original state it first captures the live file into the backup; coming
// from an already overridden state the backup is left alone, since it still
// holds the user's own settings. The profile's keys are merged over the live
// document, so keys the profile does not mention keep their current values.
func (sw *Switcher) Activate(id string) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	profile, err := sw.store.Get(id)
	if err != nil {
		return err
	}

	_, overridden, err := sw.store.Active()
	if err != nil {
		return err
	}
	if !overridden {
		if err := sw.captureBackup(); err != nil {
			return fmt.Errorf("capturing settings backup: %w", err)
		}
	}

	live, err := readSettingsJSON(sw.paths.UserSettings())
	if err != nil {
		return err
	}
	if live == "" {
		live = "{}"
	}
	if !gjson.Valid(live) {
		return fmt.Errorf("%s: %w", sw.paths.UserSettings(), ErrMalformed)
	}

	merged := live
	var mergeErr error
	gjson.ParseBytes(profile.Settings).ForEach(func(key, value gjson.Result) bool {
		merged, mergeErr = sjson.SetRaw(merged, escapeJSONKey(key.String()), value.Raw)
		return mergeErr == nil
	})
	if mergeErr != nil {
		return fmt.Errorf("merging profile %q: %w", id, mergeErr)
	}

	if err := atomicWrite(sw.paths.UserSettings(), []byte(merged), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	if err := sw.store.setUsing(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	return nil
}

// captureBackup snapshots the live settings file, fsynced before rename so
// the backup is on disk before the live slot is ever modified.
func (sw *Switcher) captureBackup() error {
	rec := backupRecord{CapturedAt: time.Now().UnixMilli()}
	data, err := os.ReadFile(sw.paths.UserSettings())
	switch {
	case err == nil:
		rec.Existed = true
		rec.Content = string(data)
	case os.IsNotExist(err):
		rec.Existed = false
	default:
		return err
	}

	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteSync(sw.paths.BackupFile(), append(payload, '\n'), 0o600)
}

// RestoreOriginal puts the user's own settings back into the live slot and
// clears the active flag. The backup file is kept and re-applied on every
// call that finds one, so repeating the restore is harmless; only with no
// backup and nothing active does the call do nothing.
func (sw *Switcher) RestoreOriginal() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.restoreLocked()
}

func (sw *Switcher) restoreLocked() error {
	_, overridden, err := sw.store.Active()
	if err != nil {
		return err
	}

	raw, err := readFileString(sw.paths.BackupFile())
	if err != nil {
		return err
	}
	if raw == "" {
		if !overridden {
			return nil
		}
		return fmt.Errorf("backup missing while a profile is active: %w", ErrInconsistent)
	}

	var rec backupRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return fmt.Errorf("%s: %w", sw.paths.BackupFile(), ErrMalformed)
	}

	if rec.Existed {
		if err := atomicWrite(sw.paths.UserSettings(), []byte(rec.Content), 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	} else {
		if err := os.Remove(sw.paths.UserSettings()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return sw.store.setUsing("")
}

// DeleteProfile removes a profile. Deleting the active profile restores the
// original settings first, so the live slot never points at a profile that
// no longer exists.
func (sw *Switcher) DeleteProfile(id string) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	profile, err := sw.store.Get(id)
	if err != nil {
		return err
	}
	if profile.Using {
		if err := sw.restoreLocked(); err != nil {
			return err
		}
	}
	return sw.store.remove(id)
}

// Status reports whether the live slot is original or overridden, and by
// which profile.
func (sw *Switcher) Status() (SwitchStatus, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	status := SwitchStatus{State: SwitchOriginal, BackupExists: fileExists(sw.paths.BackupFile())}
	profile, overridden, err := sw.store.Active()
	if err != nil {
		return status, err
	}
	if overridden {
		status.State = SwitchOverridden
		status.Profile = &profile
	}
	return status, nil
}
