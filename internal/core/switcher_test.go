package core

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestSwitcher(t *testing.T) (*Switcher, *ProfileStore, *Paths) {
	t.Helper()
	home := t.TempDir()
	paths := NewPathsWithHome(home)
	store := NewProfileStore(paths)
	return NewSwitcher(paths, store), store, paths
}

func TestActivateCapturesBackupThenMerges(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	original := `{"model":"sonnet","statusLine":{"type":"command"}}`
	writeTestFile(t, paths.UserSettings(), original)

	p, err := store.Create("", "Work", json.RawMessage(`{"model":"opus"}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}

	// Backup holds the verbatim original bytes.
	var rec backupRecord
	data, err := os.ReadFile(paths.BackupFile())
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if !rec.Existed || rec.Content != original {
		t.Errorf("backup = %+v, want verbatim original", rec)
	}

	// Live settings: profile key applied, untouched keys preserved.
	live, _ := os.ReadFile(paths.UserSettings())
	if gjson.GetBytes(live, "model").String() != "opus" {
		t.Errorf("profile key not applied: %s", live)
	}
	if gjson.GetBytes(live, "statusLine.type").String() != "command" {
		t.Errorf("unrelated key lost: %s", live)
	}

	status, err := sw.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status.State != SwitchOverridden || status.Profile == nil || status.Profile.ID != p.ID {
		t.Errorf("status = %+v", status)
	}
}

func TestActivateSecondProfileKeepsBackup(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	original := `{"model":"sonnet"}`
	writeTestFile(t, paths.UserSettings(), original)

	a, _ := store.Create("", "A", json.RawMessage(`{"model":"opus"}`))
	b, _ := store.Create("", "B", json.RawMessage(`{"model":"haiku"}`))

	if err := sw.Activate(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := sw.Activate(b.ID); err != nil {
		t.Fatal(err)
	}

	var rec backupRecord
	data, _ := os.ReadFile(paths.BackupFile())
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Content != original {
		t.Error("backup was overwritten by a second activate")
	}

	if err := sw.RestoreOriginal(); err != nil {
		t.Fatal(err)
	}
	live, _ := os.ReadFile(paths.UserSettings())
	if string(live) != original {
		t.Errorf("restore not byte-identical: %s", live)
	}
}

func TestRestoreIdempotentAndKeepsBackup(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	writeTestFile(t, paths.UserSettings(), `{"model":"sonnet"}`)
	p, _ := store.Create("", "Work", json.RawMessage(`{"model":"opus"}`))

	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}
	if err := sw.RestoreOriginal(); err != nil {
		t.Fatal(err)
	}
	if err := sw.RestoreOriginal(); err != nil {
		t.Fatalf("second restore must be a no-op, got %v", err)
	}
	if !fileExists(paths.BackupFile()) {
		t.Error("backup must be retained after restore")
	}

	status, _ := sw.Status()
	if status.State != SwitchOriginal {
		t.Errorf("state = %s", status.State)
	}
}

func TestActivateWithoutLiveSettings(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	p, _ := store.Create("", "Fresh", json.RawMessage(`{"model":"opus"}`))

	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}

	var rec backupRecord
	data, _ := os.ReadFile(paths.BackupFile())
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Existed {
		t.Error("backup should record that no settings file existed")
	}

	if err := sw.RestoreOriginal(); err != nil {
		t.Fatal(err)
	}
	if fileExists(paths.UserSettings()) {
		t.Error("restore should remove the settings file that did not exist before")
	}
}

func TestActivateRecapturesAfterRestore(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	writeTestFile(t, paths.UserSettings(), `{"model":"sonnet"}`)
	p, _ := store.Create("", "Work", json.RawMessage(`{"model":"opus"}`))

	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}
	if err := sw.RestoreOriginal(); err != nil {
		t.Fatal(err)
	}

	// The user edits their settings between override sessions.
	writeTestFile(t, paths.UserSettings(), `{"model":"sonnet","theme":"light"}`)
	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}

	var rec backupRecord
	data, _ := os.ReadFile(paths.BackupFile())
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if gjson.Get(rec.Content, "theme").String() != "light" {
		t.Error("new override session must recapture the edited settings")
	}
}

func TestDeleteActiveProfileRestoresFirst(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	original := `{"model":"sonnet"}`
	writeTestFile(t, paths.UserSettings(), original)
	p, _ := store.Create("", "Work", json.RawMessage(`{"model":"opus"}`))

	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}
	if err := sw.DeleteProfile(p.ID); err != nil {
		t.Fatal(err)
	}

	live, _ := os.ReadFile(paths.UserSettings())
	if string(live) != original {
		t.Errorf("deleting the active profile must restore first, got %s", live)
	}
	if _, err := store.Get(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("profile should be gone, got %v", err)
	}
}

func TestRestoreWithoutBackupWhileOverridden(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	writeTestFile(t, paths.UserSettings(), `{}`)
	p, _ := store.Create("", "Work", json.RawMessage(`{"model":"opus"}`))
	if err := sw.Activate(p.ID); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(paths.BackupFile()); err != nil {
		t.Fatal(err)
	}

	if err := sw.RestoreOriginal(); !errors.Is(err, ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
}

func TestConcurrentActivates(t *testing.T) {
	sw, store, paths := newTestSwitcher(t)
	original := `{"model":"sonnet"}`
	writeTestFile(t, paths.UserSettings(), original)

	a, _ := store.Create("", "A", json.RawMessage(`{"model":"opus"}`))
	b, _ := store.Create("", "B", json.RawMessage(`{"model":"haiku"}`))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := a.ID
		if i%2 == 1 {
			id = b.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sw.Activate(id)
		}()
	}
	wg.Wait()

	// Whatever interleaving won, the backup still holds the original and
	// exactly one profile is marked in use.
	var rec backupRecord
	data, _ := os.ReadFile(paths.BackupFile())
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Content != original {
		t.Error("backup corrupted by concurrent activates")
	}
	profiles, _ := store.List()
	using := 0
	for _, p := range profiles {
		if p.Using {
			using++
		}
	}
	if using != 1 {
		t.Errorf("exactly one profile must be in use, got %d", using)
	}
}
