// Package storage persists the only local state ttr keeps: the currently
// running card timer. Time data itself lives in Trello's Power-Up storage
// and is never cached here.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkessler/ttr/internal/model"
)

func timerFilePath(base string) string {
	return filepath.Join(base, "timer.json")
}

// LoadTimer loads the active timer, or nil when none is running.
func LoadTimer(base string) (*model.ActiveTimer, error) {
	path := timerFilePath(base)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var timer model.ActiveTimer
	if err := json.Unmarshal(data, &timer); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return &timer, nil
}

// SaveTimer atomically writes the active timer state.
func SaveTimer(base string, timer model.ActiveTimer) error {
	path := timerFilePath(base)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(timer, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// ClearTimer removes the active timer state. Clearing an absent timer is
// not an error.
func ClearTimer(base string) error {
	err := os.Remove(timerFilePath(base))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error clearing timer: %w", err)
	}
	return nil
}
