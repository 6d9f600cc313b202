package ux

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"booklib/internal/config"
)

// PreferencesVersion is the current schema version for preferences.json.
const PreferencesVersion = "1.0"

// UserPreferences is the persisted preferences schema.
type UserPreferences struct {
	// Version is the schema version for migration detection
	Version string `json:"version"`

	// View is the last layout used ("grid" or "list"). Empty means use config.
	View string `json:"view,omitempty"`

	// Metrics tracks local usage statistics
	Metrics UserMetrics `json:"metrics"`
}

// UserMetrics counts local interactions. Nothing leaves the machine.
type UserMetrics struct {
	SessionsCount int    `json:"sessions_count"`
	BooksAdded    int    `json:"books_added"`
	BooksUpdated  int    `json:"books_updated"`
	BooksDeleted  int    `json:"books_deleted"`
	LastSession   string `json:"last_session,omitempty"`
}

// PreferencesManager handles loading/saving preferences.
type PreferencesManager struct {
	mu          sync.RWMutex
	path        string
	preferences *UserPreferences
}

// NewPreferencesManager creates a preferences manager for the given workspace.
func NewPreferencesManager(workspace string) *PreferencesManager {
	return &PreferencesManager{
		path: filepath.Join(workspace, config.DirName, "preferences.json"),
	}
}

// Path returns the preferences file location.
func (pm *PreferencesManager) Path() string { return pm.path }

// Load reads preferences from disk, creating defaults if not exists.
func (pm *PreferencesManager) Load() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	data, err := os.ReadFile(pm.path)
	if err != nil {
		if os.IsNotExist(err) {
			pm.preferences = DefaultUserPreferences()
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if prefs.Version == "" {
		prefs.Version = PreferencesVersion
	}

	pm.preferences = &prefs
	return nil
}

// Save writes preferences to disk.
func (pm *PreferencesManager) Save() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.preferences == nil {
		pm.preferences = DefaultUserPreferences()
	}

	if err := os.MkdirAll(filepath.Dir(pm.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(pm.preferences, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(pm.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Get returns a copy of the current preferences.
func (pm *PreferencesManager) Get() UserPreferences {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.preferences == nil {
		return *DefaultUserPreferences()
	}
	return *pm.preferences
}

// View returns the remembered layout, or fallback when none was stored.
func (pm *PreferencesManager) View(fallback string) string {
	if v := pm.Get().View; v == config.ViewGrid || v == config.ViewList {
		return v
	}
	return fallback
}

// SetView remembers the layout. Unknown names are rejected.
func (pm *PreferencesManager) SetView(view string) error {
	if view != config.ViewGrid && view != config.ViewList {
		return fmt.Errorf("unknown view %q", view)
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.ensure()
	pm.preferences.View = view
	return nil
}

// RecordSession bumps the session counter and stamps the session time.
func (pm *PreferencesManager) RecordSession() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.ensure()
	pm.preferences.Metrics.SessionsCount++
	pm.preferences.Metrics.LastSession = time.Now().Format(time.RFC3339)
}

// IncrementMetric increments a numeric metric.
func (pm *PreferencesManager) IncrementMetric(metric string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.ensure()

	switch metric {
	case "books_added":
		pm.preferences.Metrics.BooksAdded++
	case "books_updated":
		pm.preferences.Metrics.BooksUpdated++
	case "books_deleted":
		pm.preferences.Metrics.BooksDeleted++
	default:
		return fmt.Errorf("unknown metric: %s", metric)
	}
	return nil
}

func (pm *PreferencesManager) ensure() {
	if pm.preferences == nil {
		pm.preferences = DefaultUserPreferences()
	}
}

// DefaultUserPreferences returns the preferences of a first session.
func DefaultUserPreferences() *UserPreferences {
	return &UserPreferences{Version: PreferencesVersion}
}
