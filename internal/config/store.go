// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wandercone/hakofoundry/pkg/file"
)

const (
	debounceWindow = 500 * time.Millisecond
	filePerm       = 0o644
	credentialPerm = 0o600
)

const (
	docLayout   = "layout.json"
	docProfiles = "profiles.json"
	docSensors  = "sensors.json"
	docService  = "service.json"
)

// Store owns the four on-disk documents and debounces their writes. All
// four share one RWMutex: readers of any document take a read lock,
// mutators take a write lock for the duration of the in-memory edit.
type Store struct {
	dir string
	log *slog.Logger

	mu       sync.RWMutex
	layout   Layout
	profiles ProfilesDocument
	sensors  SensorsDocument
	service  ServiceState

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// Open loads all four documents from dir, producing and persisting a
// default for any that is missing, then runs the id-assignment and
// drive-monitor rekey migrations.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &Store{dir: dir, log: logger, timers: make(map[string]*time.Timer)}

	if err := loadOrDefault(filepath.Join(dir, docLayout), &s.layout, defaultLayout); err != nil {
		return nil, err
	}
	if err := loadOrDefault(filepath.Join(dir, docProfiles), &s.profiles, defaultProfilesDocument); err != nil {
		return nil, err
	}
	if err := loadOrDefault(filepath.Join(dir, docSensors), &s.sensors, defaultSensorsDocument); err != nil {
		return nil, err
	}
	if err := loadOrDefault(filepath.Join(dir, docService), &s.service, defaultServiceState); err != nil {
		return nil, err
	}

	migrateProfiles(&s.profiles)
	migrateDriveMonitors(&s.sensors)

	return s, nil
}

// loadOrDefault reads and unmarshals path into dst, or produces def() and
// writes it back atomically if the file doesn't exist. A corrupt existing
// file also falls back to the default rather than failing Open, matching
// the "readers MUST tolerate" clause: a controller that can't start is
// worse than one that starts with factory settings.
func loadOrDefault[T any](path string, dst *T, def func() T) error {
	b, err := os.ReadFile(path)
	if err != nil {
		// A missing file gets a fresh default written back. A present but
		// unreadable file (permissions, I/O error) falls back the same
		// way rather than refusing to start.
		*dst = def()
		return writeDocument(path, *dst)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		*dst = def()
		return writeDocument(path, *dst)
	}
	*dst = v
	return nil
}

func writeDocument(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return file.AtomicCreateFile(path, b, filePerm)
	}
	return file.AtomicUpdateFile(path, b, filePerm)
}

// Layout returns a copy of the chassis/layout document.
func (s *Store) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// SetLayout replaces the chassis/layout document and schedules a
// debounced save.
func (s *Store) SetLayout(l Layout) {
	s.mu.Lock()
	s.layout = l
	s.mu.Unlock()
	s.scheduleSave(docLayout)
}

// Profiles returns a copy of the fan profiles document.
func (s *Store) Profiles() ProfilesDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles
}

// SetProfiles replaces the fan profiles document and schedules a
// debounced save.
func (s *Store) SetProfiles(p ProfilesDocument) {
	s.mu.Lock()
	s.profiles = p
	s.mu.Unlock()
	s.scheduleSave(docProfiles)
}

// Sensors returns a copy of the temperature sensors document.
func (s *Store) Sensors() SensorsDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sensors
}

// SetSensors replaces the temperature sensors document and schedules a
// debounced save.
func (s *Store) SetSensors(d SensorsDocument) {
	s.mu.Lock()
	s.sensors = d
	s.mu.Unlock()
	s.scheduleSave(docSensors)
}

// ServiceState returns a copy of the fan control service state document.
func (s *Store) ServiceState() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

// SetServiceState replaces the fan control service state document and
// schedules a debounced save. This is the document wall mode transitions,
// profile bindings, and manual commits all route through.
func (s *Store) SetServiceState(st ServiceState) {
	s.mu.Lock()
	s.service = st
	s.mu.Unlock()
	s.scheduleSave(docService)
}

// WriteCredentials persists an opaque credential blob with 0600
// permissions, bypassing the debounce entirely: a credential write is
// rare and should land immediately.
func (s *Store) WriteCredentials(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return file.AtomicCreateFile(path, data, credentialPerm)
	}
	return file.AtomicUpdateFile(path, data, credentialPerm)
}

// scheduleSave coalesces bursts of edits to the named document into at
// most one write per debounceWindow.
func (s *Store) scheduleSave(doc string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[doc]; ok {
		t.Stop()
	}
	s.timers[doc] = time.AfterFunc(debounceWindow, func() {
		if err := s.saveNow(doc); err != nil {
			s.log.Error("configuration save failed", "document", doc, "error", err)
		}
	})
}

// SaveImmediate bypasses debouncing and writes doc synchronously, for
// callers (mode transitions, profile bindings) that must not risk losing
// the edit to a crash before the debounce window elapses.
func (s *Store) SaveImmediate(doc string) error {
	s.timersMu.Lock()
	if t, ok := s.timers[doc]; ok {
		t.Stop()
		delete(s.timers, doc)
	}
	s.timersMu.Unlock()
	return s.saveNow(doc)
}

func (s *Store) saveNow(doc string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.dir, doc)
	switch doc {
	case docLayout:
		return writeDocument(path, s.layout)
	case docProfiles:
		return writeDocument(path, s.profiles)
	case docSensors:
		return writeDocument(path, s.sensors)
	case docService:
		return writeDocument(path, s.service)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDocument, doc)
	}
}
