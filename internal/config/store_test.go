// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wandercone/hakofoundry/internal/curve"
)

func TestOpenCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, name := range []string{docLayout, docProfiles, docSensors, docService} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to be written on first Open: %v", name, err)
		}
	}

	if s.Layout().Product == "" {
		t.Fatal("expected default layout to have a non-empty product")
	}
	if len(s.ServiceState().Walls) != 4 {
		t.Fatalf("default service state walls = %d, want 4", len(s.ServiceState().Walls))
	}
}

func TestOpenReloadsPreviouslySavedState(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l := s1.Layout()
	l.Product = "custom-chassis"
	s1.SetLayout(l)
	if err := s1.SaveImmediate(docLayout); err != nil {
		t.Fatalf("SaveImmediate: %v", err)
	}

	s2, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if s2.Layout().Product != "custom-chassis" {
		t.Fatalf("Product = %q, want custom-chassis", s2.Layout().Product)
	}
}

func TestSaveImmediateBypassesDebounce(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	st := s.ServiceState()
	st.Automatic = false
	s.SetServiceState(st)
	if err := s.SaveImmediate(docService); err != nil {
		t.Fatalf("SaveImmediate: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, docService))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var onDisk ServiceState
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if onDisk.Automatic {
		t.Fatal("expected the immediate save to have persisted Automatic=false")
	}
}

func TestScheduleSaveCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 5; i++ {
		l := s.Layout()
		l.Product = "burst"
		s.SetLayout(l)
	}

	time.Sleep(debounceWindow + 100*time.Millisecond)

	b, err := os.ReadFile(filepath.Join(dir, docLayout))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var onDisk Layout
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if onDisk.Product != "burst" {
		t.Fatalf("Product = %q, want burst (last write of the burst)", onDisk.Product)
	}
}

func TestUnknownTopLevelFieldsSurviveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, docLayout)

	written := []byte(`{"product":"hakofoundry","unit_fahrenheit":false,"dialogs_seen":{},"default_pwm":{"1":50,"2":50,"3":50,"4":50},"theme":"dark","ui_version":7}`)
	if err := os.WriteFile(path, written, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	l := s.Layout()
	l.Product = "renamed-chassis"
	s.SetLayout(l)
	if err := s.SaveImmediate(docLayout); err != nil {
		t.Fatalf("SaveImmediate: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if onDisk["product"] != "renamed-chassis" {
		t.Fatalf("product = %v, want renamed-chassis", onDisk["product"])
	}
	if onDisk["theme"] != "dark" {
		t.Fatalf("theme = %v, want dark to have survived the round trip", onDisk["theme"])
	}
	if onDisk["ui_version"] != float64(7) {
		t.Fatalf("ui_version = %v, want 7 to have survived the round trip", onDisk["ui_version"])
	}
}

func TestMigrateProfilesAssignsIDsAndNames(t *testing.T) {
	doc := ProfilesDocument{
		Profiles: map[string]curve.Profile{
			"Quiet": {
				Curves: map[string]*curve.Curve{
					"CPU": {SensorName: "CPU:Package", Points: []curve.Point{{X: 30, Y: 20}, {X: 70, Y: 100}}},
				},
			},
		},
	}
	migrateProfiles(&doc)

	p := doc.Profiles["Quiet"]
	if p.ID == "" || p.Name != "Quiet" {
		t.Fatalf("profile = %+v, want assigned ID and Name=Quiet", p)
	}
	c := p.Curves["CPU"]
	if c.ID == "" || c.Name != "CPU" {
		t.Fatalf("curve = %+v, want assigned ID and Name=CPU", c)
	}
}

func TestMigrateDriveMonitorsRekeysToID(t *testing.T) {
	doc := SensorsDocument{
		DriveMonitors: map[string]DriveMonitorRecord{
			"Bay Temperatures": {Name: "Bay Temperatures", Mode: "average"},
		},
	}
	migrateDriveMonitors(&doc)

	if _, stillLegacy := doc.DriveMonitors["Bay Temperatures"]; stillLegacy {
		t.Fatal("legacy display-name key should have been rekeyed away")
	}
	found := false
	for id, rec := range doc.DriveMonitors {
		if rec.Name == "Bay Temperatures" {
			found = true
			if id != rec.ID {
				t.Fatalf("map key %q != record ID %q", id, rec.ID)
			}
		}
	}
	if !found {
		t.Fatal("expected the migrated record to still be present under its new key")
	}
}
