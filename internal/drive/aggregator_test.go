// SPDX-License-Identifier: BSD-3-Clause

package drive

import (
	"context"
	"testing"
)

func celsius(v float64) *float64 { return &v }

// TestDriveMonitorAverage is S3: drives {h1:40, h2:50, h3:missing} average
// to 45.0; switching to maximum yields 50.0.
func TestDriveMonitorAverage(t *testing.T) {
	h1, h2, h3 := Hash(1), Hash(2), Hash(3)
	registry := NewStaticRegistry(map[Hash]Snapshot{
		h1: {TempCelsius: celsius(40)},
		h2: {TempCelsius: celsius(50)},
		// h3 intentionally absent from the registry (drive unplugged).
	})
	agg := NewAggregator(registry)
	agg.SetMonitor("curve-m", "M", []Hash{h1, h2, h3}, Average)

	if err := agg.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	got, ok := agg.Read("Drives.M")
	if !ok {
		t.Fatal("expected Drives.M to be available")
	}
	if got != 45.0 {
		t.Fatalf("average = %v, want 45.0", got)
	}

	agg.SetMonitor("curve-m", "M", []Hash{h1, h2, h3}, Maximum)
	if err := agg.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	got, ok = agg.Read("Drives.M")
	if !ok || got != 50.0 {
		t.Fatalf("maximum = (%v,%v), want (50.0,true)", got, ok)
	}
}

func TestDriveMonitorAllMissingIsUnavailable(t *testing.T) {
	registry := NewStaticRegistry(map[Hash]Snapshot{})
	agg := NewAggregator(registry)
	agg.SetMonitor("curve-m", "M", []Hash{Hash(1)}, Average)

	if err := agg.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if _, ok := agg.Read("Drives.M"); ok {
		t.Fatal("expected Drives.M unavailable when no selected drive has a reading")
	}
}

func TestDriveMonitorZeroTempTreatedAsMissing(t *testing.T) {
	h1 := Hash(1)
	registry := NewStaticRegistry(map[Hash]Snapshot{h1: {TempCelsius: celsius(0)}})
	agg := NewAggregator(registry)
	agg.SetMonitor("curve-m", "M", []Hash{h1}, Average)

	if err := agg.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if _, ok := agg.Read("Drives.M"); ok {
		t.Fatal("a drive reporting 0C must be treated as absent, not a real reading")
	}
}

// TestSetMonitorReplacesPriorBinding: creating a monitor for a curve that
// already has one replaces it rather than merging drive sets.
func TestSetMonitorReplacesPriorBinding(t *testing.T) {
	h1, h2 := Hash(1), Hash(2)
	registry := NewStaticRegistry(map[Hash]Snapshot{
		h1: {TempCelsius: celsius(30)},
		h2: {TempCelsius: celsius(90)},
	})
	agg := NewAggregator(registry)
	agg.SetMonitor("curve-m", "First", []Hash{h1}, Average)
	agg.SetMonitor("curve-m", "Second", []Hash{h2}, Average)

	if err := agg.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if _, ok := agg.Read("Drives.First"); ok {
		t.Fatal("prior monitor binding should have been replaced, not merged")
	}
	got, ok := agg.Read("Drives.Second")
	if !ok || got != 90.0 {
		t.Fatalf("Drives.Second = (%v,%v), want (90.0,true)", got, ok)
	}
}

// TestSetDrivesIdempotent is property 3: set_drives(S); set_drives(S)
// leaves state identical.
func TestSetDrivesIdempotent(t *testing.T) {
	h1 := Hash(1)
	registry := NewStaticRegistry(map[Hash]Snapshot{h1: {TempCelsius: celsius(40)}})
	agg := NewAggregator(registry)

	agg.SetMonitor("curve-m", "M", []Hash{h1}, Average)
	agg.SetMonitor("curve-m", "M", []Hash{h1}, Average)

	if err := agg.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	got, ok := agg.Read("Drives.M")
	if !ok || got != 40.0 {
		t.Fatalf("Drives.M = (%v,%v), want (40.0,true)", got, ok)
	}
}

func TestHashSerialStable(t *testing.T) {
	a := HashSerial("WD-WCC4N0123456")
	b := HashSerial("WD-WCC4N0123456")
	if a != b {
		t.Fatal("HashSerial must be stable for the same input")
	}
	if a == HashSerial("different-serial") {
		t.Fatal("HashSerial collided on two different inputs in this test")
	}
}
