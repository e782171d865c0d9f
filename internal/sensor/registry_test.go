// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"testing"
)

type fakeDiscoverer struct {
	handles map[string]Handle
	err     error
}

func (f fakeDiscoverer) Discover(ctx context.Context) (map[string]Handle, error) {
	return f.handles, f.err
}

type fakeReader struct {
	values map[Handle]float64
	absent map[Handle]bool
}

func (f fakeReader) Read(ctx context.Context, h Handle) (float64, bool) {
	if f.absent[h] {
		return 0, false
	}
	v, ok := f.values[h]
	return v, ok
}

func TestClassify(t *testing.T) {
	cases := map[string]Group{
		"CPU Package id 0":   GroupCPU,
		"Core 3":             GroupCPU,
		"GPU Core":           GroupGPU,
		"radeon edge":        GroupGPU,
		"nvme0n1 Composite":  GroupStorage,
		"ACPI thermal zone":  GroupSystem,
		"VRM SOC":            GroupSystem,
		"totally unknown":    GroupOther,
	}
	for name, want := range cases {
		if got := classify(name); got != want {
			t.Fatalf("classify(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestRegistryDiscoverAndRead(t *testing.T) {
	disc := fakeDiscoverer{handles: map[string]Handle{
		"CPU Package id 0": "/fake/temp1_input",
	}}
	reader := fakeReader{values: map[Handle]float64{"/fake/temp1_input": 55.5}}
	reg := NewRegistryWithBackend(nil, disc, reader)

	if err := reg.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	reg.RefreshReadings(context.Background())

	got, ok := reg.Read("CPU:CPU Package id 0")
	if !ok {
		t.Fatal("expected reading to be available")
	}
	if got != 55.5 {
		t.Fatalf("Read = %v, want 55.5", got)
	}
}

func TestRegistryReadUnknownNameUnavailable(t *testing.T) {
	reg := NewRegistryWithBackend(nil, fakeDiscoverer{handles: map[string]Handle{}}, fakeReader{})
	if _, ok := reg.Read("CPU:Nonexistent"); ok {
		t.Fatal("expected unavailable for unknown sensor name")
	}
}

func TestRegistryVanishedHandleReadFails(t *testing.T) {
	disc := fakeDiscoverer{handles: map[string]Handle{"GPU Core": "/fake/temp2_input"}}
	reader := fakeReader{absent: map[Handle]bool{"/fake/temp2_input": true}}
	reg := NewRegistryWithBackend(nil, disc, reader)

	if err := reg.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	reg.RefreshReadings(context.Background())

	if _, ok := reg.Read("GPU:GPU Core"); ok {
		t.Fatal("expected unavailable when the reader reports the handle is gone")
	}
}

// TestStuckSensorDemotesToOther exercises the supplemented stuck-sensor
// behavior: 20 identical readings demote the group to Other without
// changing the reading itself.
func TestStuckSensorDemotesToOther(t *testing.T) {
	disc := fakeDiscoverer{handles: map[string]Handle{"CPU Package id 0": "/fake/temp1_input"}}
	reader := fakeReader{values: map[Handle]float64{"/fake/temp1_input": 42.0}}
	reg := NewRegistryWithBackend(nil, disc, reader)

	if err := reg.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	const qualified = "CPU:CPU Package id 0"
	for i := 0; i < stuckThreshold; i++ {
		reg.RefreshReadings(context.Background())
	}

	val, ok := reg.Read(qualified)
	if !ok || val != 42.0 {
		t.Fatalf("Read after stuck streak = (%v,%v), want (42.0,true)", val, ok)
	}

	found := false
	for _, name := range reg.NamesInGroup(GroupOther) {
		if name == qualified {
			found = true
		}
	}
	if !found {
		t.Fatal("expected stuck sensor to be reclassified into Other group")
	}
}

func TestDiscoveryCacheNotReScannedWithoutForce(t *testing.T) {
	calls := 0
	disc := discovererFunc(func(ctx context.Context) (map[string]Handle, error) {
		calls++
		return map[string]Handle{}, nil
	})
	reg := NewRegistryWithBackend(nil, disc, fakeReader{})

	if err := reg.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := reg.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 discovery call within cache TTL, got %d", calls)
	}
}

type discovererFunc func(ctx context.Context) (map[string]Handle, error)

func (f discovererFunc) Discover(ctx context.Context) (map[string]Handle, error) {
	return f(ctx)
}
