// SPDX-License-Identifier: BSD-3-Clause

package drive

import "context"

// Snapshot is the subset of an external drive inventory's per-drive record
// the core consumes. Only TempCelsius and the Hash's presence as a map key
// are read; the rest exists so the external collaborator's full shape can
// be round-tripped without the core needing to understand it.
type Snapshot struct {
	Model                  string
	Serial                 string
	Firmware               string
	CapacityBytes          uint64
	Rotational             bool
	PowerOnHours           uint64
	PowerCycleCount        uint64
	TempCelsius            *float64
	ProtocolSpecificAttrs  map[string]string
}

// Registry is the external drive inventory contract (§6): a mapping from
// drive hash to its current snapshot, refreshed by an external collaborator
// on its own cadence (>=60s). The aggregator only ever reads it.
type Registry interface {
	Snapshot(ctx context.Context) (map[Hash]Snapshot, error)
}

// StaticRegistry is a Registry backed by a fixed, externally-updated map --
// the shape a poller refreshing on its own goroutine would hand off behind
// a mutex, exposed here as the narrow read-only contract the aggregator
// needs.
type StaticRegistry struct {
	snapshot map[Hash]Snapshot
}

// NewStaticRegistry wraps a drive-hash map as a Registry.
func NewStaticRegistry(snapshot map[Hash]Snapshot) *StaticRegistry {
	return &StaticRegistry{snapshot: snapshot}
}

// Snapshot implements Registry.
func (s *StaticRegistry) Snapshot(ctx context.Context) (map[Hash]Snapshot, error) {
	return s.snapshot, nil
}
