// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Handle is an opaque, host-specific reference to a readable temperature
// source -- on Linux, a sysfs attribute path.
type Handle string

// discoveryCacheTTL is how long an enumeration result is trusted before a
// non-forced Refresh runs a fresh Discover.
const discoveryCacheTTL = 30 * time.Second

// Discoverer enumerates the host's available temperature sources.
type Discoverer interface {
	Discover(ctx context.Context) (map[string]Handle, error)
}

// Reader reads a single handle's current temperature in degrees Celsius.
// ok is false when the handle no longer resolves to a live reading.
type Reader interface {
	Read(ctx context.Context, h Handle) (celsius float64, ok bool)
}

type entry struct {
	displayName string
	handle      Handle
	group       Group
	ring        readingRing
	lastValue   float64
	lastOK      bool
	enabled     bool
}

// Registry is the sensor discovery and read cache described in §4.2. It
// owns no goroutines of its own; Refresh and RefreshReadings are invoked by
// the reconciliation scheduler on its own tick cadence.
type Registry struct {
	mu         sync.RWMutex
	discoverer Discoverer
	reader     Reader
	log        *slog.Logger

	lastDiscoveredAt time.Time
	entries          map[string]*entry // qualified name -> entry
}

// NewRegistry constructs a Registry backed by the host's hwmon sysfs tree.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		discoverer: hwmonDiscoverer{},
		reader:     hwmonReader{},
		log:        logger,
		entries:    make(map[string]*entry),
	}
}

// NewRegistryWithBackend constructs a Registry with injected discovery and
// read backends, for testing or alternate platforms.
func NewRegistryWithBackend(logger *slog.Logger, d Discoverer, r Reader) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		discoverer: d,
		reader:     r,
		log:        logger,
		entries:    make(map[string]*entry),
	}
}

// Refresh re-scans the host for available sensors if the cached
// enumeration has aged past discoveryCacheTTL, or unconditionally if
// force is true. Newly discovered handles are added; handles that
// vanished are dropped.
func (r *Registry) Refresh(ctx context.Context, force bool) error {
	r.mu.Lock()
	stale := force || time.Since(r.lastDiscoveredAt) >= discoveryCacheTTL
	r.mu.Unlock()
	if !stale {
		return nil
	}

	discovered, err := r.discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(discovered))
	for displayName, handle := range discovered {
		qualified := qualifiedName(classify(displayName), displayName)
		seen[qualified] = true
		if existing, ok := r.entries[qualified]; ok {
			existing.handle = handle
			continue
		}
		r.entries[qualified] = &entry{
			displayName: displayName,
			handle:      handle,
			group:       classify(displayName),
			enabled:     true,
		}
	}
	for name := range r.entries {
		if !seen[name] {
			delete(r.entries, name)
		}
	}
	r.lastDiscoveredAt = time.Now()
	return nil
}

// RefreshReadings reads every currently known sensor once, updating its
// cached value and, where a reading streak crosses stuckThreshold,
// demoting its group classification to Other; a sensor whose streak is
// broken by a differing reading gets its keyword classification back. It
// never mutates the set of
// known sensors -- call Refresh separately for that.
func (r *Registry) RefreshReadings(ctx context.Context) {
	r.mu.RLock()
	handles := make(map[string]Handle, len(r.entries))
	for name, e := range r.entries {
		if !e.enabled {
			continue
		}
		handles[name] = e.handle
	}
	r.mu.RUnlock()

	type result struct {
		name  string
		value float64
		ok    bool
	}
	results := make([]result, 0, len(handles))
	for name, h := range handles {
		v, ok := r.reader.Read(ctx, h)
		results = append(results, result{name: name, value: v, ok: ok})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if !e.enabled {
			e.lastOK = false
		}
	}
	for _, res := range results {
		e, ok := r.entries[res.name]
		if !ok {
			continue
		}
		e.lastOK = res.ok
		if !res.ok {
			continue
		}
		e.lastValue = res.value
		if e.ring.observe(res.value) {
			e.group = GroupOther
		} else {
			e.group = classify(e.displayName)
		}
	}
}

// Read returns the most recent cached reading for a qualified sensor name.
// ok is false if the name is unknown or its last read attempt failed.
func (r *Registry) Read(name string) (celsius float64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, found := r.entries[name]
	if !found || !e.lastOK {
		return 0, false
	}
	return e.lastValue, true
}

// Lookup implements curve.SensorLookup.
func (r *Registry) Lookup(name string) (float64, bool) {
	return r.Read(name)
}

// SetEnabled toggles whether a sensor's hardware is actually read on
// RefreshReadings. A disabled sensor is never removed from the registry --
// it simply reports ok=false, the same as a vanished handle -- mirroring
// the original temperature_sensor_service's enabled gate. Returns false if
// name is unknown.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	if !enabled {
		e.lastOK = false
	}
	return true
}

// Enabled reports whether a sensor is currently enabled for reading. ok is
// false if name is unknown.
func (r *Registry) Enabled(name string) (enabled, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, found := r.entries[name]
	if !found {
		return false, false
	}
	return e.enabled, true
}

// Names returns every currently known qualified sensor name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// NamesInGroup returns every currently known qualified sensor name whose
// advisory classification is group, for sensor-migration token matching.
func (r *Registry) NamesInGroup(group Group) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, e := range r.entries {
		if e.group == group {
			names = append(names, name)
		}
	}
	return names
}

func qualifiedName(g Group, displayName string) string {
	return string(g) + ":" + displayName
}

// hwmonDiscoverer enumerates /sys/class/hwmon temperature input attributes.
type hwmonDiscoverer struct{}

func (hwmonDiscoverer) Discover(ctx context.Context) (map[string]Handle, error) {
	devices, err := listHwmonDevicesCtx(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Handle)
	for _, dev := range devices {
		devName, err := readHwmonDeviceNameCtx(ctx, dev)
		if err != nil {
			continue
		}
		attrs, err := listHwmonTempAttrsCtx(ctx, dev)
		if err != nil {
			continue
		}
		for _, attr := range attrs {
			label := strings.TrimSuffix(filepath.Base(attr), "_input")
			displayName := devName + " " + label
			out[displayName] = Handle(filepath.Join(dev, attr))
		}
	}
	return out, nil
}

// hwmonReader reads a hwmon temp*_input file (millidegree integer) and
// converts it to Celsius.
type hwmonReader struct{}

func (hwmonReader) Read(ctx context.Context, h Handle) (float64, bool) {
	milli, ok := readHwmonMilliCtx(ctx, string(h))
	if !ok {
		return 0, false
	}
	return float64(milli) / 1000.0, true
}
