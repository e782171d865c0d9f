// SPDX-License-Identifier: BSD-3-Clause

package drive

import (
	"context"
	"math"
	"sync"
	"time"
)

// Mode is a drive monitor's aggregation function.
type Mode string

const (
	Average Mode = "average"
	Maximum Mode = "maximum"
)

// Monitor is a named aggregator over a subset of drives, bound 1:1 to a
// curve by curve id. Its persistence key is the curve id, not its name.
type Monitor struct {
	CurveID     string
	Name        string
	Hashes      map[Hash]struct{}
	Mode        Mode
	lastValue   float64
	lastOK      bool
	lastUpdated time.Time
}

// SaveFunc is invoked whenever a monitor's binding changes -- created,
// replaced, or removed -- so the daemon can persist the edit back to the
// sensors document. It mirrors fanwall.SaveFunc.
type SaveFunc func(curveID string)

// MonitorRecord is a read-only snapshot of one monitor's binding, for a
// caller that needs to persist it without reaching into Aggregator's
// internal set representation.
type MonitorRecord struct {
	CurveID string
	Name    string
	Hashes  []Hash
	Mode    Mode
}

// Aggregator holds every drive monitor and recomputes their published
// readings once per tick from a Registry snapshot.
type Aggregator struct {
	mu       sync.RWMutex
	registry Registry
	monitors map[string]*Monitor // keyed by curve id
	onSave   SaveFunc
}

// NewAggregator constructs an Aggregator reading from registry.
func NewAggregator(registry Registry) *Aggregator {
	return &Aggregator{registry: registry, monitors: make(map[string]*Monitor)}
}

// SetSaveFunc registers fn to be called whenever SetMonitor or
// RemoveMonitor changes a binding. It is a post-construction setter, like
// fanwall.Controller.SetApplyFunc, since the config store the daemon wires
// it to is itself constructed alongside the aggregator.
func (a *Aggregator) SetSaveFunc(fn SaveFunc) {
	a.mu.Lock()
	a.onSave = fn
	a.mu.Unlock()
}

// SetMonitor creates or replaces the monitor bound to curveID. Because
// binding is 1:1 with a curve, this always fully replaces any prior monitor
// at that key rather than merging into it.
func (a *Aggregator) SetMonitor(curveID, name string, hashes []Hash, mode Mode) {
	set := make(map[Hash]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}

	a.mu.Lock()
	a.monitors[curveID] = &Monitor{CurveID: curveID, Name: name, Hashes: set, Mode: mode}
	save := a.onSave
	a.mu.Unlock()
	if save != nil {
		save(curveID)
	}
}

// RemoveMonitor deletes the monitor bound to curveID, if any.
func (a *Aggregator) RemoveMonitor(curveID string) {
	a.mu.Lock()
	delete(a.monitors, curveID)
	save := a.onSave
	a.mu.Unlock()
	if save != nil {
		save(curveID)
	}
}

// Monitor returns a snapshot of the monitor bound to curveID, or ok=false
// if no monitor is bound there.
func (a *Aggregator) Monitor(curveID string) (MonitorRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.monitors[curveID]
	if !ok {
		return MonitorRecord{}, false
	}
	hashes := make([]Hash, 0, len(m.Hashes))
	for h := range m.Hashes {
		hashes = append(hashes, h)
	}
	return MonitorRecord{CurveID: m.CurveID, Name: m.Name, Hashes: hashes, Mode: m.Mode}, true
}

// Tick refreshes every monitor's published reading from one Registry
// snapshot, so all monitors observe the same drive state within a single
// reconciliation pass.
func (a *Aggregator) Tick(ctx context.Context) error {
	snapshot, err := a.registry.Snapshot(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range a.monitors {
		var readings []float64
		for h := range m.Hashes {
			drv, ok := snapshot[h]
			if !ok || drv.TempCelsius == nil || *drv.TempCelsius <= 0 {
				continue
			}
			readings = append(readings, *drv.TempCelsius)
		}
		if len(readings) == 0 {
			m.lastOK = false
			continue
		}
		m.lastValue = aggregate(m.Mode, readings)
		m.lastOK = true
		m.lastUpdated = time.Now()
	}
	return nil
}

func aggregate(mode Mode, readings []float64) float64 {
	switch mode {
	case Maximum:
		max := readings[0]
		for _, r := range readings[1:] {
			if r > max {
				max = r
			}
		}
		return max
	default:
		var sum float64
		for _, r := range readings {
			sum += r
		}
		mean := sum / float64(len(readings))
		return math.Round(mean*10) / 10
	}
}

// Read returns the most recently computed reading for a qualified name of
// the form "Drives.<MonitorName>". ok is false if no monitor has that name
// or its last tick found no readable drives.
func (a *Aggregator) Read(name string) (float64, bool) {
	const prefix = "Drives."
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	monitorName := name[len(prefix):]

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, m := range a.monitors {
		if m.Name == monitorName {
			if !m.lastOK {
				return 0, false
			}
			return m.lastValue, true
		}
	}
	return 0, false
}

// Lookup implements curve.SensorLookup for the "Drives." namespace.
func (a *Aggregator) Lookup(name string) (float64, bool) {
	return a.Read(name)
}
