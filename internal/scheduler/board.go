// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import (
	"context"
	"sync"
)

// telemetryLink is the subset of powerboard.Link a board pull needs.
type telemetryLink interface {
	ReadTach(ctx context.Context) (rpm1, rpm2, rpm3 int, err error)
	ReadWattage(ctx context.Context) ([4]float64, error)
}

// boardState wraps one board's link with the two independent locks the
// scheduler needs: busy guards against overlapping ticks for this board,
// pending debounces user-driven manual writes.
type boardState struct {
	id   string
	link telemetryLink

	busy    sync.Mutex
	pending sync.Mutex

	mu        sync.Mutex
	lastTach  [3]int
	lastWatt  [4]float64
	available bool
}

func newBoardState(id string, link telemetryLink) *boardState {
	return &boardState{id: id, link: link}
}

// pull fetches tach and wattage for this tick. If a previous pull is still
// outstanding the tick is skipped for this board entirely, per the
// no-queueing rule.
func (b *boardState) pull(ctx context.Context) {
	if !b.busy.TryLock() {
		return
	}
	defer b.busy.Unlock()

	rpm1, rpm2, rpm3, err := b.link.ReadTach(ctx)
	if err != nil {
		return
	}
	watt, err := b.link.ReadWattage(ctx)
	if err != nil {
		return
	}

	b.mu.Lock()
	b.lastTach = [3]int{rpm1, rpm2, rpm3}
	b.lastWatt = watt
	b.available = true
	b.mu.Unlock()
}

// snapshot returns the last successfully pulled telemetry for this board.
func (b *boardState) snapshot() (tach [3]int, watt [4]float64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastTach, b.lastWatt, b.available
}
