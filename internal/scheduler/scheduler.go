// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/arunsworld/nursery"

	"github.com/wandercone/hakofoundry/internal/curve"
)

// SensorRefresher is the C2 surface the scheduler drives every tick.
type SensorRefresher interface {
	Refresh(ctx context.Context, force bool) error
	RefreshReadings(ctx context.Context)
	Lookup(name string) (float64, bool)
	Names() []string
}

// DriveTicker is the C3 surface the scheduler drives every tick.
type DriveTicker interface {
	Tick(ctx context.Context) error
	Lookup(name string) (float64, bool)
}

// WallController is the C5 surface the scheduler drives every tick.
type WallController interface {
	SetProfiles(profiles map[string]curve.Profile)
	ComputeTargets(lookup curve.SensorLookup)
	Apply(ctx context.Context) error
}

// Scheduler is the C6 reconciliation loop. It owns no board wiring of its
// own beyond the telemetry pull: fan wall targets and applies are
// delegated to a WallController, sensors to a SensorRefresher, drives to a
// DriveTicker.
type Scheduler struct {
	config

	boardsMu sync.RWMutex
	boards   map[string]*boardState

	sensors SensorRefresher
	drives  DriveTicker
	walls   WallController

	automaticMu sync.RWMutex
}

// New constructs a Scheduler. sensors, drives, and walls may be nil in
// tests that only exercise a subset of a tick.
func New(sensors SensorRefresher, drives DriveTicker, walls WallController, opts ...Option) *Scheduler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Scheduler{
		config:  cfg,
		boards:  make(map[string]*boardState),
		sensors: sensors,
		drives:  drives,
		walls:   walls,
	}
}

// AddBoard registers a board's telemetry link under id (e.g. "location-1").
// A board never registered is simply absent from every tick.
func (s *Scheduler) AddBoard(id string, link telemetryLink) {
	s.boardsMu.Lock()
	defer s.boardsMu.Unlock()
	s.boards[id] = newBoardState(id, link)
}

// SetAutomatic toggles whether Tick recomputes and applies profile-derived
// targets. Manual walls are unaffected either way.
func (s *Scheduler) SetAutomatic(enabled bool) {
	s.automaticMu.Lock()
	s.automatic = enabled
	s.automaticMu.Unlock()
}

func (s *Scheduler) isAutomatic() bool {
	s.automaticMu.RLock()
	defer s.automaticMu.RUnlock()
	return s.automatic
}

// Run blocks until ctx is canceled, driving full ticks on the configured
// telemetry interval and, on the configured curve interval, recomputing and
// applying wall targets while automatic control is on. It runs as one
// supervised child under cirello.io/oversight/v2.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.telemetryInterval)
	defer ticker.Stop()
	curveTicker := time.NewTicker(s.curveInterval)
	defer curveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		case <-curveTicker.C:
			if s.walls != nil && s.isAutomatic() {
				s.walls.ComputeTargets(combinedLookup{sensors: s.sensors, drives: s.drives})
				if err := s.walls.Apply(ctx); err != nil {
					s.logger.WarnContext(ctx, "wall apply failed", "error", err)
				}
			}
		}
	}
}

// Tick runs one full reconciliation pass: pull board telemetry (fanned out
// across boards), refresh sensors, update drive monitors, recompute wall
// targets if automatic control is on, and push only the walls whose
// targets drifted.
func (s *Scheduler) Tick(ctx context.Context) {
	s.pullBoards(ctx)

	if s.sensors != nil {
		if err := s.sensors.Refresh(ctx, false); err != nil {
			s.logger.WarnContext(ctx, "sensor refresh failed", "error", err)
		}
		s.sensors.RefreshReadings(ctx)
		s.publishSensors()
	}
	if s.drives != nil {
		if err := s.drives.Tick(ctx); err != nil {
			s.logger.WarnContext(ctx, "drive monitor tick failed", "error", err)
		}
	}

	if s.walls == nil {
		return
	}
	if s.isAutomatic() {
		s.walls.ComputeTargets(combinedLookup{sensors: s.sensors, drives: s.drives})
	}
	if err := s.walls.Apply(ctx); err != nil {
		s.logger.WarnContext(ctx, "wall apply failed", "error", err)
	}
}

// publishSensors pushes every currently known sensor's cached reading onto
// the event bus, the §9 published-value abstraction. A sensor whose last
// read attempt failed is simply skipped for this tick.
func (s *Scheduler) publishSensors() {
	for _, name := range s.sensors.Names() {
		v, ok := s.sensors.Lookup(name)
		if !ok {
			continue
		}
		if err := s.publisher.PublishSensor(name, v); err != nil {
			s.logger.WarnContext(context.Background(), "publish sensor reading failed", "sensor", name, "error", err)
		}
	}
}

// pullBoards fans the per-board telemetry pull out across present boards
// using nursery, joined before the tick proceeds to step 2. Boards make no
// ordering guarantee relative to each other.
func (s *Scheduler) pullBoards(ctx context.Context) {
	s.boardsMu.RLock()
	var jobs []nursery.ConcurrentJob
	for _, b := range s.boards {
		board := b
		jobs = append(jobs, func(ctx context.Context, errCh chan error) {
			board.pull(ctx)
			errCh <- nil
		})
	}
	s.boardsMu.RUnlock()

	if len(jobs) == 0 {
		return
	}
	if err := nursery.RunConcurrentlyWithContext(ctx, jobs...); err != nil {
		s.logger.WarnContext(ctx, "board pull fan-out failed", "error", err)
	}
}

// BoardSnapshot returns the last successfully pulled tach/wattage for a
// board id, or ok=false if the board is unknown or has never pulled
// successfully.
func (s *Scheduler) BoardSnapshot(id string) (tach [3]int, watt [4]float64, ok bool) {
	s.boardsMu.RLock()
	b, known := s.boards[id]
	s.boardsMu.RUnlock()
	if !known {
		return [3]int{}, [4]float64{}, false
	}
	return b.snapshot()
}

// RequestManualUpdate debounces a UI-streamed slider movement: it proceeds
// only if no request is already in flight for the named board, otherwise
// it drops the request and publishes thermal.debounce.dropped carrying the
// wall id and the value that was dropped, returning ErrUpdateDropped so
// the caller can surface the toast described in §4.6.
func (s *Scheduler) RequestManualUpdate(ctx context.Context, boardID string, wallID, droppedValue int, apply func(ctx context.Context) error) error {
	s.boardsMu.RLock()
	b, known := s.boards[boardID]
	s.boardsMu.RUnlock()
	if !known {
		return ErrUnknownBoard
	}

	if !b.pending.TryLock() {
		s.publisher.PublishDebounceDropped(DebounceDrop{
			WallID:       wallID,
			DroppedValue: droppedValue,
			Reason:       ReasonUpdateInFlight,
		})
		return ErrUpdateDropped
	}
	defer b.pending.Unlock()

	return apply(ctx)
}
