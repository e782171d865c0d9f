// SPDX-License-Identifier: BSD-3-Clause

// Command thermald is the chassis thermal control daemon: it wires a
// powerboard link, the sensor and drive registries, the fan wall
// controller, the reconciliation scheduler, the configuration store, and
// the event bus together, then runs until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cirello.io/oversight/v2"

	"github.com/wandercone/hakofoundry/internal/config"
	"github.com/wandercone/hakofoundry/internal/curve"
	"github.com/wandercone/hakofoundry/internal/drive"
	"github.com/wandercone/hakofoundry/internal/eventbus"
	"github.com/wandercone/hakofoundry/internal/fanwall"
	"github.com/wandercone/hakofoundry/internal/obslog"
	"github.com/wandercone/hakofoundry/internal/powerboard"
	"github.com/wandercone/hakofoundry/internal/scheduler"
	"github.com/wandercone/hakofoundry/internal/sensor"
	"github.com/wandercone/hakofoundry/pkg/id"
)

func main() {
	serialA := flag.String("serial-a", "", "serial device path for the powerboard at location 1 (walls 1-3)")
	serialB := flag.String("serial-b", "", "serial device path for the powerboard at location 2 (wall 4)")
	configDir := flag.String("config-dir", "/var/lib/hakofoundry", "directory holding the four configuration documents")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	tickInterval := flag.Duration("tick-interval", 3*time.Second, "telemetry/sensor/drive refresh period")
	curveInterval := flag.Duration("curve-interval", 2*time.Second, "automatic curve evaluation period")
	flag.Parse()

	logger := obslog.NewDefaultLogger(*debug)
	obslog.RedirectStdLog(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, options{
		serialA:       *serialA,
		serialB:       *serialB,
		configDir:     *configDir,
		tickInterval:  *tickInterval,
		curveInterval: *curveInterval,
	}); err != nil {
		logger.Error("thermald exited", "error", err)
		os.Exit(1)
	}
}

type options struct {
	serialA, serialB string
	configDir        string
	tickInterval     time.Duration
	curveInterval    time.Duration
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	store, err := config.Open(opts.configDir, logger)
	if err != nil {
		return fmt.Errorf("open configuration store: %w", err)
	}

	controllerID, err := id.GetOrCreatePersistentID("controller-id", opts.configDir)
	if err != nil {
		return fmt.Errorf("load controller id: %w", err)
	}

	bus := eventbus.New(eventbus.WithServerName(controllerID), eventbus.WithLogger(logger))

	var board1, board2 *powerboard.Link
	if opts.serialA != "" {
		board1, err = powerboard.Open(ctx, opts.serialA, logger,
			powerboard.WithStateChange(func(s powerboard.LinkState) {
				if err := bus.PublishLinkState("location-1", string(s)); err != nil {
					logger.WarnContext(ctx, "publish link state failed", "location", "location-1", "error", err)
				}
			}))
		if err != nil {
			logger.WarnContext(ctx, "powerboard at location 1 unavailable at startup", "path", opts.serialA, "error", err)
		}
	}
	if opts.serialB != "" {
		board2, err = powerboard.Open(ctx, opts.serialB, logger,
			powerboard.WithStateChange(func(s powerboard.LinkState) {
				if err := bus.PublishLinkState("location-2", string(s)); err != nil {
					logger.WarnContext(ctx, "publish link state failed", "location", "location-2", "error", err)
				}
			}))
		if err != nil {
			logger.WarnContext(ctx, "powerboard at location 2 unavailable at startup", "path", opts.serialB, "error", err)
		}
	}

	sensors := sensor.NewRegistry(logger)
	hydrateSensorConfig(ctx, sensors, store)

	drives := drive.NewAggregator(drive.NewStaticRegistry(map[drive.Hash]drive.Snapshot{}))
	drives.SetSaveFunc(func(curveID string) {
		persistDriveMonitor(store, drives, curveID)
	})
	hydrateDriveMonitors(drives, store)

	var walls *fanwall.Controller
	walls = fanwall.NewController(logger, boardUpdater(board1), boardUpdater(board2), func(wallID int) {
		persistWallState(store, walls, wallID)
		if w := walls.Wall(wallID); w != nil {
			if err := bus.PublishWallMode(wallID, string(w.Mode())); err != nil {
				logger.Warn("publish wall mode failed", "wall", wallID, "error", err)
			}
		}
	})
	walls.SetApplyFunc(func(wallID, pwm int) {
		if err := bus.PublishWallApplied(wallID, pwm); err != nil {
			logger.Warn("publish wall applied failed", "wall", wallID, "error", err)
		}
	})
	hydrateWalls(ctx, walls, store)

	sched := scheduler.New(sensors, drives, walls,
		scheduler.WithTelemetryInterval(opts.tickInterval),
		scheduler.WithCurveInterval(opts.curveInterval),
		scheduler.WithAutomatic(store.ServiceState().Automatic),
		scheduler.WithLogger(logger),
		scheduler.WithPublisher(bus),
	)
	if board1 != nil {
		sched.AddBoard("location-1", board1)
	}
	if board2 != nil {
		sched.AddBoard("location-2", board2)
	}

	applyProfiles(walls, store)

	tree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(obslog.NewOversightLogger(logger)),
	)

	if err := tree.Add(supervised("eventbus", bus.Start), oversight.Transient(), oversight.Timeout(10*time.Second), "eventbus"); err != nil {
		return fmt.Errorf("add eventbus to supervision tree: %w", err)
	}
	if err := tree.Add(supervised("scheduler", sched.Run), oversight.Transient(), oversight.Timeout(10*time.Second), "scheduler"); err != nil {
		return fmt.Errorf("add scheduler to supervision tree: %w", err)
	}

	logger.InfoContext(ctx, "thermald starting",
		"config_dir", opts.configDir,
		"tick_interval", opts.tickInterval,
		"curve_interval", opts.curveInterval,
	)

	return tree.Start(ctx)
}

// supervised adapts a (ctx) error function into an oversight.ChildProcess,
// recovering a panic into an error tagged with the child's name.
func supervised(name string, fn func(ctx context.Context) error) oversight.ChildProcess {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		return fn(ctx)
	}
}

// boardUpdater narrows a possibly-nil *powerboard.Link to the interface
// fanwall.NewController expects, preserving a literal nil interface value
// (not a non-nil interface wrapping a nil pointer) when the board is
// absent.
func boardUpdater(l *powerboard.Link) interface {
	UpdateFanSpeed(ctx context.Context, row1, row2, row3 int) error
} {
	if l == nil {
		return nil
	}
	return l
}

// hydrateWalls restores each wall's mode, profile binding, and manual
// value from the persisted service state document.
func hydrateWalls(ctx context.Context, walls *fanwall.Controller, store *config.Store) {
	state := store.ServiceState()
	for id := 1; id <= 4; id++ {
		w := walls.Wall(id)
		if w == nil {
			continue
		}
		saved, ok := state.Walls[id]
		if !ok {
			continue
		}
		mode := fanwall.Manual
		if saved.Mode == string(fanwall.Profile) {
			mode = fanwall.Profile
		}
		_ = w.SetMode(ctx, mode)
		if saved.AssignedProfile != "" {
			w.BindProfile(saved.AssignedProfile)
		}
		if mode == fanwall.Manual {
			w.SetManual(saved.CurrentSpeed)
		}
	}
}

// applyProfiles loads the persisted profiles document into the wall
// controller.
func applyProfiles(walls *fanwall.Controller, store *config.Store) {
	doc := store.Profiles()
	profiles := make(map[string]curve.Profile, len(doc.Profiles))
	for key, p := range doc.Profiles {
		profiles[key] = p
	}
	walls.SetProfiles(profiles)
}

// hydrateSensorConfig forces an initial discovery so the persisted
// per-sensor enable overrides have entries to apply to, then applies them.
// A sensor named in the document that the host no longer reports is
// simply a no-op SetEnabled, since Refresh hasn't created an entry for it.
func hydrateSensorConfig(ctx context.Context, sensors *sensor.Registry, store *config.Store) {
	if err := sensors.Refresh(ctx, true); err != nil {
		slog.Default().Warn("initial sensor discovery failed", "error", err)
		return
	}
	doc := store.Sensors()
	for name, cfg := range doc.Sensors {
		sensors.SetEnabled(name, cfg.Enabled)
	}
}

// hydrateDriveMonitors restores every persisted drive monitor binding into
// the running aggregator, mirroring hydrateWalls/applyProfiles for the C3
// domain.
func hydrateDriveMonitors(drives *drive.Aggregator, store *config.Store) {
	doc := store.Sensors()
	for curveID, rec := range doc.DriveMonitors {
		hashes := make([]drive.Hash, len(rec.DriveHashes))
		for i, h := range rec.DriveHashes {
			hashes[i] = drive.Hash(h)
		}
		drives.SetMonitor(curveID, rec.Name, hashes, drive.Mode(rec.Mode))
	}
}

// persistDriveMonitor is the drive.SaveFunc wired into the aggregator: it
// copies curveID's current binding (or its absence, if removed) into the
// sensors document and saves on the usual debounce.
func persistDriveMonitor(store *config.Store, drives *drive.Aggregator, curveID string) {
	doc := store.Sensors()
	rec, ok := drives.Monitor(curveID)
	if !ok {
		delete(doc.DriveMonitors, curveID)
		store.SetSensors(doc)
		return
	}
	hashes := make([]uint64, len(rec.Hashes))
	for i, h := range rec.Hashes {
		hashes[i] = uint64(h)
	}
	doc.DriveMonitors[curveID] = config.DriveMonitorRecord{
		ID:          curveID,
		Name:        rec.Name,
		DriveHashes: hashes,
		Mode:        string(rec.Mode),
	}
	store.SetSensors(doc)
}

// persistWallState is the fanwall.SaveFunc wired into the controller: it
// copies the wall's current mode/binding into the service state document
// and saves immediately, since a mode transition must not be lost to a
// crash before the debounce window elapses.
func persistWallState(store *config.Store, walls *fanwall.Controller, wallID int) {
	w := walls.Wall(wallID)
	if w == nil {
		return
	}
	st := store.ServiceState()
	st.Walls[wallID] = config.WallState{
		Mode:            string(w.Mode()),
		AssignedProfile: w.AssignedProfile,
		CurrentSpeed:    w.ManualValue,
	}
	store.SetServiceState(st)
	if err := store.SaveImmediate("service.json"); err != nil {
		slog.Default().Error("failed to persist wall state", "wall", wallID, "error", err)
	}
}
