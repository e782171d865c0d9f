// SPDX-License-Identifier: BSD-3-Clause

package fanwall

import (
	"context"
	"log/slog"

	"github.com/wandercone/hakofoundry/internal/curve"
)

// boardRowUpdater is the subset of powerboard.Link the controller needs to
// push a PWM triple. It exists so tests can substitute a fake board.
type boardRowUpdater interface {
	UpdateFanSpeed(ctx context.Context, row1, row2, row3 int) error
}

// board1Wall1..board1Wall3 and board2Wall are the fixed §4.5 bindings: walls 1-3 are
// rows 1-3 of the board at location 1; wall 4 drives all three channels of
// the board at location 2 to the same value.
const (
	board1Wall1 = 1
	board1Wall2 = 2
	board1Wall3 = 3
	board2Wall  = 4
)

// ApplyFunc is invoked whenever Apply actually pushes a wall's target to
// its board, changing that wall's LastAppliedPWM. Unlike SaveFunc, it is
// not a persistence hook -- it exists so an external observer (the event
// bus) can learn the new applied value without polling.
type ApplyFunc func(wallID, pwm int)

// Controller owns every wall and the two boards they're bound to. A nil
// board means that location's walls are hidden and never ticked.
type Controller struct {
	log *slog.Logger

	board1 boardRowUpdater
	board2 boardRowUpdater

	walls map[int]*Wall

	profiles map[string]curve.Profile

	onApply ApplyFunc
}

// SetApplyFunc registers fn to be called whenever Apply changes a wall's
// last-applied PWM. It is a post-construction setter, like SetProfiles,
// since the event bus the daemon wires it to is itself constructed after
// the controller.
func (c *Controller) SetApplyFunc(fn ApplyFunc) {
	c.onApply = fn
}

// NewController constructs a controller with walls 1-4 in manual mode,
// defaulting to the safe-default target. save is invoked on every
// persisted-field change across any wall.
func NewController(logger *slog.Logger, board1, board2 boardRowUpdater, save SaveFunc) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		log:    logger,
		board1: board1,
		board2: board2,
		walls:  make(map[int]*Wall, 4),
	}
	for id := 1; id <= 4; id++ {
		w := NewWall(id, Manual, save)
		w.TargetPWM = int(curve.SafeDefaultPWM)
		c.walls[id] = w
	}
	return c
}

// Wall returns the wall by id, or nil if id is not 1-4 or its board is
// absent.
func (c *Controller) Wall(id int) *Wall {
	w, ok := c.walls[id]
	if !ok {
		return nil
	}
	if !c.boardPresent(id) {
		return nil
	}
	return w
}

// VisibleWalls returns every wall whose owning board is present, for
// external APIs that must hide walls on absent boards.
func (c *Controller) VisibleWalls() []*Wall {
	var out []*Wall
	for id := 1; id <= 4; id++ {
		if w := c.Wall(id); w != nil {
			out = append(out, w)
		}
	}
	return out
}

func (c *Controller) boardPresent(wallID int) bool {
	if wallID == board2Wall {
		return c.board2 != nil
	}
	return c.board1 != nil
}

// SetProfiles replaces the set of known profiles, used by ComputeTargets
// and by opportunistic profile reassignment.
func (c *Controller) SetProfiles(profiles map[string]curve.Profile) {
	c.profiles = profiles
}

// ComputeTargets recomputes TargetPWM for every wall currently in profile
// mode using lookup as the sensor source for this tick's snapshot. A wall
// whose assigned profile is missing or has vanished falls back to the safe
// default and is opportunistically reassigned to the first available
// profile, which counts as a binding change.
func (c *Controller) ComputeTargets(lookup curve.SensorLookup) {
	for _, w := range c.walls {
		if w.Mode() != Profile {
			continue
		}
		profile, ok := c.profiles[w.AssignedProfile]
		if !ok {
			if reassigned, found := c.firstAvailableProfile(); found {
				w.BindProfile(reassigned)
				profile = c.profiles[reassigned]
				ok = true
			}
		}
		if !ok {
			w.TargetPWM = int(curve.SafeDefaultPWM)
			continue
		}
		w.TargetPWM = int(roundHalf(curve.Demand(profile, lookup)))
	}
}

func (c *Controller) firstAvailableProfile() (string, bool) {
	for name := range c.profiles {
		return name, true
	}
	return "", false
}

func roundHalf(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}

// Apply issues U: to each board whose walls' targets have drifted from
// their last-applied value, preserving the other walls on that board at
// their own last-applied values. It never issues F:.
func (c *Controller) Apply(ctx context.Context) error {
	if c.board1 != nil {
		if err := c.applyBoard1(ctx); err != nil {
			return err
		}
	}
	if c.board2 != nil {
		if err := c.applyBoard2(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) applyBoard1(ctx context.Context) error {
	w1, w2, w3 := c.walls[board1Wall1], c.walls[board1Wall2], c.walls[board1Wall3]
	if w1.TargetPWM == w1.LastAppliedPWM && w2.TargetPWM == w2.LastAppliedPWM && w3.TargetPWM == w3.LastAppliedPWM {
		return nil
	}
	if err := c.board1.UpdateFanSpeed(ctx, w1.TargetPWM, w2.TargetPWM, w3.TargetPWM); err != nil {
		return err
	}
	for _, w := range [3]*Wall{w1, w2, w3} {
		if w.TargetPWM != w.LastAppliedPWM {
			w.LastAppliedPWM = w.TargetPWM
			c.notifyApplied(w.ID, w.LastAppliedPWM)
		}
	}
	return nil
}

func (c *Controller) applyBoard2(ctx context.Context) error {
	w := c.walls[board2Wall]
	if w.TargetPWM == w.LastAppliedPWM {
		return nil
	}
	if err := c.board2.UpdateFanSpeed(ctx, w.TargetPWM, w.TargetPWM, w.TargetPWM); err != nil {
		return err
	}
	w.LastAppliedPWM = w.TargetPWM
	c.notifyApplied(w.ID, w.LastAppliedPWM)
	return nil
}

func (c *Controller) notifyApplied(wallID, pwm int) {
	if c.onApply != nil {
		c.onApply(wallID, pwm)
	}
}
