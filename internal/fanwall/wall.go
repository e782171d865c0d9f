// SPDX-License-Identifier: BSD-3-Clause

package fanwall

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"
)

// Mode is a fan wall's control mode.
type Mode string

const (
	Manual  Mode = "manual"
	Profile Mode = "profile"
)

const (
	manualMin = 20
	manualMax = 100
)

type trigger string

const (
	triggerToManual  trigger = "to_manual"
	triggerToProfile trigger = "to_profile"
)

// SaveFunc is invoked whenever a wall's persisted fields change: mode
// transitions, profile binding changes, and manual slider commits. Target-
// only changes never call it.
type SaveFunc func(wallID int)

// Wall is one logical PWM output. TargetPWM is recomputed every tick (by
// ComputeTargets for profile mode, or by SetManual for manual mode);
// LastAppliedPWM only changes when Apply actually issues a command.
type Wall struct {
	ID              int
	AssignedProfile string
	ManualValue     int
	TargetPWM       int
	LastAppliedPWM  int

	machine *stateless.StateMachine
	onSave  SaveFunc
}

// NewWall constructs a wall starting in the given mode, wired to invoke
// onSave whenever its mode transitions.
func NewWall(id int, initial Mode, onSave SaveFunc) *Wall {
	w := &Wall{ID: id, onSave: onSave}
	w.machine = stateless.NewStateMachine(initial)
	w.machine.Configure(Manual).
		Permit(triggerToProfile, Profile)
	w.machine.Configure(Profile).
		Permit(triggerToManual, Manual)
	w.machine.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		if w.onSave != nil {
			w.onSave(w.ID)
		}
	})
	return w
}

// Mode returns the wall's current control mode.
func (w *Wall) Mode() Mode {
	state, _ := w.machine.State(context.Background())
	m, _ := state.(Mode)
	return m
}

// SetMode transitions the wall's mode, triggering an immediate save via
// onSave. A transition to the mode the wall is already in is a no-op and
// does not re-save.
func (w *Wall) SetMode(ctx context.Context, mode Mode) error {
	if w.Mode() == mode {
		return nil
	}
	var trig trigger
	switch mode {
	case Manual:
		trig = triggerToManual
	case Profile:
		trig = triggerToProfile
	default:
		return fmt.Errorf("%w: mode %q", ErrUnknownWall, mode)
	}
	return w.machine.FireCtx(ctx, trig)
}

// SetManual commits a user-supplied manual target, clamped to [20,100],
// and triggers a save.
func (w *Wall) SetManual(value int) {
	w.ManualValue = clampManual(value)
	w.TargetPWM = w.ManualValue
	if w.onSave != nil {
		w.onSave(w.ID)
	}
}

// BindProfile changes the wall's assigned profile (profile mode only) and
// triggers a save.
func (w *Wall) BindProfile(name string) {
	w.AssignedProfile = name
	if w.onSave != nil {
		w.onSave(w.ID)
	}
}

func clampManual(v int) int {
	if v < manualMin {
		return manualMin
	}
	if v > manualMax {
		return manualMax
	}
	return v
}
