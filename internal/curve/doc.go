// SPDX-License-Identifier: BSD-3-Clause

// Package curve implements piecewise-linear fan curves and the profile
// demand computation that sits on top of them. A Curve never holds a
// reference to a sensor registry: evaluation takes a SensorLookup supplied
// by the caller, which keeps a Curve a pure value type that can be
// persisted, copied, and compared without dragging a service locator
// along with it.
//
// # Basic usage
//
//	c := curve.Curve{
//		SensorName: "CPU:Package",
//		Points:     []curve.Point{{X: 30, Y: 50}, {X: 80, Y: 100}},
//	}
//	if err := c.Validate(); err != nil {
//		return fmt.Errorf("invalid curve: %w", err)
//	}
//	pwm, ok := c.Eval(lookup)
//
// Demand(p, lookup) folds Eval across every curve in profile p and returns the
// maximum PWM percent among curves whose sensor is currently readable,
// falling back to a safe default when none are.
package curve
