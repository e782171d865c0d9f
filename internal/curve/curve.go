// SPDX-License-Identifier: BSD-3-Clause

package curve

import (
	"fmt"
	"math"
)

// SafeDefaultPWM is the fallback demand when no curve in a profile has a
// currently readable sensor.
const SafeDefaultPWM = 50.0

const (
	minY = 0.0
	maxY = 100.0
)

// Point is one (temperature, PWM percent) anchor of a Curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is a piecewise-linear map from a named sensor's temperature to a
// PWM percent. It holds no reference to the registry that will eventually
// produce that temperature; SensorName is resolved by the caller at
// evaluation time via a SensorLookup.
type Curve struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SensorName string  `json:"sensor"`
	Points     []Point `json:"data"`
}

// SensorLookup resolves a qualified sensor name to its current reading.
// ok is false when the sensor is absent or its reading is unavailable.
type SensorLookup interface {
	Lookup(name string) (celsius float64, ok bool)
}

// SensorLookupFunc adapts a plain function to a SensorLookup.
type SensorLookupFunc func(name string) (float64, bool)

// Lookup implements SensorLookup.
func (f SensorLookupFunc) Lookup(name string) (float64, bool) {
	return f(name)
}

// Validate checks the invariants an editor must enforce and the evaluator
// assumes hold: at least two points, strictly increasing x, and y clamped
// to [0,100].
func (c Curve) Validate() error {
	if len(c.Points) < 2 {
		return ErrTooFewPoints
	}
	for i, p := range c.Points {
		if p.Y < minY || p.Y > maxY {
			return fmt.Errorf("%w: point %d y=%v", ErrYOutOfRange, i, p.Y)
		}
		if i > 0 && p.X <= c.Points[i-1].X {
			return fmt.Errorf("%w: point %d x=%v <= point %d x=%v", ErrNonIncreasingX, i, p.X, i-1, c.Points[i-1].X)
		}
	}
	return nil
}

// eval is the pure piecewise-linear interpolation over Points assuming
// Validate has already passed. Results are rounded to 0.1.
func (c Curve) eval(t float64) float64 {
	pts := c.Points
	if t <= pts[0].X {
		return round1(pts[0].Y)
	}
	last := len(pts) - 1
	if t >= pts[last].X {
		return round1(pts[last].Y)
	}
	for i := 0; i < last; i++ {
		x0, y0 := pts[i].X, pts[i].Y
		x1, y1 := pts[i+1].X, pts[i+1].Y
		if t >= x0 && t <= x1 {
			y := y0 + (y1-y0)*(t-x0)/(x1-x0)
			return round1(y)
		}
	}
	return round1(pts[last].Y)
}

// Eval reads the curve's bound sensor through lookup and evaluates the
// curve at that temperature. ok is false, with a zero result, when the
// sensor is not currently readable.
func (c Curve) Eval(lookup SensorLookup) (pwm float64, ok bool) {
	t, ok := lookup.Lookup(c.SensorName)
	if !ok {
		return 0, false
	}
	return c.eval(t), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
