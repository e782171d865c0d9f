// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import "math"

// calibration holds the per-hardware-revision ADC-to-current fit used by
// hardware revisions that are not 2.2 (which instead uses the matrix decode
// below).
type calibration struct {
	slope     float64
	intercept float64
}

var linearCalibrations = map[string]calibration{
	"2.0":  {slope: 3.574, intercept: -1.375},
	"2.1":  {slope: 3.284, intercept: -1.069},
	"2.1b": {slope: 3.284, intercept: -1.069},
}

func isHW22(rev string) bool {
	return len(rev) >= 3 && rev[:3] == "2.2"
}

// decodeWattage converts four shunt ADC readings into four wattages using
// the calibration for the given hardware revision: 2.2-prefixed revisions
// use the matrix decode, 2.0 and any 2.1-prefixed revision the linear fit,
// and any other revision is rejected.
func decodeWattage(hwRev string, adc [4]float64) ([4]float64, error) {
	if isHW22(hwRev) {
		return decodeWattageHW22(adc), nil
	}
	calib, ok := linearCalibrations[hwRev]
	if !ok && len(hwRev) >= 3 && hwRev[:3] == "2.1" {
		calib, ok = linearCalibrations["2.1"]
	}
	if !ok {
		return [4]float64{}, newLinkError("decodeWattage", ErrMalformedReply)
	}
	var out [4]float64
	for i, reading := range adc {
		if reading == 0 {
			out[i] = 0
			continue
		}
		current := (reading - calib.intercept) / calib.slope
		out[i] = current * shuntVoltage
	}
	return out, nil
}

// hw22Matrix is the fixed 4x11 coefficient matrix applied to the feature
// vector [1, r1, r2, r3, r4, r1*r2, r1*r3, r1*r4, r2*r3, r2*r4, r3*r4] to
// produce the per-channel current for hardware revision 2.2. Its values
// select r1..r4 unchanged for channels 1..4: the constant and cross-product
// terms carry zero weight, so no cross-channel correction is applied.
var hw22Matrix = [4][11]float64{
	{0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0},
}

// hw22Offsets are manual per-channel corrections keyed by (argmax channel,
// nearest multiple of 12 of the dominant channel's wattage). They are data,
// not derived, and must be reproduced exactly.
var hw22Offsets = map[[2]int][4]int{
	{1, 120}: {0, 1, -2, 0},
	{2, 144}: {0, -2, -11, 0},
}

func decodeWattageHW22(adc [4]float64) [4]float64 {
	r1, r2, r3, r4 := adc[0], adc[1], adc[2], adc[3]
	features := [11]float64{1, r1, r2, r3, r4, r1 * r2, r1 * r3, r1 * r4, r2 * r3, r2 * r4, r3 * r4}

	var rounded [4]int
	for ch := 0; ch < 4; ch++ {
		var current float64
		for i, coef := range hw22Matrix[ch] {
			current += coef * features[i]
		}
		watt := current * shuntVoltage
		rounded[ch] = clampNonNegative(roundToInt(watt))
	}

	out := applyHW22Offset(rounded)
	var floats [4]float64
	for i, v := range out {
		floats[i] = float64(v)
	}
	return floats
}

// applyHW22Offset takes the already matrix-multiplied, rounded and
// clamped per-channel wattages and applies the manual offset table, keyed
// by the dominant (argmax) channel and the nearest multiple of 12 of its
// wattage, then clamps negatives to zero again.
func applyHW22Offset(rounded [4]int) [4]int {
	argmax, dominant := argmaxInt(rounded)
	bucket := int(math.Round(float64(dominant)/12)) * 12
	offset, ok := hw22Offsets[[2]int{argmax, bucket}]
	if !ok {
		offset = [4]int{0, 0, 0, 0}
	}

	var out [4]int
	for i := range rounded {
		out[i] = clampNonNegative(rounded[i] + offset[i])
	}
	return out
}

func roundToInt(f float64) int {
	return int(math.Round(f))
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func argmaxInt(v [4]int) (idx, val int) {
	idx, val = 0, v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > val {
			idx, val = i, v[i]
		}
	}
	return idx, val
}
