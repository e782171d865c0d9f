// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	cmdMetadata   = "V:"
	cmdReadPWM    = "P:"
	cmdSetFan     = "F:"
	cmdUpdateFan  = "U:"
	cmdReadTach   = "T:"
	cmdReadWatt   = "W:"
	cmdJumper     = "J:"
	pwmMaxByte    = 255
	tachToRPM     = 30
	shuntVoltage  = 12.0
	percentMin    = 0
	percentMax    = 100
)

// frame builds the wire-format request line for a command and its
// comma-separated arguments. No trailing argument list is emitted for
// commands that take none.
func frame(cmd string, args ...int) string {
	if len(args) == 0 {
		return cmd + "\n"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Itoa(a)
	}
	return cmd + strings.Join(parts, ",") + "\n"
}

// reorderRows converts logical (row1,row2,row3) PWM percentages into the
// wire argument order (row2,row3,row1) required by F: and U:.
func reorderRows(row1, row2, row3 int) (a1, a2, a3 int) {
	return row2, row3, row1
}

// pwmByteToPercent converts a raw 0-255 PWM byte to a 0-100 percentage,
// rounding to the nearest integer.
func pwmByteToPercent(v int) int {
	return int(roundHalfAwayFromZero(float64(v) / pwmMaxByte * 100))
}

// pwmPercentToByte converts a 0-100 percentage to a 0-255 PWM byte.
func pwmPercentToByte(v int) int {
	return int(roundHalfAwayFromZero(float64(v) / 100 * pwmMaxByte))
}

func roundHalfAwayFromZero(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}

func clampPercent(v int) int {
	if v < percentMin {
		return percentMin
	}
	if v > percentMax {
		return percentMax
	}
	return v
}

// splitFields splits a reply on commas and trims whitespace, returning an
// error if the field count does not match want (0 means "any").
func splitFields(reply string, want int) ([]string, error) {
	fields := strings.Split(strings.TrimSpace(reply), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if want > 0 && len(fields) != want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d (%q)", ErrMalformedReply, want, len(fields), reply)
	}
	return fields, nil
}

func parseIntFields(reply string, n int) ([]int, error) {
	fields, err := splitFields(reply, n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d (%q): %w", ErrMalformedReply, i, f, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloatFields(reply string, n int) ([]float64, error) {
	fields, err := splitFields(reply, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d (%q): %w", ErrMalformedReply, i, f, err)
		}
		out[i] = v
	}
	return out, nil
}
