// SPDX-License-Identifier: BSD-3-Clause

package curve

import "errors"

var (
	// ErrTooFewPoints indicates a curve has fewer than two points.
	ErrTooFewPoints = errors.New("curve must have at least two points")
	// ErrNonIncreasingX indicates a curve's x values are not strictly increasing.
	ErrNonIncreasingX = errors.New("curve x values must be strictly increasing")
	// ErrYOutOfRange indicates a curve point's y value falls outside [0,100].
	ErrYOutOfRange = errors.New("curve y value out of range [0,100]")
	// ErrDuplicateName indicates a curve or profile name collides with an
	// existing one.
	ErrDuplicateName = errors.New("duplicate name")
)
