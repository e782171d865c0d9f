// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import "errors"

var (
	// ErrUnknownBoard is returned when an operation names a board location
	// that was never registered with the scheduler.
	ErrUnknownBoard = errors.New("unknown powerboard location")
	// ErrUpdateDropped indicates a manual update was dropped because a
	// request was already in flight for that board. The caller should
	// treat it as informational, not fatal.
	ErrUpdateDropped = errors.New("manual update dropped: request already in flight for this board")
)
