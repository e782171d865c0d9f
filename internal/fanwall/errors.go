// SPDX-License-Identifier: BSD-3-Clause

package fanwall

import "errors"

var (
	// ErrUnknownWall indicates a wall id outside the valid chassis set.
	ErrUnknownWall = errors.New("unknown fan wall")
	// ErrBoardAbsent indicates the wall's owning powerboard is not present.
	ErrBoardAbsent = errors.New("wall's powerboard is absent")
)
