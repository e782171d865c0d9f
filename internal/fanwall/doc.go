// SPDX-License-Identifier: BSD-3-Clause

// Package fanwall implements the fan wall controller: the logical PWM
// outputs a chassis exposes (wall 1-4), their manual/profile mode, and the
// translation from computed target percentages into powerboard commands.
//
// Walls 1-3 target powerboard-at-location-1 rows 1/2/3 respectively; wall 4
// targets all three channels of powerboard-at-location-2. A wall whose
// board is absent is hidden from external APIs and never ticked.
//
// Each wall's mode is a github.com/qmuntal/stateless machine with exactly
// two states, manual and profile; the transition itself (not the caller
// remembering to do so) is what triggers an immediate configuration save
// via an OnTransitioned hook.
package fanwall
