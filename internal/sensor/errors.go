// SPDX-License-Identifier: BSD-3-Clause

package sensor

import "errors"

var (
	// ErrUnavailable indicates a named sensor has no current reading --
	// either it was never discovered or its handle has since disappeared.
	ErrUnavailable = errors.New("sensor unavailable")
	// ErrDiscoveryFailed indicates the host-platform enumeration step failed.
	ErrDiscoveryFailed = errors.New("sensor discovery failed")
)
