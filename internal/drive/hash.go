// SPDX-License-Identifier: BSD-3-Clause

package drive

import "github.com/zeebo/xxh3"

// Hash identifies a drive by the XXH3-64 digest of its serial number. It is
// stable across reboots and across any registry that can recompute it from
// the same serial string.
type Hash uint64

// HashSerial computes the drive identity hash for a serial number.
func HashSerial(serial string) Hash {
	return Hash(xxh3.HashString(serial))
}
