// SPDX-License-Identifier: BSD-3-Clause

package sensor

import "strings"

// Group is the advisory classification bucket a sensor's display name
// sorts into. It never affects the reading, only UI presentation.
type Group string

const (
	GroupCPU     Group = "CPU"
	GroupGPU     Group = "GPU"
	GroupStorage Group = "Storage"
	GroupSystem  Group = "System"
	GroupOther   Group = "Other"
)

var groupKeywords = map[Group][]string{
	GroupCPU:     {"cpu", "core", "package"},
	GroupGPU:     {"gpu", "graphics", "radeon", "nvidia"},
	GroupStorage: {"nvme", "ssd", "hdd", "drive"},
	GroupSystem:  {"acpi", "thermal", "motherboard", "chipset", "vrm"},
}

// classify keyword-matches a display name into an advisory group. Order is
// significant only in that it determines which group wins when a name
// matches keywords for more than one (GPU, CPU, Storage, System, in that
// order, else Other), so "GPU Core" is GPU even though "core" is a CPU
// keyword.
func classify(displayName string) Group {
	lower := strings.ToLower(displayName)
	for _, g := range []Group{GroupGPU, GroupCPU, GroupStorage, GroupSystem} {
		for _, kw := range groupKeywords[g] {
			if strings.Contains(lower, kw) {
				return g
			}
		}
	}
	return GroupOther
}

// stuckThreshold is the number of consecutive bit-identical readings after
// which a sensor's group classification is demoted to Other.
const stuckThreshold = 20

// readingRing tracks whether a sensor's recent readings have all been
// bit-identical, for stuck-sensor group demotion.
type readingRing struct {
	last    float64
	hasLast bool
	streak  int
}

// observe records a new reading and reports whether the sensor should now
// be considered stuck (streak has reached stuckThreshold of the same
// value).
func (r *readingRing) observe(v float64) (stuck bool) {
	if r.hasLast && v == r.last {
		r.streak++
	} else {
		r.streak = 1
		r.last = v
		r.hasLast = true
	}
	return r.streak >= stuckThreshold
}
