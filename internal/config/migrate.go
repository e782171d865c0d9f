// SPDX-License-Identifier: BSD-3-Clause

package config

import "github.com/google/uuid"

// migrateProfiles assigns ids to any id-less profile or curve records left
// over from an older document, using the map key as the name if the
// record's own Name field is also empty. Renames only ever change Name;
// ids, once assigned, are the stable join key.
func migrateProfiles(doc *ProfilesDocument) {
	for key, profile := range doc.Profiles {
		changed := false
		if profile.ID == "" {
			profile.ID = uuid.NewString()
			changed = true
		}
		if profile.Name == "" {
			profile.Name = key
			changed = true
		}
		for curveKey, c := range profile.Curves {
			if c.ID == "" {
				c.ID = uuid.NewString()
				changed = true
			}
			if c.Name == "" {
				c.Name = curveKey
				changed = true
			}
		}
		if changed {
			doc.Profiles[key] = profile
		}
	}
}

// migrateDriveMonitors rekeys any DriveMonitors entry whose map key doesn't
// match the record's own curve id to that curve id. An id-less record keeps
// its map key as its id when the key is already a UUID; a legacy
// display-name key instead gets a freshly assigned UUID.
func migrateDriveMonitors(doc *SensorsDocument) {
	rekeyed := make(map[string]DriveMonitorRecord, len(doc.DriveMonitors))
	for key, rec := range doc.DriveMonitors {
		if rec.ID == "" {
			if _, err := uuid.Parse(key); err == nil {
				rec.ID = key
			} else {
				rec.ID = uuid.NewString()
			}
		}
		rekeyed[rec.ID] = rec
	}
	doc.DriveMonitors = rekeyed
}
