// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"

	"github.com/wandercone/hakofoundry/internal/curve"
)

// Layout is the chassis/layout document: product identity, display
// preferences, and per-wall default PWM recovered at boot.
type Layout struct {
	Product        string          `json:"product"`
	UnitFahrenheit bool            `json:"unit_fahrenheit"`
	DialogsSeen    map[string]bool `json:"dialogs_seen"`
	DefaultPWM     map[int]int     `json:"default_pwm"`

	// Extra holds any top-level key a newer UI wrote that this build
	// doesn't know about, so a save from an older core never drops it.
	Extra map[string]json.RawMessage `json:"-"`
}

var layoutKnownFields = map[string]bool{
	"product": true, "unit_fahrenheit": true, "dialogs_seen": true, "default_pwm": true,
}

func defaultLayout() Layout {
	return Layout{
		Product:     "hakofoundry",
		DialogsSeen: map[string]bool{},
		DefaultPWM:  map[int]int{1: 50, 2: 50, 3: 50, 4: 50},
	}
}

func (l Layout) MarshalJSON() ([]byte, error) {
	type alias Layout
	b, err := json.Marshal(alias(l))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, l.Extra)
}

func (l *Layout) UnmarshalJSON(b []byte) error {
	type alias Layout
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := extraFields(b, layoutKnownFields)
	if err != nil {
		return err
	}
	a.Extra = extra
	*l = Layout(a)
	return nil
}

// ProfilesDocument is the fan profiles document: named profiles, each a
// set of curves keyed by curve id.
type ProfilesDocument struct {
	Profiles map[string]curve.Profile `json:"profiles"`

	Extra map[string]json.RawMessage `json:"-"`
}

var profilesDocumentKnownFields = map[string]bool{"profiles": true}

func defaultProfilesDocument() ProfilesDocument {
	return ProfilesDocument{Profiles: map[string]curve.Profile{}}
}

func (p ProfilesDocument) MarshalJSON() ([]byte, error) {
	type alias ProfilesDocument
	b, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, p.Extra)
}

func (p *ProfilesDocument) UnmarshalJSON(b []byte) error {
	type alias ProfilesDocument
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := extraFields(b, profilesDocumentKnownFields)
	if err != nil {
		return err
	}
	a.Extra = extra
	*p = ProfilesDocument(a)
	return nil
}

// DriveMonitorRecord is one drive-temperature aggregation bound to a
// curve, keyed by curve id in SensorsDocument.DriveMonitors.
type DriveMonitorRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DriveHashes []uint64 `json:"drive_hashes"`
	Mode        string   `json:"mode"`
}

// SensorGroupConfig is the persisted, user-editable state for one sensor
// group: whether it's enabled for discovery/display.
type SensorGroupConfig struct {
	Enabled bool `json:"enabled"`
}

// SensorConfig is the persisted, user-editable state for one individual
// sensor, keyed by its qualified name in SensorsDocument.Sensors. It
// overrides SensorGroupConfig at the single-sensor granularity, mirroring
// the original temperature_sensor_service's per-sensor enabled flag.
type SensorConfig struct {
	Enabled bool `json:"enabled"`
}

// SensorsDocument is the temperature sensors document: group enable flags,
// per-sensor enable overrides, plus drive monitors, keyed by the owning
// curve's id.
type SensorsDocument struct {
	Groups        map[string]SensorGroupConfig  `json:"groups"`
	Sensors       map[string]SensorConfig       `json:"sensors"`
	DriveMonitors map[string]DriveMonitorRecord `json:"drive_monitors"`

	Extra map[string]json.RawMessage `json:"-"`
}

var sensorsDocumentKnownFields = map[string]bool{
	"groups": true, "sensors": true, "drive_monitors": true,
}

func defaultSensorsDocument() SensorsDocument {
	return SensorsDocument{
		Groups:        map[string]SensorGroupConfig{},
		Sensors:       map[string]SensorConfig{},
		DriveMonitors: map[string]DriveMonitorRecord{},
	}
}

func (s SensorsDocument) MarshalJSON() ([]byte, error) {
	type alias SensorsDocument
	b, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, s.Extra)
}

func (s *SensorsDocument) UnmarshalJSON(b []byte) error {
	type alias SensorsDocument
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := extraFields(b, sensorsDocumentKnownFields)
	if err != nil {
		return err
	}
	a.Extra = extra
	*s = SensorsDocument(a)
	return nil
}

// WallState is one wall's persisted runtime fields.
type WallState struct {
	Mode            string `json:"mode"`
	AssignedProfile string `json:"assigned_profile"`
	CurrentSpeed    int    `json:"current_speed"`
}

// ServiceState is the fan control service state document: per-wall mode
// and binding, plus the automatic-control flag and its interval.
type ServiceState struct {
	Walls           map[int]WallState `json:"walls"`
	Automatic       bool              `json:"automatic"`
	IntervalSeconds int               `json:"interval_seconds"`

	Extra map[string]json.RawMessage `json:"-"`
}

var serviceStateKnownFields = map[string]bool{
	"walls": true, "automatic": true, "interval_seconds": true,
}

func defaultServiceState() ServiceState {
	walls := make(map[int]WallState, 4)
	for id := 1; id <= 4; id++ {
		walls[id] = WallState{Mode: "manual", CurrentSpeed: int(curve.SafeDefaultPWM)}
	}
	return ServiceState{Walls: walls, Automatic: true, IntervalSeconds: 3}
}

func (s ServiceState) MarshalJSON() ([]byte, error) {
	type alias ServiceState
	b, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, s.Extra)
}

func (s *ServiceState) UnmarshalJSON(b []byte) error {
	type alias ServiceState
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := extraFields(b, serviceStateKnownFields)
	if err != nil {
		return err
	}
	a.Extra = extra
	*s = ServiceState(a)
	return nil
}
