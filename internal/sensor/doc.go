// SPDX-License-Identifier: BSD-3-Clause

// Package sensor implements the temperature sensor registry: discovery of
// readable temperature handles on the host, keyword classification into
// advisory groups, and cached reads exposed under a stable qualified name
// ("Group:SensorName").
//
// # Basic usage
//
//	reg := sensor.NewRegistry(logger)
//	if err := reg.Refresh(ctx, true); err != nil {
//		return fmt.Errorf("discover sensors: %w", err)
//	}
//	reg.RefreshReadings(ctx)
//	celsius, ok := reg.Read("CPU:Package id 0")
//
// Discovery results are cached for 30s; Refresh with force set re-scans
// regardless of the cache. A sensor
// whose last 20 readings are all bit-identical is demoted to the "Other"
// group until a differing reading breaks the streak -- this never affects
// the reading itself, only which advisory bucket the UI sorts it into.
package sensor
