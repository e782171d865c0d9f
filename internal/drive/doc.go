// SPDX-License-Identifier: BSD-3-Clause

// Package drive implements the drive temperature aggregator: named monitors
// over subsets of chassis storage drives that publish an average or
// maximum temperature as if each monitor were itself a sensor, under the
// qualified name "Drives.<MonitorName>".
//
// The aggregator never talks to disks directly. It consumes a Registry --
// an external collaborator refreshed on its own >=60s cadence, conceptually
// a smartctl-backed scraper -- and reads only each drive's current
// temperature and whether its hash is still present.
//
// # Basic usage
//
//	hash := drive.HashSerial("WD-WCC4N0123456")
//	agg := drive.NewAggregator(registry)
//	agg.SetMonitor("curve-id-1", "Bulk Array", []drive.Hash{hash}, drive.Average)
//	agg.Tick(ctx)
//	celsius, ok := agg.Read("Drives.Bulk Array")
package drive
