// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon provides bounded, context-aware access to the Linux hwmon
// sysfs tree (/sys/class/hwmon/*). Every read goes through the generic
// bounded helper, which runs the syscall on its own goroutine and races it
// against ctx.Done, so a caller on a tight scheduler tick never stalls past
// its context even if the underlying file read hangs on a wedged driver.
//
// # Basic usage
//
//	devices, err := hwmon.ListDevicesCtx(ctx)
//	for _, dev := range devices {
//		name, _ := hwmon.ReadStringCtx(ctx, filepath.Join(dev, "name"))
//		raw, err := hwmon.ReadIntCtx(ctx, filepath.Join(dev, "temp1_input"))
//		celsius := float64(raw) / 1000.0
//	}
//
// Errors are mapped from the underlying os/syscall error into one of the
// sentinels in errors.go (ErrFileNotFound, ErrPermissionDenied,
// ErrInvalidValue, ErrReadFailure, ErrWriteFailure, ErrOperationTimeout) so
// callers can branch on failure class without inspecting path errors
// directly.
package hwmon
