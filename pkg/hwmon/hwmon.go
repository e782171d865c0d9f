// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
)

// DefaultHwmonPath is the default path to hwmon devices in sysfs.
const DefaultHwmonPath = "/sys/class/hwmon"

// bounded runs fn on its own goroutine and returns its result, or
// ErrOperationTimeout wrapping ctx.Err() if ctx expires first. A sysfs read
// that blocks on a wedged driver never stalls a scheduler tick past its
// context deadline; it just leaks one goroutine until the read eventually
// returns.
func bounded[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	done := make(chan struct {
		v   T
		err error
	}, 1)

	go func() {
		v, err := fn()
		done <- struct {
			v   T
			err error
		}{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// ReadIntCtx reads an integer value from the specified hwmon file path.
func ReadIntCtx(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	return bounded(ctx, func() (int, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, mapFileError(err, path)
		}
		value, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return 0, fmt.Errorf("%w: failed to parse integer from %s: %w", ErrInvalidValue, path, err)
		}
		return value, nil
	})
}

// ReadStringCtx reads a string value from the specified hwmon file path.
func ReadStringCtx(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	return bounded(ctx, func() (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", mapFileError(err, path)
		}
		return strings.TrimSpace(string(data)), nil
	})
}

// ListDevicesCtx returns a list of hwmon device paths under DefaultHwmonPath.
func ListDevicesCtx(ctx context.Context) ([]string, error) {
	return ListDevicesInPathCtx(ctx, DefaultHwmonPath)
}

// ListDevicesInPathCtx returns a list of hwmon device paths in the specified directory.
func ListDevicesInPathCtx(ctx context.Context, hwmonPath string) ([]string, error) {
	if hwmonPath == "" {
		return nil, fmt.Errorf("%w: hwmon path cannot be empty", ErrInvalidPath)
	}
	return bounded(ctx, func() ([]string, error) {
		entries, err := os.ReadDir(hwmonPath)
		if err != nil {
			return nil, mapFileError(err, hwmonPath)
		}

		var devices []string
		hwmonPattern := regexp.MustCompile(`^hwmon\d+$`)
		for _, entry := range entries {
			if !hwmonPattern.MatchString(entry.Name()) {
				continue
			}
			devicePath := filepath.Join(hwmonPath, entry.Name())
			// os.Stat follows symlinks, since hwmon device dirs are usually
			// symlinked in from their owning driver's sysfs node.
			if stat, err := os.Stat(devicePath); err == nil && stat.IsDir() {
				devices = append(devices, devicePath)
			}
		}
		return devices, nil
	})
}

// ListAttributesCtx returns the attribute files in devicePath whose name
// matches pattern (a regexp), or every file when pattern is empty.
func ListAttributesCtx(ctx context.Context, devicePath, pattern string) ([]string, error) {
	if devicePath == "" {
		return nil, fmt.Errorf("%w: device path cannot be empty", ErrInvalidPath)
	}
	return bounded(ctx, func() ([]string, error) {
		entries, err := os.ReadDir(devicePath)
		if err != nil {
			return nil, mapFileError(err, devicePath)
		}

		var regex *regexp.Regexp
		if pattern != "" {
			regex, err = regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid pattern '%s': %w", ErrInvalidValue, pattern, err)
			}
		}

		var attributes []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if regex == nil || regex.MatchString(entry.Name()) {
				attributes = append(attributes, entry.Name())
			}
		}
		return attributes, nil
	})
}

// mapFileError maps OS file errors to hwmon package errors.
func mapFileError(err error, path string) error {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	var pe *os.PathError
	if errors.As(err, &pe) {
		var errno syscall.Errno
		if errors.As(pe.Err, &errno) && errno == syscall.EINVAL {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, path, err)
		}
		switch pe.Op {
		case "read":
			return fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
		case "write", "open":
			return fmt.Errorf("%w: %s: %w", ErrWriteFailure, path, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
}
