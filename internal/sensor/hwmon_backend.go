// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"

	"github.com/wandercone/hakofoundry/pkg/hwmon"
)

func listHwmonDevicesCtx(ctx context.Context) ([]string, error) {
	return hwmon.ListDevicesCtx(ctx)
}

func readHwmonDeviceNameCtx(ctx context.Context, device string) (string, error) {
	return hwmon.ReadStringCtx(ctx, device+"/name")
}

func listHwmonTempAttrsCtx(ctx context.Context, device string) ([]string, error) {
	return hwmon.ListAttributesCtx(ctx, device, `^temp\d+_input$`)
}

func readHwmonMilliCtx(ctx context.Context, path string) (int, bool) {
	v, err := hwmon.ReadIntCtx(ctx, path)
	if err != nil {
		return 0, false
	}
	return v, true
}
