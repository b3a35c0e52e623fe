//go:build linux

package netwatch

import (
	"context"
	"strings"
)

func querySSID(ctx context.Context) (string, error) {
	if out, err := runCommand(ctx, "nmcli", "-t", "-f", "active,ssid", "dev", "wifi"); err == nil {
		for _, line := range trimmedLines(out) {
			if active, ssid, found := strings.Cut(line, ":"); found && active == "yes" {
				return ssid, nil
			}
		}
	}

	out, err := runCommand(ctx, "iwgetid", "-r")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}
