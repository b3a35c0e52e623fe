//go:build windows

package netwatch

import (
	"context"
	"strings"
)

// querySSID parses `netsh wlan show interfaces`: the SSID line, not
// the BSSID one, holds the network name.
func querySSID(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, "netsh", "wlan", "show", "interfaces")
	if err != nil {
		return "", err
	}

	for _, line := range trimmedLines(out) {
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, "ssid") || strings.Contains(lower, "bssid") {
			continue
		}

		if _, value, found := strings.Cut(line, ":"); found {
			return strings.TrimSpace(value), nil
		}
	}

	return "", nil
}
