//go:build darwin

package netwatch

import (
	"context"
	"strings"
)

const airportBin = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

func querySSID(ctx context.Context) (string, error) {
	// networksetup first; it survives OS updates better than the
	// private airport binary.
	if out, err := runCommand(ctx, "networksetup", "-getairportnetwork", "en0"); err == nil {
		if _, value, found := strings.Cut(out, ":"); found {
			ssid := strings.TrimSpace(value)
			if ssid != "" && !strings.Contains(out, "not associated") {
				return ssid, nil
			}
		}
	}

	out, err := runCommand(ctx, airportBin, "-I")
	if err != nil {
		return "", err
	}

	for _, line := range trimmedLines(out) {
		if strings.HasPrefix(line, "SSID:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "SSID:")), nil
		}
	}

	return "", nil
}
