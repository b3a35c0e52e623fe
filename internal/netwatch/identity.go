package netwatch

import (
	"context"
	"os/exec"
	"strings"

	"portal-agent/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const identityName = "NetworkIdentity"

// Identity reports the wireless network the host is currently
// associated with. The query itself is platform-specific; see the
// build-tagged querySSID implementations.
type Identity struct {
	logger *zap.Logger
}

type IdentityParams struct {
	fx.In

	Logger *zap.Logger
}

func NewIdentity(params IdentityParams) *Identity {
	return &Identity{
		logger: params.Logger.With(zap.String(logg.Layer, identityName)),
	}
}

// CurrentNetworkName returns the associated SSID. False means not
// associated or the query failed; both leave the monitor loop idle.
func (i *Identity) CurrentNetworkName(ctx context.Context) (string, bool) {
	ssid, err := querySSID(ctx)
	if err != nil {
		i.logger.Debug("SSID query failed", zap.Error(err))

		return "", false
	}

	if ssid == "" {
		return "", false
	}

	i.logger.Debug("Current SSID", zap.String(logg.SSID, ssid))

	return ssid, true
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}

	return string(out), nil
}

func trimmedLines(out string) []string {
	raw := strings.Split(out, "\n")
	lines := make([]string, 0, len(raw))

	for _, l := range raw {
		lines = append(lines, strings.TrimSpace(l))
	}

	return lines
}
