package netwatch

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"portal-agent/internal/config"
	"portal-agent/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const proberName = "ReachabilityProbe"

// Prober decides whether the host currently has working egress. An
// optional TCP connect to a well-known DNS host short-circuits a
// positive; the HTTP probe (redirects disabled, status < 400) is the
// authoritative check. Neither subsumes the other: a captive gateway
// can pass raw TCP to port 53 while still intercepting HTTP.
type Prober struct {
	config *config.NetworkConfig
	logger *zap.Logger
	client *http.Client
}

type ProberParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewProber(params ProberParams) *Prober {
	cfg := params.Config.NetworkConfig

	return &Prober{
		config: cfg,
		logger: params.Logger.With(zap.String(logg.Layer, proberName)),
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (p *Prober) Reachable(ctx context.Context) bool {
	if p.config.FastProbeEnabled && p.tcpProbe() {
		return true
	}

	return p.httpProbe(ctx)
}

func (p *Prober) tcpProbe() bool {
	addr := net.JoinHostPort(p.config.FastProbeHost, strconv.Itoa(p.config.FastProbePort))

	conn, err := net.DialTimeout("tcp", addr, p.config.FastProbeTimeout)
	if err != nil {
		p.logger.Debug("Fast TCP probe negative", zap.String("addr", addr), zap.Error(err))

		return false
	}
	conn.Close()

	return true
}

func (p *Prober) httpProbe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.TestURL, nil)
	if err != nil {
		p.logger.Debug("Probe request build failed", zap.Error(err))

		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("HTTP probe negative", zap.Error(err))

		return false
	}
	defer resp.Body.Close()

	p.logger.Debug("HTTP probe status", zap.Int("status", resp.StatusCode))

	return resp.StatusCode < 400
}
