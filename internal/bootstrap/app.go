package bootstrap

import (
	"time"

	"portal-agent/internal/browser"
	"portal-agent/internal/config"
	"portal-agent/internal/monitor"
	"portal-agent/internal/netwatch"
	"portal-agent/internal/portal"
	"portal-agent/internal/ports"

	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			browser.NewManager,
			netwatch.NewIdentity,
			netwatch.NewProber,
			portal.NewOrchestrator,
			monitor.NewLoop,

			func(m *browser.Manager) ports.BrowserSession { return m },
			func(i *netwatch.Identity) ports.NetworkIdentity { return i },
			func(p *netwatch.Prober) ports.ReachabilityProbe { return p },
			func(o *portal.Orchestrator) ports.LoginRunner { return o },
		),

		fx.Invoke(
			runMonitor,
		),

		fx.StartTimeout(120*time.Second),
	)
}
