package bootstrap

import (
	"context"

	"portal-agent/internal/browser"
	"portal-agent/internal/monitor"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func runMonitor(lc fx.Lifecycle, loop *monitor.Loop, manager *browser.Manager, logger *zap.Logger) {
	loopCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting portal agent...")

			if err := manager.Start(ctx); err != nil {
				logger.Error("Failed to start browser runtime", zap.Error(err))

				return err
			}

			go loop.Run(loopCtx)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down portal agent...")

			cancel()

			if err := manager.Stop(ctx); err != nil {
				logger.Error("Failed to stop browser runtime", zap.Error(err))
			}

			return nil
		},
	})
}
