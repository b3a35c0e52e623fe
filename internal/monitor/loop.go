package monitor

import (
	"context"
	"fmt"
	"time"

	"portal-agent/internal/config"
	"portal-agent/internal/entity"
	"portal-agent/internal/ports"
	"portal-agent/pkg/logg"
	"portal-agent/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	loopName   = "MonitorLoop"
	loopTracer = "monitor.loop"
)

// Loop polls network identity and reachability and triggers a login
// attempt when the host sits on the target network without egress.
// Attempts run synchronously: the loop never overlaps orchestration
// runs, so at most one browser session exists at a time.
type Loop struct {
	config   *config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
	identity ports.NetworkIdentity
	probe    ports.ReachabilityProbe
	runner   ports.LoginRunner
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Identity ports.NetworkIdentity
	Probe    ports.ReachabilityProbe
	Runner   ports.LoginRunner
}

func NewLoop(params Params) *Loop {
	return &Loop{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, loopName)),
		tracer:   otel.Tracer(loopTracer),
		identity: params.Identity,
		probe:    params.Probe,
		runner:   params.Runner,
	}
}

// Run blocks until ctx is cancelled. Iteration faults never escape:
// they are logged and the loop sleeps its normal interval.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("Monitor loop started",
		zap.String(logg.SSID, l.config.NetworkConfig.TargetSSID),
		zap.Duration("interval", l.config.NetworkConfig.CheckInterval))

	for {
		l.iterate(ctx)

		select {
		case <-ctx.Done():
			l.logger.Info("Monitor loop stopped")

			return
		case <-time.After(l.config.NetworkConfig.CheckInterval):
		}
	}
}

func (l *Loop) iterate(ctx context.Context) {
	const op = "iterate"
	logger := l.logger.With(zap.String(logg.Operation, op))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Iteration fault recovered", zap.Any("panic", r))
		}
	}()

	var iterErr error
	ctx, span := tracing.StartSpan(ctx, l.tracer, logger, op)
	defer func() {
		span.End(iterErr)
	}()

	ssid, ok := l.identity.CurrentNetworkName(ctx)
	if !ok || ssid != l.config.NetworkConfig.TargetSSID {
		logger.Debug("Not on target network, skipping",
			zap.String(logg.SSID, ssid))

		return
	}

	status := entity.StatusOf(l.probe.Reachable(ctx))
	if status == entity.StatusOnline {
		logger.Debug("Connectivity OK, nothing to do",
			zap.String(logg.State, string(status)))

		return
	}

	logger.Warn("Target network without egress, starting login attempt",
		zap.String(logg.State, string(status)))
	span.AddEvent("login attempt triggered")

	outcome := l.runner.Run(ctx)
	if !outcome.Succeeded {
		iterErr = fmt.Errorf("login attempt failed: %s", outcome.Reason)
		logger.Warn("Login attempt did not recover connectivity",
			zap.String(logg.Reason, string(outcome.Reason)))

		return
	}

	logger.Info("Connectivity recovered")
}
