package portal

import (
	"context"
	"time"

	"portal-agent/internal/entity"
	"portal-agent/internal/ports"
	"portal-agent/pkg/logg"

	"go.uber.org/zap"
)

const detectorName = "PortalStateDetector"

// Detector classifies the live portal page. Every check is
// time-bounded and probabilistic: a probe that times out is a
// negative, not an error.
type Detector struct {
	session  ports.BrowserSession
	resolver *Resolver
	revealer *Revealer
	logger   *zap.Logger
}

func NewDetector(session ports.BrowserSession, resolver *Resolver, revealer *Revealer, logger *zap.Logger) *Detector {
	return &Detector{
		session:  session,
		resolver: resolver,
		revealer: revealer,
		logger:   logger.With(zap.String(logg.Layer, detectorName)),
	}
}

// IsLoginFormPresent reports whether both credential anchors resolve
// within timeout.
func (d *Detector) IsLoginFormPresent(ctx context.Context, timeout time.Duration) bool {
	if _, ok := d.resolver.Resolve(ctx, usernameField, timeout); !ok {
		return false
	}

	if _, ok := d.resolver.Resolve(ctx, passwordField, timeout); !ok {
		return false
	}

	return true
}

// IsLoggedIn reveals the logout control first, then checks its
// visibility: the portal keeps it hidden until the account menu is
// hovered, so a bare visibility check always reads false.
func (d *Detector) IsLoggedIn(ctx context.Context, timeout time.Duration) bool {
	if d.revealer.Reveal(ctx, logoutControl) {
		return true
	}

	return d.session.WaitVisible(ctx, logoutControl.Primary, timeout)
}

// Classify derives the current portal state from the live page.
func (d *Detector) Classify(ctx context.Context, quickTimeout time.Duration) entity.PortalState {
	if d.IsLoginFormPresent(ctx, quickTimeout) {
		d.logger.Debug("Page state", zap.String(logg.State, string(entity.StateLoginForm)))

		return entity.StateLoginForm
	}

	if d.IsLoggedIn(ctx, quickTimeout) {
		d.logger.Debug("Page state", zap.String(logg.State, string(entity.StateLoggedIn)))

		return entity.StateLoggedIn
	}

	d.logger.Debug("Page state", zap.String(logg.State, string(entity.StateIndeterminate)))

	return entity.StateIndeterminate
}
