package portal

import (
	"context"
	"strings"
	"time"

	"portal-agent/internal/entity"
	"portal-agent/internal/ports"
	"portal-agent/pkg/logg"

	"go.uber.org/zap"
)

const actionsName = "UIActions"

// Actions are the primitive UI operations the orchestrator sequences.
// Every method returns a boolean: against a third-party page, a step
// that cannot complete is a retryable condition, not a fault.
type Actions struct {
	session      ports.BrowserSession
	resolver     *Resolver
	logger       *zap.Logger
	clickTimeout time.Duration
}

func NewActions(session ports.BrowserSession, resolver *Resolver, logger *zap.Logger, clickTimeout time.Duration) *Actions {
	return &Actions{
		session:      session,
		resolver:     resolver,
		logger:       logger.With(zap.String(logg.Layer, actionsName)),
		clickTimeout: clickTimeout,
	}
}

// ClickWhenReady waits up to timeout for the target to become
// clickable, then clicks it.
func (a *Actions) ClickWhenReady(ctx context.Context, loc entity.Locator, timeout time.Duration) bool {
	logger := a.logger.With(zap.String(logg.Selector, loc.Name))

	el, ok := a.session.Find(ctx, loc.Primary, timeout)
	if !ok {
		logger.Info("Click target did not appear")

		return false
	}

	if err := el.Click(ctx, timeout); err != nil {
		logger.Warn("Click failed", zap.Error(err))

		return false
	}

	logger.Info("Clicked element")

	return true
}

// ClickForced is the JS-click fallback for controls that reject
// pointer interaction while hidden or mid-transition.
func (a *Actions) ClickForced(ctx context.Context, loc entity.Locator) bool {
	logger := a.logger.With(zap.String(logg.Selector, loc.Name))

	el, ok := a.session.Find(ctx, loc.Primary, a.clickTimeout)
	if !ok {
		return false
	}

	if err := el.JSClick(ctx); err != nil {
		logger.Warn("JS click failed", zap.Error(err))

		return false
	}

	logger.Info("Clicked element via JS")

	return true
}

// FillVerified resolves the real input control near the locator,
// writes the value, and verifies the field holds it. Keystroke input
// is tried first; when it silently fails (JS-managed widgets swallow
// it), the value is assigned directly with synthetic notification
// events and verified again.
func (a *Actions) FillVerified(ctx context.Context, loc entity.Locator, value string) bool {
	logger := a.logger.With(zap.String(logg.Selector, loc.Name))

	target, ok := a.resolver.Resolve(ctx, loc, a.clickTimeout)
	if !ok {
		logger.Error("Input control not located")

		return false
	}

	_ = target.ScrollIntoView(ctx)
	_ = target.Focus(ctx)
	_ = target.Clear(ctx)

	if err := target.TypeText(ctx, value); err == nil {
		if strings.TrimSpace(target.Value(ctx)) == value {
			logger.Info("Field filled via keystrokes")

			return true
		}
	} else {
		logger.Debug("Keystroke input failed, trying direct assignment", zap.Error(err))
	}

	if err := target.SetValue(ctx, value); err != nil {
		logger.Error("Direct value assignment failed", zap.Error(err))

		return false
	}

	if strings.TrimSpace(target.Value(ctx)) == value {
		logger.Info("Field filled via direct assignment")

		return true
	}

	logger.Error("Field value did not verify after both input paths")

	return false
}
