package portal

import (
	"context"
	"time"

	"portal-agent/internal/entity"
	"portal-agent/internal/ports"
	"portal-agent/pkg/logg"

	"go.uber.org/zap"
)

const (
	revealerName = "VisibilityReveal"

	// Short waits inside the reveal loop; the whole procedure runs on
	// every state probe and must stay within its budget.
	revealFindWait  = 150 * time.Millisecond
	revealSettle    = 200 * time.Millisecond
	revealCheckSlot = 500 * time.Millisecond
)

// Revealer forces a conditionally hidden control to become
// interactable. The portal hides its account menu until hovered, and
// headless sessions do not deliver real hover events, so each
// candidate container gets a real hover, synthetic hover events, and
// a style override before the target is re-checked.
type Revealer struct {
	session ports.BrowserSession
	logger  *zap.Logger
	budget  time.Duration
}

func NewRevealer(session ports.BrowserSession, logger *zap.Logger, budget time.Duration) *Revealer {
	return &Revealer{
		session: session,
		logger:  logger.With(zap.String(logg.Layer, revealerName)),
		budget:  budget,
	}
}

// Reveal reports whether the target became visible within the time
// budget. It walks the target itself and then successively higher
// ancestor containers, re-checking the target after each candidate.
func (r *Revealer) Reveal(ctx context.Context, target entity.Locator) bool {
	deadline := time.Now().Add(r.budget)
	candidates := append([]string{target.Primary}, target.RevealPaths...)

	for _, path := range candidates {
		// Sub-millisecond residue truncates to a zero-millisecond wait
		// downstream, which the driver reads as "no timeout"; treat it
		// as exhausted.
		remaining := time.Until(deadline)
		if remaining < time.Millisecond {
			r.logger.Debug("Reveal budget exhausted", zap.String(logg.Selector, target.Name))

			return false
		}

		cand, ok := r.session.Find(ctx, path, minDuration(revealFindWait, remaining))
		if !ok {
			continue
		}

		// Failures here are expected on a page we do not control;
		// the only signal that matters is the target check below.
		_ = cand.ScrollIntoView(ctx)
		_ = cand.Hover(ctx)
		_ = cand.DispatchHoverEvents(ctx)
		_ = cand.ForceVisibleStyles(ctx)

		time.Sleep(minDuration(revealSettle, time.Until(deadline)))

		remaining = time.Until(deadline)
		if remaining < time.Millisecond {
			return false
		}

		if r.session.WaitVisible(ctx, target.Primary, minDuration(revealCheckSlot, remaining)) {
			return true
		}
	}

	return false
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}

	return b
}
