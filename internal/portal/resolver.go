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

const resolverName = "LocatorResolver"

// labelSuffix marks anchor paths whose final segment denotes a
// label-like node; the last-resort tier swaps it for the matching
// input path.
const labelSuffix = "/label"

// Resolver finds the real input control near an anchor locator. The
// anchor is a guess: portals move labels and inputs around inside
// the same container, so resolution walks an ordered fallback chain
// instead of trusting the path.
type Resolver struct {
	session     ports.BrowserSession
	logger      *zap.Logger
	findTimeout time.Duration
}

func NewResolver(session ports.BrowserSession, logger *zap.Logger, findTimeout time.Duration) *Resolver {
	return &Resolver{
		session:     session,
		logger:      logger.With(zap.String(logg.Layer, resolverName)),
		findTimeout: findTimeout,
	}
}

func inputCapable(tag string) bool {
	return tag == "input" || tag == "textarea"
}

// nearbyStrategy locates an input-capable element relative to an
// anchor node. Strategies are pure over the ElementNode capability so
// they can be exercised against synthetic trees.
type nearbyStrategy struct {
	name string
	fn   func(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, bool)
}

var nearbyStrategies = []nearbyStrategy{
	{
		name: "self",
		fn: func(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, bool) {
			if inputCapable(anchor.Tag(ctx)) {
				return anchor, true
			}

			return nil, false
		},
	},
	{
		name: "descendant",
		fn: func(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, bool) {
			if el, ok := anchor.First(ctx, ".//input"); ok {
				return el, true
			}

			return anchor.First(ctx, ".//textarea")
		},
	},
	{
		name: "following_sibling",
		fn: func(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, bool) {
			return anchor.First(ctx, "following-sibling::input[1]")
		},
	},
	{
		name: "preceding_sibling",
		fn: func(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, bool) {
			return anchor.First(ctx, "preceding-sibling::input[1]")
		},
	},
	{
		name: "parent_subtree",
		fn: func(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, bool) {
			parent, ok := anchor.First(ctx, "..")
			if !ok {
				return nil, false
			}

			return parent.First(ctx, ".//input")
		},
	},
}

// Resolve locates the interactive control for a locator within wait.
// False is an expected outcome of page-state ambiguity, never an
// error.
func (r *Resolver) Resolve(ctx context.Context, loc entity.Locator, wait time.Duration) (ports.ElementNode, bool) {
	logger := r.logger.With(zap.String(logg.Selector, loc.Name))

	if anchor, ok := r.session.Find(ctx, loc.Primary, wait); ok {
		if el, tier, found := resolveNear(ctx, anchor); found {
			logger.Debug("Control resolved", zap.String("tier", tier))

			return el, true
		}
	}

	for _, path := range fallbackPaths(loc) {
		if el, ok := r.session.Find(ctx, path, r.findTimeout); ok {
			if inputCapable(el.Tag(ctx)) {
				logger.Debug("Control resolved via fallback path")

				return el, true
			}

			if near, _, found := resolveNear(ctx, el); found {
				return near, true
			}
		}
	}

	logger.Debug("Control not resolved")

	return nil, false
}

// resolveNear runs the tier chain around an already-located anchor.
func resolveNear(ctx context.Context, anchor ports.ElementNode) (ports.ElementNode, string, bool) {
	for _, s := range nearbyStrategies {
		if el, ok := s.fn(ctx, anchor); ok {
			return el, s.name, true
		}
	}

	return nil, "", false
}

// fallbackPaths lists the alternate anchor paths for a locator: the
// declared fallbacks plus, for label anchors, the label-to-input
// path swap.
func fallbackPaths(loc entity.Locator) []string {
	paths := make([]string, 0, len(loc.Fallbacks)+1)
	paths = append(paths, loc.Fallbacks...)

	if strings.HasSuffix(loc.Primary, labelSuffix) {
		swapped := strings.TrimSuffix(loc.Primary, labelSuffix) + "/input"

		duplicate := false
		for _, p := range paths {
			if p == swapped {
				duplicate = true
				break
			}
		}

		if !duplicate {
			paths = append(paths, swapped)
		}
	}

	return paths
}
