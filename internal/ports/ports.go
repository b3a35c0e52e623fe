package ports

import (
	"context"
	"time"

	"portal-agent/internal/entity"
)

// BrowserSession is one automated browsing session against the
// portal. A session is launched at the start of an orchestration run
// and must be closed on every exit path.
type BrowserSession interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	// OpenFresh opens the URL in a new page and switches to it,
	// falling back to in-place navigation when page creation fails.
	OpenFresh(ctx context.Context, url string) error
	// Find waits up to timeout for an element at the XPath to be
	// present. False means timed out or driver failure; absence is
	// an expected page state, not an error.
	Find(ctx context.Context, path string, timeout time.Duration) (ElementNode, bool)
	// WaitVisible reports whether the element at the XPath becomes
	// visible within timeout.
	WaitVisible(ctx context.Context, path string, timeout time.Duration) bool
	IsReady() bool
}

// ElementNode is a live handle into the page tree.
type ElementNode interface {
	Tag(ctx context.Context) string
	// First resolves a relative XPath under this node.
	First(ctx context.Context, relPath string) (ElementNode, bool)
	Click(ctx context.Context, timeout time.Duration) error
	JSClick(ctx context.Context) error
	Focus(ctx context.Context) error
	Clear(ctx context.Context) error
	TypeText(ctx context.Context, text string) error
	// SetValue assigns the value via script and dispatches the
	// input/change events that JS-managed widgets listen for.
	SetValue(ctx context.Context, value string) error
	Value(ctx context.Context) string
	Hover(ctx context.Context) error
	// DispatchHoverEvents fires mouseover/mousemove/mouseenter
	// synthetically; headless sessions do not always generate real
	// hover events.
	DispatchHoverEvents(ctx context.Context) error
	// ForceVisibleStyles overrides visibility/opacity/display as a
	// last resort against style-hidden controls.
	ForceVisibleStyles(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
	Visible(ctx context.Context) bool
}

// NetworkIdentity reports the currently associated wireless network
// name, if any.
type NetworkIdentity interface {
	CurrentNetworkName(ctx context.Context) (string, bool)
}

// ReachabilityProbe reports whether outbound requests from this host
// currently succeed against a known-good endpoint.
type ReachabilityProbe interface {
	Reachable(ctx context.Context) bool
}

// LoginRunner drives one full portal login attempt, from state
// detection through credential submission and connectivity recovery.
type LoginRunner interface {
	Run(ctx context.Context) entity.AttemptOutcome
}
