package browser

import (
	"context"
	"strings"
	"time"

	"portal-agent/internal/ports"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// node wraps a live element handle. Probing methods swallow driver
// errors and report negatives; the portal layer treats absence and
// interaction failure as expected page states.
type node struct {
	handle playwright.ElementHandle
	logger *zap.Logger
}

func (n *node) Tag(ctx context.Context) string {
	result, err := n.handle.Evaluate(tagNameScript)
	if err != nil {
		return ""
	}

	tag, _ := result.(string)

	return strings.ToLower(tag)
}

func (n *node) First(ctx context.Context, relPath string) (ports.ElementNode, bool) {
	handle, err := n.handle.QuerySelector(xp(relPath))
	if err != nil || handle == nil {
		return nil, false
	}

	return &node{handle: handle, logger: n.logger}, true
}

func (n *node) Click(ctx context.Context, timeout time.Duration) error {
	return n.handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (n *node) JSClick(ctx context.Context) error {
	_, err := n.handle.Evaluate(jsClickScript)

	return err
}

func (n *node) Focus(ctx context.Context) error {
	return n.handle.Focus()
}

func (n *node) Clear(ctx context.Context) error {
	return n.handle.Fill("")
}

func (n *node) TypeText(ctx context.Context, text string) error {
	return n.handle.Type(text, playwright.ElementHandleTypeOptions{
		Delay: playwright.Float(20),
	})
}

func (n *node) SetValue(ctx context.Context, value string) error {
	_, err := n.handle.Evaluate(setValueScript, value)

	return err
}

func (n *node) Value(ctx context.Context) string {
	result, err := n.handle.Evaluate(currentValueScript)
	if err != nil {
		return ""
	}

	value, _ := result.(string)

	return value
}

func (n *node) Hover(ctx context.Context) error {
	return n.handle.Hover()
}

func (n *node) DispatchHoverEvents(ctx context.Context) error {
	_, err := n.handle.Evaluate(dispatchHoverScript)

	return err
}

func (n *node) ForceVisibleStyles(ctx context.Context) error {
	_, err := n.handle.Evaluate(forceVisibleScript)

	return err
}

func (n *node) ScrollIntoView(ctx context.Context) error {
	_, err := n.handle.Evaluate(scrollIntoViewScript)

	return err
}

func (n *node) Visible(ctx context.Context) bool {
	visible, err := n.handle.IsVisible()
	if err != nil {
		return false
	}

	return visible
}
