package browser

import (
	"context"
	"fmt"
	"time"

	"portal-agent/internal/config"
	"portal-agent/internal/ports"
	"portal-agent/pkg/apperr"
	"portal-agent/pkg/logg"
	"portal-agent/pkg/tracing"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	sessionManagerName = "BrowserSession"
	browserTracer      = "browser.session"
)

// Manager owns the playwright runtime for the process lifetime and
// one browser session at a time. The runtime starts once; sessions
// are launched and closed per login attempt.
type Manager struct {
	config     *config.Config
	logger     *zap.Logger
	tracer     trace.Tracer
	playwright *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	page       playwright.Page
	ready      bool
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewManager(params Params) *Manager {
	return &Manager{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, sessionManagerName)),
		tracer: otel.Tracer(browserTracer),
		ready:  false,
	}
}

// Start boots the playwright runtime. Called once from the fx
// lifecycle, not per attempt.
func (m *Manager) Start(ctx context.Context) (err error) {
	const op = "Start"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Installing playwright runtime...")

	if err = playwright.Install(); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_install_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	pw, err := playwright.Run()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_start_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.playwright = pw

	logger.Info("Playwright runtime ready")

	return nil
}

// Stop tears down the runtime at process shutdown.
func (m *Manager) Stop(ctx context.Context) error {
	const op = "Stop"
	logger := m.logger.With(zap.String(logg.Operation, op))

	if m.ready {
		if err := m.Close(ctx); err != nil {
			logger.Warn("Failed to close session during shutdown", zap.Error(err))
		}
	}

	if m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return apperr.WrapWithReason(op, apperr.CodeInternal, err, "playwright_stop_failed")
		}
	}

	logger.Info("Playwright runtime stopped")

	return nil
}

// Launch opens a fresh browser, context and page for one attempt.
func (m *Manager) Launch(ctx context.Context) (err error) {
	const op = "Launch"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if m.playwright == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeSessionInit, "runtime_not_started")
	}

	if m.ready {
		return apperr.WrapErrorWithReason(op, apperr.CodeSessionInit, "session_already_open")
	}

	logger.Info("Launching browser session", zap.Bool("headless", m.config.BrowserConfig.Headless))
	step.AddEvent("launching browser")

	browserOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.config.BrowserConfig.Headless),
		SlowMo:   playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
		Args: []string{
			"--disable-gpu",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--window-size=1920,1080",
			"--blink-settings=imagesEnabled=false",
			"--log-level=2",
		},
	}

	browser, err := m.playwright.Chromium.Launch(browserOptions)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeSessionInit, err, map[string]any{
			apperr.MetaReason: "browser_launch_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browser = browser

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1920, Height: 1080},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	browserCtx, err := browser.NewContext(contextOptions)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeSessionInit, err, map[string]any{
			apperr.MetaReason: "context_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browserCtx = browserCtx

	page, err := browserCtx.NewPage()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeSessionInit, err, map[string]any{
			apperr.MetaReason: "page_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.page = page
	m.page.SetDefaultTimeout(float64(m.config.BrowserConfig.PageTimeout.Milliseconds()))

	m.ready = true
	logger.Info("Browser session launched")

	return nil
}

// Close shuts the whole session down. Safe to call when nothing is
// open; the orchestrator defers it unconditionally.
func (m *Manager) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if m.browserCtx != nil {
		if err := m.browserCtx.Close(); err != nil {
			logger.Warn("Failed to close context", zap.Error(err))
		}
		m.browserCtx = nil
	}

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
		m.browser = nil
	}

	m.page = nil
	m.ready = false
	logger.Info("Browser session closed")

	return nil
}

// ensurePageActive reattaches to a live page when the portal's own
// scripts close the active one.
func (m *Manager) ensurePageActive() error {
	if m.browserCtx == nil {
		return fmt.Errorf("browser context is nil")
	}

	if m.page != nil && !m.page.IsClosed() {
		return nil
	}

	m.logger.Info("Page closed, reconnecting to active page...")

	for _, p := range m.browserCtx.Pages() {
		if !p.IsClosed() {
			m.page = p
			m.logger.Info("Reconnected to existing page")

			return nil
		}
	}

	page, err := m.browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %w", err)
	}

	m.page = page
	m.logger.Info("Created new page")

	return nil
}

func (m *Manager) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if !m.ready {
		return apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	if err := m.ensurePageActive(); err != nil {
		return apperr.WrapWithReason(op, apperr.CodeBrowserNotReady, err, "page_not_active")
	}

	_, err = m.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(m.config.BrowserConfig.PageTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})

	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	step.AddEvent("navigation completed")

	return nil
}

// OpenFresh opens the URL in a new page and switches to it. Some
// portals rewrite the current page's history in ways that make
// repeated navigation unreliable, so a clean page is preferred; when
// page creation fails we reload in place instead.
func (m *Manager) OpenFresh(ctx context.Context, url string) (err error) {
	const op = "OpenFresh"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if !m.ready {
		return apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	old := m.page

	page, pageErr := m.browserCtx.NewPage()
	if pageErr != nil {
		logger.Warn("New page failed, reloading in place", zap.Error(pageErr))

		return m.Navigate(ctx, url)
	}

	page.SetDefaultTimeout(float64(m.config.BrowserConfig.PageTimeout.Milliseconds()))
	m.page = page

	if err = m.Navigate(ctx, url); err != nil {
		return err
	}

	if old != nil && !old.IsClosed() {
		if closeErr := old.Close(); closeErr != nil {
			logger.Warn("Failed to close previous page", zap.Error(closeErr))
		}
	}

	step.AddEvent("fresh page opened")

	return nil
}

// Find waits up to timeout for an element at the XPath. Absence is a
// negative, not an error: the caller branches on the bool.
func (m *Manager) Find(ctx context.Context, path string, timeout time.Duration) (ports.ElementNode, bool) {
	if !m.ready {
		return nil, false
	}

	if err := m.ensurePageActive(); err != nil {
		m.logger.Debug("Find failed, no active page", zap.Error(err))

		return nil, false
	}

	handle, err := m.page.WaitForSelector(xp(path), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(waitMillis(timeout)),
		State:   playwright.WaitForSelectorStateAttached,
	})
	if err != nil || handle == nil {
		m.logger.Debug("Element not present", zap.String(logg.Selector, path))

		return nil, false
	}

	return &node{handle: handle, logger: m.logger}, true
}

// WaitVisible reports whether the element at the XPath becomes
// visible within timeout.
func (m *Manager) WaitVisible(ctx context.Context, path string, timeout time.Duration) bool {
	if !m.ready {
		return false
	}

	if err := m.ensurePageActive(); err != nil {
		return false
	}

	_, err := m.page.WaitForSelector(xp(path), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(waitMillis(timeout)),
		State:   playwright.WaitForSelectorStateVisible,
	})

	return err == nil
}

func (m *Manager) IsReady() bool {
	return m.ready
}

func xp(path string) string {
	return "xpath=" + path
}

// waitMillis converts a wait into the driver's millisecond timeout.
// Sub-millisecond waits clamp to 1: truncation would yield 0, which
// playwright reads as "no timeout" and blocks on indefinitely.
func waitMillis(timeout time.Duration) float64 {
	if timeout < time.Millisecond {
		return 1
	}

	return float64(timeout.Milliseconds())
}
