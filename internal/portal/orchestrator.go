package portal

import (
	"context"
	"errors"
	"time"

	"portal-agent/internal/config"
	"portal-agent/internal/entity"
	"portal-agent/internal/ports"
	"portal-agent/pkg/apperr"
	"portal-agent/pkg/logg"
	"portal-agent/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	orchestratorName   = "LoginOrchestrator"
	orchestratorTracer = "portal.orchestrator"

	logoutSettle      = 300 * time.Millisecond
	logoutRetryWait   = 200 * time.Millisecond
	lastResortRetries = 2
)

// Orchestrator drives one login attempt: classify the page, steer it
// to the login form (logging out first when needed), submit
// credentials, and wait for connectivity to recover. Whatever the
// outcome, the browser session is closed before Run returns.
type Orchestrator struct {
	config   *config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
	session  ports.BrowserSession
	probe    ports.ReachabilityProbe
	detector *Detector
	actions  *Actions
	revealer *Revealer
}

type OrchestratorParams struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Session ports.BrowserSession
	Probe   ports.ReachabilityProbe
}

func NewOrchestrator(params OrchestratorParams) *Orchestrator {
	logger := params.Logger.With(zap.String(logg.Layer, orchestratorName))

	resolver := NewResolver(params.Session, params.Logger, params.Config.BrowserConfig.FindTimeout)
	revealer := NewRevealer(params.Session, params.Logger, params.Config.PortalConfig.RevealBudget)
	actions := NewActions(params.Session, resolver, params.Logger, params.Config.BrowserConfig.ClickTimeout)
	detector := NewDetector(params.Session, resolver, revealer, params.Logger)

	return &Orchestrator{
		config:   params.Config,
		logger:   logger,
		tracer:   otel.Tracer(orchestratorTracer),
		session:  params.Session,
		probe:    params.Probe,
		detector: detector,
		actions:  actions,
		revealer: revealer,
	}
}

// Run executes one full login attempt and reports its outcome. It
// never returns an error: every failure maps to a FailureKind the
// monitor loop can log and move past.
func (o *Orchestrator) Run(ctx context.Context) entity.AttemptOutcome {
	const op = "Run"

	attempt := &entity.Attempt{
		ID:        uuid.New(),
		StartedAt: time.Now(),
	}
	logger := o.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.AttemptID, attempt.ID.String()),
	)

	var runErr error
	ctx, span := tracing.StartSpan(ctx, o.tracer, logger, op,
		attribute.String("attempt_id", attempt.ID.String()))
	defer func() {
		span.End(runErr)
	}()

	cred, ok := o.config.PortalConfig.Credentials()
	if !ok {
		runErr = attemptErr(attempt, apperr.CodeConfigMissing, apperr.StagePreparation,
			errors.New("credentials not configured"))
		logger.Error("Credentials missing, set PORTAL_USERNAME and PORTAL_PASSWORD")

		return o.finish(logger, attempt, false, entity.FailureConfigMissing, runErr)
	}

	if err := o.session.Launch(ctx); err != nil {
		runErr = attemptErr(attempt, apperr.CodeSessionInit, apperr.StageBrowser, err)
		logger.Error("Browser session init failed", zap.Error(err))

		return o.finish(logger, attempt, false, entity.FailureSessionInit, runErr)
	}

	// The one invariant this state machine must never violate: the
	// session is closed on every exit path.
	defer func() {
		if err := o.session.Close(ctx); err != nil {
			logger.Warn("Session close failed", zap.Error(err))
		}
	}()

	portalURL := o.config.PortalConfig.URL
	logger.Info("Opening portal page", zap.String(logg.URL, portalURL))

	if err := o.session.Navigate(ctx, portalURL); err != nil {
		runErr = attemptErr(attempt, apperr.CodeProbeNegative, apperr.StageNavigation, err)
		attempt.AddStep("navigate", false, "portal page unreachable")
		logger.Warn("Portal page unreachable", zap.Error(err))

		return o.finish(logger, attempt, false, entity.FailureProbeNegative, runErr)
	}
	attempt.AddStep("navigate", true, "")

	if !o.ensureLoginForm(ctx, attempt, logger) {
		runErr = attemptErr(attempt, apperr.CodeProbeNegative, apperr.StageDetection,
			errors.New("login form unreachable"))
		logger.Error("Could not reach the login form, giving up this attempt")

		return o.finish(logger, attempt, false, entity.FailureProbeNegative, runErr)
	}
	span.AddEvent("login form confirmed")

	if !o.actions.FillVerified(ctx, usernameField, cred.Username) {
		runErr = attemptErr(attempt, apperr.CodeFieldFillFailed, apperr.StageInteraction,
			errors.New("username field rejected input"))
		attempt.AddStep("fill_username", false, "")

		return o.finish(logger, attempt, false, entity.FailureFieldFill, runErr)
	}
	attempt.AddStep("fill_username", true, "")

	if !o.actions.FillVerified(ctx, passwordField, cred.Password) {
		runErr = attemptErr(attempt, apperr.CodeFieldFillFailed, apperr.StageInteraction,
			errors.New("password field rejected input"))
		attempt.AddStep("fill_password", false, "")

		return o.finish(logger, attempt, false, entity.FailureFieldFill, runErr)
	}
	attempt.AddStep("fill_password", true, "")

	if !o.actions.ClickWhenReady(ctx, submitButton, o.config.BrowserConfig.ClickTimeout) {
		runErr = attemptErr(attempt, apperr.CodeSubmitFailed, apperr.StageInteraction,
			errors.New("submit control not clickable"))
		attempt.AddStep("submit", false, "")

		return o.finish(logger, attempt, false, entity.FailureSubmit, runErr)
	}
	attempt.AddStep("submit", true, "")
	span.AddEvent("credentials submitted")

	logger.Info("Login submitted, polling connectivity")

	if !o.awaitRecovery(ctx) {
		runErr = attemptErr(attempt, apperr.CodeUnrecovered, apperr.StageRecovery,
			errors.New("connectivity did not return within ceiling"))
		attempt.AddStep("recovery", false, "connectivity did not return within ceiling")

		return o.finish(logger, attempt, false, entity.FailureUnrecovered, runErr)
	}
	attempt.AddStep("recovery", true, "")

	return o.finish(logger, attempt, true, entity.FailureNone, nil)
}

// attemptErr tags a failure with its code and the stage it surfaced
// in, so the span and log carry the same vocabulary as the journal.
func attemptErr(attempt *entity.Attempt, code, stage string, err error) error {
	return apperr.Wrap("Run", code, err, map[string]any{
		apperr.MetaStage:   stage,
		apperr.MetaAttempt: attempt.ID.String(),
	})
}

// ensureLoginForm steers the page to a confirmed login form from any
// detected state. Already-authenticated sessions are logged out
// first; indeterminate pages get a fresh context, then one final
// logout-and-reopen cycle before giving up.
func (o *Orchestrator) ensureLoginForm(ctx context.Context, attempt *entity.Attempt, logger *zap.Logger) bool {
	quick := o.config.PortalConfig.QuickProbeTimeout
	full := o.config.PortalConfig.FormWaitTimeout

	state := o.detector.Classify(ctx, quick)
	attempt.AddStep("detect_state", true, string(state))

	switch state {
	case entity.StateLoginForm:
		logger.Info("Login form detected")

		return true

	case entity.StateLoggedIn:
		logger.Info("Already-authenticated state detected, logging out first")

		loggedOut := o.attemptLogout(ctx, o.config.PortalConfig.LogoutRetries)
		attempt.AddStep("logout", loggedOut, "")

	default:
		logger.Info("Page state indeterminate, reopening portal in a fresh context")
	}

	if err := o.session.OpenFresh(ctx, o.config.PortalConfig.URL); err != nil {
		logger.Warn("Fresh context open failed", zap.Error(err))
	}

	if o.detector.IsLoginFormPresent(ctx, full) {
		attempt.AddStep("reopen", true, "")

		return true
	}

	// Last resort: one more logout-then-reopen cycle.
	logger.Info("Login form still absent, trying one final logout and reopen")
	o.attemptLogout(ctx, lastResortRetries)

	if err := o.session.OpenFresh(ctx, o.config.PortalConfig.URL); err != nil {
		logger.Warn("Fresh context open failed", zap.Error(err))
	}

	ok := o.detector.IsLoginFormPresent(ctx, full)
	attempt.AddStep("reopen", ok, "last resort")

	return ok
}

// attemptLogout runs the logout retry ladder: reveal the hidden
// control, try a normal click, then force it through JS.
func (o *Orchestrator) attemptLogout(ctx context.Context, retries int) bool {
	if retries < 1 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		o.revealer.Reveal(ctx, logoutControl)

		if o.actions.ClickWhenReady(ctx, logoutControl, o.config.BrowserConfig.ClickTimeout) {
			time.Sleep(logoutSettle)

			return true
		}

		if o.actions.ClickForced(ctx, logoutControl) {
			time.Sleep(logoutSettle)

			return true
		}

		time.Sleep(logoutRetryWait)
	}

	o.logger.Info("No clickable logout control found")

	return false
}

// awaitRecovery polls reachability until the ceiling elapses.
func (o *Orchestrator) awaitRecovery(ctx context.Context) bool {
	deadline := time.Now().Add(o.config.PortalConfig.RecoveryCeiling)

	for time.Now().Before(deadline) {
		if o.probe.Reachable(ctx) {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(o.config.PortalConfig.RecoveryInterval):
		}
	}

	return false
}

func (o *Orchestrator) finish(logger *zap.Logger, attempt *entity.Attempt, succeeded bool, reason entity.FailureKind, err error) entity.AttemptOutcome {
	now := time.Now()
	attempt.CompletedAt = &now
	attempt.Succeeded = succeeded
	attempt.Reason = reason

	fields := []zap.Field{
		zap.Int("steps", len(attempt.Steps)),
		zap.Duration("elapsed", now.Sub(attempt.StartedAt)),
	}

	if succeeded {
		logger.Info("Login attempt succeeded", fields...)
	} else {
		logger.Warn("Login attempt failed",
			append(fields,
				zap.String(logg.Reason, string(reason)),
				zap.String("code", apperr.Code(err)))...)
	}

	return attempt.Outcome()
}
