package entity

import (
	"time"

	"github.com/google/uuid"
)

// Locator describes where to look in the portal's page tree. Primary
// is a best-guess XPath anchor; Fallbacks are alternate anchor paths
// tried when the primary yields nothing input-capable. RevealPaths
// are ancestor containers hovered to un-hide the target, outermost
// last.
type Locator struct {
	Name        string
	Primary     string
	Fallbacks   []string
	RevealPaths []string
}

// PortalState classifies the live portal page. It is recomputed on
// every orchestration run and never cached across polls.
type PortalState string

const (
	StateLoginForm     PortalState = "login_form"
	StateLoggedIn      PortalState = "logged_in"
	StateIndeterminate PortalState = "indeterminate"
)

// ConnectivityStatus is the result of a reachability probe.
type ConnectivityStatus string

const (
	StatusOnline  ConnectivityStatus = "online"
	StatusOffline ConnectivityStatus = "offline"
)

// StatusOf maps a probe result onto its status label.
func StatusOf(reachable bool) ConnectivityStatus {
	if reachable {
		return StatusOnline
	}

	return StatusOffline
}

// FailureKind is the reason an attempt did not end in Recovered.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureProbeNegative FailureKind = "probe_negative"
	FailureFieldFill     FailureKind = "field_fill_failed"
	FailureSubmit        FailureKind = "submit_failed"
	FailureSessionInit   FailureKind = "session_init_failed"
	FailureConfigMissing FailureKind = "config_missing"
	FailureUnrecovered   FailureKind = "unrecovered_connectivity"
)

// Credential is read once per attempt from configuration. Its values
// must never appear in logs or attempt journals.
type Credential struct {
	Username string
	Password string
}

// Attempt is the journal of a single orchestration run.
type Attempt struct {
	ID          uuid.UUID
	StartedAt   time.Time
	CompletedAt *time.Time
	Steps       []AttemptStep
	Succeeded   bool
	Reason      FailureKind
}

type AttemptStep struct {
	ID        uuid.UUID
	Name      string
	Timestamp time.Time
	Success   bool
	Detail    string
}

// AttemptOutcome is what the monitor loop sees.
type AttemptOutcome struct {
	Succeeded bool
	Reason    FailureKind
}

func (a *Attempt) AddStep(name string, success bool, detail string) {
	a.Steps = append(a.Steps, AttemptStep{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now(),
		Success:   success,
		Detail:    detail,
	})
}

func (a *Attempt) Outcome() AttemptOutcome {
	return AttemptOutcome{
		Succeeded: a.Succeeded,
		Reason:    a.Reason,
	}
}
