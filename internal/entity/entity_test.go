package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusOnline, StatusOf(true))
	assert.Equal(t, StatusOffline, StatusOf(false))
}

func TestAttemptJournal(t *testing.T) {
	attempt := &Attempt{ID: uuid.New()}

	attempt.AddStep("navigate", true, "")
	attempt.AddStep("recovery", false, "connectivity did not return within ceiling")
	attempt.Succeeded = false
	attempt.Reason = FailureUnrecovered

	assert.Len(t, attempt.Steps, 2)
	assert.Equal(t, "navigate", attempt.Steps[0].Name)
	assert.False(t, attempt.Steps[1].Success)

	outcome := attempt.Outcome()
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, FailureUnrecovered, outcome.Reason)
}
