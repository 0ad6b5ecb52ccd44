package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailingSources(t *testing.T) {
	assert.Empty(t, Diagnostics{}.FailingSources())

	diag := Diagnostics{
		Status: SourceHealth{Source: "status", TotalFailures: 3},
		Alerts: SourceHealth{Source: "alerts", ConsecutiveFailures: 2, LastError: "timeout"},
	}

	assert.False(t, diag.Status.Failing(), "past failures do not count once recovered")
	assert.True(t, diag.Alerts.Failing())
	assert.Equal(t, []SourceHealth{diag.Alerts}, diag.FailingSources())

	diag.Status.ConsecutiveFailures = 1
	failing := diag.FailingSources()
	assert.Len(t, failing, 2)
	assert.Equal(t, "status", failing[0].Source)
}
