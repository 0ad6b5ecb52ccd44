package models

import "time"

// SourceOutcome describes what one fetch did to its state cell during a cycle.
type SourceOutcome string

const (
	OutcomePending        SourceOutcome = "pending"
	OutcomeOK             SourceOutcome = "ok"
	OutcomeEmpty          SourceOutcome = "empty"
	OutcomeTransportError SourceOutcome = "transport_error"
	OutcomeHTTPError      SourceOutcome = "http_error"
	OutcomeDecodeError    SourceOutcome = "decode_error"
	OutcomeStale          SourceOutcome = "stale"
	OutcomeDiscarded      SourceOutcome = "discarded"
)

// CycleRecord is one fetch cycle as seen by the poller
type CycleRecord struct {
	Generation uint64        `json:"generation"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Status     SourceOutcome `json:"status"`
	Alerts     SourceOutcome `json:"alerts"`
}

// SourceHealth tracks the recent reliability of one source
type SourceHealth struct {
	Source              string    `json:"source"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalFailures       uint64    `json:"total_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastSuccess         time.Time `json:"last_success,omitempty"`
}

// Failing reports whether the most recent fetch from the source failed.
func (h SourceHealth) Failing() bool {
	return h.ConsecutiveFailures > 0
}

// Diagnostics is the operator-facing view of the polling loop
type Diagnostics struct {
	Generation   uint64        `json:"generation"`
	TotalCycles  uint64        `json:"total_cycles"`
	SkippedTicks uint64        `json:"skipped_ticks"`
	Status       SourceHealth  `json:"status_source"`
	Alerts       SourceHealth  `json:"alert_source"`
	Cycles       []CycleRecord `json:"cycles"`
}

// FailingSources returns the sources whose last fetch failed, status first.
func (d Diagnostics) FailingSources() []SourceHealth {
	var failing []SourceHealth

	for _, health := range []SourceHealth{d.Status, d.Alerts} {
		if health.Failing() {
			failing = append(failing, health)
		}
	}

	return failing
}
