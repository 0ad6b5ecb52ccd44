package services

import (
	"sync"
	"time"

	"gopherwatch/internal/models"
)

const defaultMaxCycles = 60

// CycleHistory keeps the most recent fetch cycles and per-source health
// for the diagnostics endpoint.
type CycleHistory struct {
	mu           sync.RWMutex
	cycles       []models.CycleRecord
	maxCycles    int
	totalCycles  uint64
	skippedTicks uint64
	generation   uint64
	status       models.SourceHealth
	alerts       models.SourceHealth
}

func NewCycleHistory(maxCycles int) *CycleHistory {
	if maxCycles <= 0 {
		maxCycles = defaultMaxCycles
	}

	return &CycleHistory{
		cycles:    []models.CycleRecord{},
		maxCycles: maxCycles,
		status:    models.SourceHealth{Source: sourceStatus},
		alerts:    models.SourceHealth{Source: sourceAlerts},
	}
}

func (h *CycleHistory) recordCycle(rec models.CycleRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cycles = append(h.cycles, rec)
	if len(h.cycles) > h.maxCycles {
		h.cycles = h.cycles[1:]
	}

	h.totalCycles++
	if rec.Generation > h.generation {
		h.generation = rec.Generation
	}
}

func (h *CycleHistory) recordSkip() {
	h.mu.Lock()
	h.skippedTicks++
	h.mu.Unlock()
}

// recordFetch updates source health and reports how many failures in a row
// preceded a success (zero when err is non-nil or there were none).
func (h *CycleHistory) recordFetch(source string, err error, now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	health := &h.status
	if source == sourceAlerts {
		health = &h.alerts
	}

	if err != nil {
		health.ConsecutiveFailures++
		health.TotalFailures++
		health.LastError = err.Error()

		return 0
	}

	recovered := health.ConsecutiveFailures
	health.ConsecutiveFailures = 0
	health.LastSuccess = now

	return recovered
}

// Diagnostics returns a copy of the current history.
func (h *CycleHistory) Diagnostics() models.Diagnostics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cycles := make([]models.CycleRecord, len(h.cycles))
	copy(cycles, h.cycles)

	return models.Diagnostics{
		Generation:   h.generation,
		TotalCycles:  h.totalCycles,
		SkippedTicks: h.skippedTicks,
		Status:       h.status,
		Alerts:       h.alerts,
		Cycles:       cycles,
	}
}
