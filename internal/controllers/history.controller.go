package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopherwatch/internal/models"
)

// GetDiagnostics returns the poller's counters, per-source health and the
// retained cycle records.
// Query params: duration=30s|5m (default: everything retained)
func (dc *DashboardController) GetDiagnostics(c *gin.Context) {
	diag := dc.Diagnostics.Diagnostics()

	durationStr := c.Query("duration")
	if durationStr == "" {
		c.JSON(http.StatusOK, diag)
		return
	}

	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration format"})
		return
	}

	cutoff := dc.now().Add(-duration)

	cycles := make([]models.CycleRecord, 0, len(diag.Cycles))
	for _, rec := range diag.Cycles {
		if !rec.StartedAt.Before(cutoff) {
			cycles = append(cycles, rec)
		}
	}
	diag.Cycles = cycles

	c.JSON(http.StatusOK, diag)
}

func (dc *DashboardController) now() time.Time {
	if dc.Clock != nil {
		return dc.Clock()
	}

	return time.Now()
}
