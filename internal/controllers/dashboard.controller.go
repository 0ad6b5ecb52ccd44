package controllers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopherwatch/internal/models"
	"gopherwatch/internal/services"
	"gopherwatch/internal/view"
)

// DiagnosticsProvider exposes the poller's cycle history.
type DiagnosticsProvider interface {
	Diagnostics() models.Diagnostics
}

// DashboardController serves the rendered state cells. It only reads
// snapshots; the poller is the sole writer.
type DashboardController struct {
	State       services.DashboardState
	Diagnostics DiagnosticsProvider
	Self        *services.SelfCollector
	Location    *time.Location
	Refresh     time.Duration
	Clock       func() time.Time
}

func (dc *DashboardController) render() models.DisplayTree {
	return view.Render(dc.State.StatusSnapshot().Agents, dc.State.AlertSnapshot().Alerts, dc.Location)
}

// GetPage renders the HTML dashboard. The page reloads itself at the
// refresh interval.
func (dc *DashboardController) GetPage(c *gin.Context) {
	diag := dc.Diagnostics.Diagnostics()

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Tree":           dc.render(),
		"RefreshSeconds": refreshSeconds(dc.Refresh),
		"Unhealthy":      diag.FailingSources(),
		"Generation":     diag.Generation,
	})
}

func (dc *DashboardController) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, dc.render())
}

// GetRaw returns both cells as stored, with their generations.
func (dc *DashboardController) GetRaw(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": dc.State.StatusSnapshot(),
		"alerts": dc.State.AlertSnapshot(),
	})
}

// refreshSeconds rounds up so that sub-second intervals still refresh.
func refreshSeconds(d time.Duration) int {
	if d <= 0 {
		d = services.DefaultRefreshInterval
	}

	return int(math.Ceil(d.Seconds()))
}
