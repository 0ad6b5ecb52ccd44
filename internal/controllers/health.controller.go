package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHealth reports liveness along with the dashboard process's own resource
// usage. Backend failures do not make the dashboard unhealthy.
func (dc *DashboardController) GetHealth(c *gin.Context) {
	diag := dc.Diagnostics.Diagnostics()

	body := gin.H{
		"status":     "ok",
		"generation": diag.Generation,
		"sources": gin.H{
			"status": !diag.Status.Failing(),
			"alerts": !diag.Alerts.Failing(),
		},
	}

	if dc.Self != nil {
		process, lastUpdated, err := dc.Self.Cached()
		if err == nil {
			body["process"] = process
			body["last_updated"] = lastUpdated
		}
	}

	c.JSON(http.StatusOK, body)
}
