package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherwatch/internal/services"
)

// BackendController serves the demo backend's status and alert history in
// the shape the dashboard polls.
type BackendController struct {
	Backend *services.DemoBackend
}

func (bc *BackendController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, bc.Backend.Status())
}

func (bc *BackendController) GetAlertHistory(c *gin.Context) {
	alerts, err := bc.Backend.AlertHistory(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query alert history"})

		return
	}

	c.JSON(http.StatusOK, alerts)
}
