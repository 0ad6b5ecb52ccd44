package routes

import (
	"github.com/gin-gonic/gin"

	"gopherwatch/internal/controllers"
	"gopherwatch/internal/services"
)

// RegisterBackendRoutes mounts the demo backend at the paths the dashboard
// polls.
func RegisterBackendRoutes(r *gin.Engine, bc *controllers.BackendController) {
	r.GET(services.StatusPath, bc.GetStatus)
	r.GET(services.AlertsPath, bc.GetAlertHistory)
}
