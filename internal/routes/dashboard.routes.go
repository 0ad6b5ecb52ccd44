package routes

import (
	"github.com/gin-gonic/gin"

	"gopherwatch/internal/controllers"
	"gopherwatch/internal/middleware"
)

// RegisterDashboardRoutes mounts the HTML page and the JSON views of the
// state cells. An empty corsOrigins leaves CORS off.
func RegisterDashboardRoutes(r *gin.Engine, dc *controllers.DashboardController, corsOrigins []string) {
	if len(corsOrigins) > 0 {
		r.Use(middleware.CORSMiddleware(corsOrigins))
	}

	r.GET("/", dc.GetPage)
	r.GET("/healthz", dc.GetHealth)

	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("", dc.GetDashboard)
		dashboard.GET("/raw", dc.GetRaw)
	}

	api := r.Group("/api")
	{
		api.GET("/diagnostics", dc.GetDiagnostics)
	}
}
