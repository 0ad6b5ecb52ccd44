package routes

import (
	"github.com/gin-gonic/gin"

	"gopherwatch/internal/controllers"
	"gopherwatch/internal/logger"
	"gopherwatch/internal/middleware"
	"gopherwatch/web"
)

// NewEngine returns a gin engine with the shared middleware stack.
func NewEngine(log logger.Logger, rateLimit float64) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rateLimit, log)))

	return r
}

// NewDashboardEngine builds the dashboard server with its templates loaded.
func NewDashboardEngine(dc *controllers.DashboardController, corsOrigins []string, log logger.Logger, rateLimit float64) (*gin.Engine, error) {
	r := NewEngine(log, rateLimit)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	RegisterDashboardRoutes(r, dc, corsOrigins)

	return r, nil
}

// NewBackendEngine builds the demo backend server.
func NewBackendEngine(bc *controllers.BackendController, log logger.Logger, rateLimit float64) *gin.Engine {
	r := NewEngine(log, rateLimit)
	RegisterBackendRoutes(r, bc)

	return r
}
