package routes

import (
	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers"
)

// SetupConfigRoutes sets up all routes related to program config management
func SetupConfigRoutes(r *gin.Engine, h *handlers.Handler) {
	config := r.Group("/config")
	{
		config.GET("", h.GetConfig)
		config.POST("", h.CreateConfig)
		config.PUT("", h.UpdateConfig)
	}
}
