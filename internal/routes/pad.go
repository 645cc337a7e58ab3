package routes

import (
	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers"
	"padcontrol/internal/middleware"
)

// SetupPadRoutes sets up all routes related to fungible pad management
func SetupPadRoutes(r *gin.Engine, h *handlers.Handler, buyLimiter gin.HandlerFunc) {
	pad := r.Group("/pad")
	{
		pad.GET("", h.ListPads)
		pad.POST("", h.CreatePad)
		pad.GET("/:pad_name/:mint", h.GetPad)
		pad.PUT("/:pad_name/:mint", h.UpdatePad)
		pad.GET("/:pad_name/:mint/rounds", h.ListPadRounds)
		pad.POST("/:pad_name/:mint/round/start", h.StartRound)
		pad.POST("/:pad_name/:mint/round/end", h.EndRound)
		pad.POST("/:pad_name/:mint/lock", h.LockAndDistribute)
		pad.POST("/:pad_name/:mint/unlock", h.UnlockUnsoldSupply)
		pad.GET("/:pad_name/:mint/receipts/:user", h.ListUserReceipts)

		pad.POST("/:pad_name/:mint/buy", buyLimiter, h.Buy)
		pad.POST("/:pad_name/:mint/claim", buyLimiter, h.ClaimDistribution)
	}
}

// NewBuyLimiter builds the rate limiter shared by buy and claim endpoints.
func NewBuyLimiter() gin.HandlerFunc {
	return middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	})
}
