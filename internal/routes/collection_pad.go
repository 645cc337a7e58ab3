package routes

import (
	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers"
)

// SetupCollectionPadRoutes sets up all routes related to collection pad
// management
func SetupCollectionPadRoutes(r *gin.Engine, h *handlers.Handler, buyLimiter gin.HandlerFunc) {
	pad := r.Group("/collection-pad")
	{
		pad.GET("", h.ListCollectionPads)
		pad.POST("", h.CreateCollectionPad)
		pad.GET("/:pad_name/:mint", h.GetCollectionPad)
		pad.PUT("/:pad_name/:mint", h.UpdateCollectionPad)
		pad.POST("/:pad_name/:mint/round/start", h.StartCollectionRound)
		pad.POST("/:pad_name/:mint/round/end", h.EndCollectionRound)
		pad.POST("/:pad_name/:mint/authority/give", h.GiveUpdateAuthority)
		pad.POST("/:pad_name/:mint/authority/take", h.TakeUpdateAuthority)
		pad.POST("/:pad_name/:mint/treasury", h.TreasuryAndDistribute)
		pad.POST("/:pad_name/:mint/treasury/mint", h.MintTreasuryAsset)
		pad.POST("/:pad_name/:mint/fill/:user/:buy_index", h.FillBoughtAsset)
		pad.POST("/:pad_name/:mint/claim/fill/:user", h.FillClaimedDistribution)

		pad.POST("/:pad_name/:mint/buy", buyLimiter, h.BuyCollectionAsset)
		pad.POST("/:pad_name/:mint/claim", buyLimiter, h.ClaimCollectionDistribution)
	}
}
