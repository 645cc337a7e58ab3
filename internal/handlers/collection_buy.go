package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers/business"
)

// BuyCollectionAsset reserves collection slots against the current round
func (h *Handler) BuyCollectionAsset(c *gin.Context) {
	var request BuyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.Engine.BuyCollectionAsset(&business.BuyCollectionAssetParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		User:           request.User,
		Amount:         request.Amount,
		BuyIndex:       request.BuyIndex,
		Round:          request.Round,
		Signature:      request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// FillBoughtAsset mints one unit of a buy receipt
func (h *Handler) FillBoughtAsset(c *gin.Context) {
	buyIndex, err := strconv.ParseUint(c.Param("buy_index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid buy index format"})
		return
	}

	asset, err := h.Engine.FillBoughtCollectionAsset(&business.FillBoughtCollectionAssetParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		User:           c.Param("user"),
		BuyIndex:       buyIndex,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}
