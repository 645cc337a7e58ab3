package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers/business"
	"padcontrol/internal/models"
)

// BuyRequest is one purchase submission against a fungible pad.
type BuyRequest struct {
	User      string `json:"user" binding:"required"`
	Amount    uint64 `json:"amount" binding:"required"`
	BuyIndex  uint64 `json:"buy_index" binding:"required"`
	Round     uint16 `json:"round" binding:"required"`
	Signature string `json:"signature"`
}

// Buy executes a purchase against the pad's current round
func (h *Handler) Buy(c *gin.Context) {
	var request BuyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.Engine.Buy(&business.BuyParams{
		PadName:   c.Param("pad_name"),
		Mint:      c.Param("mint"),
		User:      request.User,
		Amount:    request.Amount,
		BuyIndex:  request.BuyIndex,
		Round:     request.Round,
		Signature: request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// ListUserReceipts returns a user's buy receipts on a pad, oldest first
func (h *Handler) ListUserReceipts(c *gin.Context) {
	var pad models.Auction
	err := h.Engine.DB.Where("pad_name = ? AND mint = ?", c.Param("pad_name"), c.Param("mint")).First(&pad).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	var receipts []models.UserAuctionBuyReceipt
	if err := h.Engine.DB.
		Where("auction_id = ? AND user_address = ?", pad.ID, c.Param("user")).
		Order("buy_index").Find(&receipts).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipts)
}
