package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers/business"
)

// PrivilegedRequest is the body of creator or back-authority lifecycle calls.
type PrivilegedRequest struct {
	Caller    string `json:"caller" binding:"required"`
	Signature string `json:"signature"`
}

// LockAndDistribute locks the unsold supply and opens distribution claiming
func (h *Handler) LockAndDistribute(c *gin.Context) {
	var request PrivilegedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.LockAndDistribute(&business.LockAndDistributeParams{
		PadName:   c.Param("pad_name"),
		Mint:      c.Param("mint"),
		Caller:    request.Caller,
		Signature: request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pad)
}

// ClaimRequest is one distribution claim.
type ClaimRequest struct {
	User      string `json:"user" binding:"required"`
	Signature string `json:"signature"`
}

// ClaimDistribution pays a buyer their share of the unsold distribution pool
func (h *Handler) ClaimDistribution(c *gin.Context) {
	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.Engine.ClaimDistribution(&business.ClaimDistributionParams{
		PadName:   c.Param("pad_name"),
		Mint:      c.Param("mint"),
		User:      request.User,
		Signature: request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// UnlockUnsoldSupply returns the locked supply to the creator after the lock
// duration
func (h *Handler) UnlockUnsoldSupply(c *gin.Context) {
	var request PrivilegedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.UnlockUnsoldSupply(&business.UnlockUnsoldSupplyParams{
		PadName:   c.Param("pad_name"),
		Mint:      c.Param("mint"),
		Caller:    request.Caller,
		Signature: request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pad)
}
