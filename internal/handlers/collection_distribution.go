package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers/business"
)

// TreasuryAndDistribute splits the unsold collection slots and opens claiming
func (h *Handler) TreasuryAndDistribute(c *gin.Context) {
	var request PrivilegedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.TreasuryAndDistribute(&business.TreasuryAndDistributeParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		Caller:         request.Caller,
		Signature:      request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pad)
}

// MintTreasuryAsset mints one earmarked unit to the treasury
func (h *Handler) MintTreasuryAsset(c *gin.Context) {
	var request PrivilegedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.Engine.MintTreasuryAsset(&business.MintTreasuryAssetParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		Caller:         request.Caller,
		Signature:      request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// ClaimCollectionDistribution reserves a buyer's share of the unsold slots
func (h *Handler) ClaimCollectionDistribution(c *gin.Context) {
	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.Engine.ClaimCollectionAssetDistribution(&business.ClaimCollectionAssetDistributionParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		User:           request.User,
		Signature:      request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// FillClaimedDistribution mints one reserved distribution unit to a claimant
func (h *Handler) FillClaimedDistribution(c *gin.Context) {
	asset, err := h.Engine.FillClaimedCollectionAssetDistribution(&business.FillClaimedCollectionAssetDistributionParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		User:           c.Param("user"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}
