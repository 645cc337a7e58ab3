package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers/business"
	"padcontrol/internal/models"
)

// PadRequest is the create body for a fungible pad.
type PadRequest struct {
	PadName         string `json:"pad_name" binding:"required"`
	Creator         string `json:"creator" binding:"required"`
	Mint            string `json:"mint" binding:"required"`
	PaymentMint     string `json:"payment_mint" binding:"required"`
	PaymentReceiver string `json:"payment_receiver" binding:"required"`
	P0              uint64 `json:"p0" binding:"required"`
	PTMax           uint64 `json:"ptmax" binding:"required"`
	TMax            uint16 `json:"tmax" binding:"required"`
	Omega           uint64 `json:"omega" binding:"required"`
	Alpha           uint64 `json:"alpha" binding:"required"`
	TimeShiftMax    uint64 `json:"time_shift_max" binding:"required"`
	RoundDuration   int64  `json:"round_duration" binding:"required"`
	Supply          uint64 `json:"supply" binding:"required"`
	DecayModel      string `json:"decay_model" binding:"required"`
	HaveBuyLimit    bool   `json:"have_buy_limit"`
	BuyLimit        uint64 `json:"buy_limit"`
}

// ListPads returns all fungible pads
func (h *Handler) ListPads(c *gin.Context) {
	var pads []models.Auction
	query := h.Engine.DB
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&pads).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pads)
}

// GetPad returns one pad by pad name and mint
func (h *Handler) GetPad(c *gin.Context) {
	var pad models.Auction
	err := h.Engine.DB.Where("pad_name = ? AND mint = ?", c.Param("pad_name"), c.Param("mint")).First(&pad).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, pad)
}

// ListPadRounds returns every round of a pad
func (h *Handler) ListPadRounds(c *gin.Context) {
	var pad models.Auction
	err := h.Engine.DB.Where("pad_name = ? AND mint = ?", c.Param("pad_name"), c.Param("mint")).First(&pad).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	var rounds []models.AuctionRound
	if err := h.Engine.DB.Where("auction_id = ?", pad.ID).Order("round").Find(&rounds).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

// CreatePad initializes a new pad and its first round
func (h *Handler) CreatePad(c *gin.Context) {
	var request PadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.InitializePad(&business.InitializePadParams{
		PadName:         request.PadName,
		Creator:         request.Creator,
		Mint:            request.Mint,
		PaymentMint:     request.PaymentMint,
		PaymentReceiver: request.PaymentReceiver,
		P0:              request.P0,
		PTMax:           request.PTMax,
		TMax:            request.TMax,
		Omega:           request.Omega,
		Alpha:           request.Alpha,
		TimeShiftMax:    request.TimeShiftMax,
		RoundDuration:   request.RoundDuration,
		Supply:          request.Supply,
		DecayModel:      request.DecayModel,
		HaveBuyLimit:    request.HaveBuyLimit,
		BuyLimit:        request.BuyLimit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pad)
}

// UpdatePadRequest changes the payment receiver.
type UpdatePadRequest struct {
	Caller          string `json:"caller" binding:"required"`
	PaymentReceiver string `json:"payment_receiver" binding:"required"`
	Signature       string `json:"signature"`
}

// UpdatePad changes a pad's payment receiver
func (h *Handler) UpdatePad(c *gin.Context) {
	var request UpdatePadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.UpdatePad(&business.UpdatePadParams{
		PadName:         c.Param("pad_name"),
		Mint:            c.Param("mint"),
		Caller:          request.Caller,
		PaymentReceiver: request.PaymentReceiver,
		Signature:       request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pad)
}

// RoundRequest drives the round lifecycle.
type RoundRequest struct {
	Round         uint16 `json:"round" binding:"required"`
	RoundDuration int64  `json:"round_duration"`
	Caller        string `json:"caller" binding:"required"`
	Signature     string `json:"signature"`
}

// StartRound opens the next round of a pad
func (h *Handler) StartRound(c *gin.Context) {
	var request RoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.Engine.StartNextRound(&business.StartNextRoundParams{
		PadName:       c.Param("pad_name"),
		Mint:          c.Param("mint"),
		Round:         request.Round,
		RoundDuration: request.RoundDuration,
		Caller:        request.Caller,
		Signature:     request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// EndRound closes the current round of a pad
func (h *Handler) EndRound(c *gin.Context) {
	var request RoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.Engine.EndRound(&business.EndRoundParams{
		PadName:   c.Param("pad_name"),
		Mint:      c.Param("mint"),
		Round:     request.Round,
		Caller:    request.Caller,
		Signature: request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}
