package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"padcontrol/internal/handlers/business"
	"padcontrol/internal/models"
)

// ProgramConfigRequest is the create/update body for the program config.
type ProgramConfigRequest struct {
	Caller                  string `json:"caller" binding:"required"`
	SigningAuthority        string `json:"signing_authority"`
	BackAuthority           string `json:"back_authority" binding:"required"`
	IsBackAuthorityRequired bool   `json:"is_back_authority_required"`
	ProgramStatus           string `json:"program_status"`
	IsFeeRequired           bool   `json:"is_fee_required"`
	FeeBasePoint            uint16 `json:"fee_base_point" binding:"required"`
	FeeReceiver             string `json:"fee_receiver" binding:"required"`
	RoundLimit              uint16 `json:"round_limit" binding:"required"`
	DistributionBasePoint   uint16 `json:"distribution_base_point"`
	LockBasePoint           uint16 `json:"lock_base_point" binding:"required"`
	LockDuration            int64  `json:"lock_duration" binding:"required"`
	MintingFee              uint64 `json:"minting_fee"`
	Treasury                string `json:"treasury"`
}

// GetConfig returns the program config singleton
func (h *Handler) GetConfig(c *gin.Context) {
	var config models.ProgramConfig
	if err := h.Engine.DB.First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "config not initialized"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

// CreateConfig initializes the program config
func (h *Handler) CreateConfig(c *gin.Context) {
	var request ProgramConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signingAuthority := request.SigningAuthority
	if signingAuthority == "" {
		signingAuthority = request.Caller
	}

	config, err := h.Engine.InitializeConfig(&business.InitializeConfigParams{
		SigningAuthority:        signingAuthority,
		BackAuthority:           request.BackAuthority,
		IsBackAuthorityRequired: request.IsBackAuthorityRequired,
		IsFeeRequired:           request.IsFeeRequired,
		FeeBasePoint:            request.FeeBasePoint,
		FeeReceiver:             request.FeeReceiver,
		RoundLimit:              request.RoundLimit,
		DistributionBasePoint:   request.DistributionBasePoint,
		LockBasePoint:           request.LockBasePoint,
		LockDuration:            request.LockDuration,
		MintingFee:              request.MintingFee,
		Treasury:                request.Treasury,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, config)
}

// UpdateConfig updates the program config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var request ProgramConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.ProgramStatus == "" {
		request.ProgramStatus = models.ProgramStatusNormal
	}

	config, err := h.Engine.UpdateConfig(&business.UpdateConfigParams{
		Caller:                  request.Caller,
		BackAuthority:           request.BackAuthority,
		IsBackAuthorityRequired: request.IsBackAuthorityRequired,
		ProgramStatus:           request.ProgramStatus,
		IsFeeRequired:           request.IsFeeRequired,
		FeeBasePoint:            request.FeeBasePoint,
		FeeReceiver:             request.FeeReceiver,
		RoundLimit:              request.RoundLimit,
		DistributionBasePoint:   request.DistributionBasePoint,
		LockBasePoint:           request.LockBasePoint,
		LockDuration:            request.LockDuration,
		MintingFee:              request.MintingFee,
		Treasury:                request.Treasury,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}
