package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"padcontrol/internal/handlers/business"
	"padcontrol/internal/models"
)

// CollectionPadRequest is the create body for a collection pad.
type CollectionPadRequest struct {
	PadName                   string                `json:"pad_name" binding:"required"`
	Creator                   string                `json:"creator" binding:"required"`
	CollectionMint            string                `json:"collection_mint" binding:"required"`
	CollectionUpdateAuthority string                `json:"collection_update_authority" binding:"required"`
	PaymentMint               string                `json:"payment_mint" binding:"required"`
	PaymentReceiver           string                `json:"payment_receiver" binding:"required"`
	P0                        uint64                `json:"p0" binding:"required"`
	PTMax                     uint64                `json:"ptmax" binding:"required"`
	TMax                      uint16                `json:"tmax" binding:"required"`
	Omega                     uint64                `json:"omega" binding:"required"`
	Alpha                     uint64                `json:"alpha" binding:"required"`
	TimeShiftMax              uint64                `json:"time_shift_max" binding:"required"`
	RoundDuration             int64                 `json:"round_duration" binding:"required"`
	StartingIndex             uint64                `json:"starting_index"`
	EndingIndex               uint64                `json:"ending_index" binding:"required"`
	DecayModel                string                `json:"decay_model" binding:"required"`
	HaveBuyLimit              bool                  `json:"have_buy_limit"`
	BuyLimit                  uint64                `json:"buy_limit"`
	SellerFeeBasisPoints      uint16                `json:"seller_fee_basis_points"`
	AssetCreators             []models.AssetCreator `json:"asset_creators" binding:"required"`
	AssetName                 string                `json:"asset_name" binding:"required"`
	AssetSymbol               string                `json:"asset_symbol" binding:"required"`
	AssetURL                  string                `json:"asset_url" binding:"required"`
	AssetURLSuffix            string                `json:"asset_url_suffix"`
}

// ListCollectionPads returns all collection pads
func (h *Handler) ListCollectionPads(c *gin.Context) {
	var pads []models.CollectionAuction
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

// GetCollectionPad returns one collection pad by pad name and collection mint
func (h *Handler) GetCollectionPad(c *gin.Context) {
	var pad models.CollectionAuction
	err := h.Engine.DB.Where("pad_name = ? AND collection_mint = ?", c.Param("pad_name"), c.Param("mint")).First(&pad).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, pad)
}

// CreateCollectionPad initializes a new collection pad and its first round
func (h *Handler) CreateCollectionPad(c *gin.Context) {
	var request CollectionPadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.InitializeCollectionPad(&business.InitializeCollectionPadParams{
		PadName:                   request.PadName,
		Creator:                   request.Creator,
		CollectionMint:            request.CollectionMint,
		CollectionUpdateAuthority: request.CollectionUpdateAuthority,
		PaymentMint:               request.PaymentMint,
		PaymentReceiver:           request.PaymentReceiver,
		P0:                        request.P0,
		PTMax:                     request.PTMax,
		TMax:                      request.TMax,
		Omega:                     request.Omega,
		Alpha:                     request.Alpha,
		TimeShiftMax:              request.TimeShiftMax,
		RoundDuration:             request.RoundDuration,
		StartingIndex:             request.StartingIndex,
		EndingIndex:               request.EndingIndex,
		DecayModel:                request.DecayModel,
		HaveBuyLimit:              request.HaveBuyLimit,
		BuyLimit:                  request.BuyLimit,
		SellerFeeBasisPoints:      request.SellerFeeBasisPoints,
		AssetCreators:             request.AssetCreators,
		AssetName:                 request.AssetName,
		AssetSymbol:               request.AssetSymbol,
		AssetURL:                  request.AssetURL,
		AssetURLSuffix:            request.AssetURLSuffix,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pad)
}

// UpdateCollectionPad changes a collection pad's payment receiver
func (h *Handler) UpdateCollectionPad(c *gin.Context) {
	var request UpdatePadRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pad, err := h.Engine.UpdateCollectionPad(&business.UpdateCollectionPadParams{
		PadName:         c.Param("pad_name"),
		CollectionMint:  c.Param("mint"),
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

// StartCollectionRound opens the next round of a collection pad
func (h *Handler) StartCollectionRound(c *gin.Context) {
	var request RoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.Engine.StartNextCollectionRound(&business.StartNextCollectionRoundParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		Round:          request.Round,
		RoundDuration:  request.RoundDuration,
		Caller:         request.Caller,
		Signature:      request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// EndCollectionRound closes the current round of a collection pad
func (h *Handler) EndCollectionRound(c *gin.Context) {
	var request RoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.Engine.EndCollectionRound(&business.EndCollectionRoundParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		Round:          request.Round,
		Caller:         request.Caller,
		Signature:      request.Signature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// GiveUpdateAuthority hands the collection update authority to the custodian
func (h *Handler) GiveUpdateAuthority(c *gin.Context) {
	h.setUpdateAuthority(c, true)
}

// TakeUpdateAuthority returns the collection update authority to its owner
func (h *Handler) TakeUpdateAuthority(c *gin.Context) {
	h.setUpdateAuthority(c, false)
}

func (h *Handler) setUpdateAuthority(c *gin.Context, give bool) {
	var request PrivilegedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := &business.CollectionUpdateAuthorityParams{
		PadName:        c.Param("pad_name"),
		CollectionMint: c.Param("mint"),
		Caller:         request.Caller,
		Signature:      request.Signature,
	}
	var pad *models.CollectionAuction
	var err error
	if give {
		pad, err = h.Engine.GiveCollectionUpdateAuthority(params)
	} else {
		pad, err = h.Engine.TakeCollectionUpdateAuthority(params)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pad)
}
