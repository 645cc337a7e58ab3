package business

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
	"padcontrol/pkg/utils"
)

// InitializeConfigParams creates the program config singleton.
type InitializeConfigParams struct {
	SigningAuthority        string
	BackAuthority           string
	IsBackAuthorityRequired bool
	IsFeeRequired           bool
	FeeBasePoint            uint16
	FeeReceiver             string
	RoundLimit              uint16
	DistributionBasePoint   uint16
	LockBasePoint           uint16
	LockDuration            int64
	MintingFee              uint64
	Treasury                string
}

func validateConfigParams(feeBasePoint, roundLimit, distributionBasePoint, lockBasePoint uint16, lockDuration int64) error {
	if feeBasePoint == 0 || roundLimit == 0 || lockBasePoint == 0 || lockDuration <= 0 {
		return fmt.Errorf("zero config value: %w", ErrInvalidParams)
	}
	if uint64(feeBasePoint) >= utils.BasePoint {
		return fmt.Errorf("fee base point %d: %w", feeBasePoint, ErrInvalidParams)
	}
	if uint64(distributionBasePoint)+uint64(lockBasePoint) > utils.BasePoint {
		return fmt.Errorf("distribution and lock base points exceed %d: %w", utils.BasePoint, ErrInvalidParams)
	}
	return nil
}

// InitializeConfig creates the one program config row. It can only run once.
func (e *Engine) InitializeConfig(params *InitializeConfigParams) (*models.ProgramConfig, error) {
	if err := validateConfigParams(params.FeeBasePoint, params.RoundLimit, params.DistributionBasePoint, params.LockBasePoint, params.LockDuration); err != nil {
		return nil, err
	}

	config := models.ProgramConfig{
		SigningAuthority:        params.SigningAuthority,
		BackAuthority:           params.BackAuthority,
		IsBackAuthorityRequired: params.IsBackAuthorityRequired,
		ProgramStatus:           models.ProgramStatusNormal,
		IsFeeRequired:           params.IsFeeRequired,
		FeeBasePoint:            params.FeeBasePoint,
		FeeReceiver:             params.FeeReceiver,
		RoundLimit:              params.RoundLimit,
		DistributionBasePoint:   params.DistributionBasePoint,
		LockBasePoint:           params.LockBasePoint,
		LockDuration:            params.LockDuration,
		MintingFee:              params.MintingFee,
		Treasury:                params.Treasury,
	}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProgramConfig{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("program config already initialized: %w", ErrInvalidLifecycleState)
		}
		return tx.Create(&config).Error
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.ConfigInitialized, e.now(), map[string]interface{}{
		"signing_authority": config.SigningAuthority,
		"round_limit":       config.RoundLimit,
	})
	return &config, nil
}

// UpdateConfigParams mutates the singleton; only the signing authority may call.
type UpdateConfigParams struct {
	Caller                  string
	BackAuthority           string
	IsBackAuthorityRequired bool
	ProgramStatus           string
	IsFeeRequired           bool
	FeeBasePoint            uint16
	FeeReceiver             string
	RoundLimit              uint16
	DistributionBasePoint   uint16
	LockBasePoint           uint16
	LockDuration            int64
	MintingFee              uint64
	Treasury                string
}

func (e *Engine) UpdateConfig(params *UpdateConfigParams) (*models.ProgramConfig, error) {
	if err := validateConfigParams(params.FeeBasePoint, params.RoundLimit, params.DistributionBasePoint, params.LockBasePoint, params.LockDuration); err != nil {
		return nil, err
	}
	if params.ProgramStatus != models.ProgramStatusNormal && params.ProgramStatus != models.ProgramStatusHalted {
		return nil, fmt.Errorf("program status %q: %w", params.ProgramStatus, ErrInvalidParams)
	}

	var config *models.ProgramConfig
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		config, err = loadConfig(tx)
		if err != nil {
			return err
		}
		if params.Caller != config.SigningAuthority {
			return fmt.Errorf("caller is not the signing authority: %w", ErrUnauthorized)
		}

		config.BackAuthority = params.BackAuthority
		config.IsBackAuthorityRequired = params.IsBackAuthorityRequired
		config.ProgramStatus = params.ProgramStatus
		config.IsFeeRequired = params.IsFeeRequired
		config.FeeBasePoint = params.FeeBasePoint
		config.FeeReceiver = params.FeeReceiver
		config.RoundLimit = params.RoundLimit
		config.DistributionBasePoint = params.DistributionBasePoint
		config.LockBasePoint = params.LockBasePoint
		config.LockDuration = params.LockDuration
		config.MintingFee = params.MintingFee
		config.Treasury = params.Treasury
		return tx.Save(config).Error
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.ConfigUpdated, e.now(), map[string]interface{}{
		"program_status": config.ProgramStatus,
		"round_limit":    config.RoundLimit,
	})
	return config, nil
}

// InitializePadParams creates a fungible pad and opens round 1.
type InitializePadParams struct {
	PadName         string
	Creator         string
	Mint            string
	PaymentMint     string
	PaymentReceiver string
	P0              uint64
	PTMax           uint64
	TMax            uint16
	Omega           uint64
	Alpha           uint64
	TimeShiftMax    uint64
	RoundDuration   int64
	Supply          uint64
	DecayModel      string
	HaveBuyLimit    bool
	BuyLimit        uint64
}

func validatePricingParams(p0, ptmax uint64, tmax uint16, omega, alpha, timeShiftMax uint64, roundDuration int64, supply uint64, decayModel string, roundLimit uint16) error {
	if p0 == 0 || ptmax == 0 || omega == 0 || alpha == 0 || timeShiftMax == 0 || roundDuration <= 0 || supply == 0 {
		return fmt.Errorf("zero pricing value: %w", ErrInvalidParams)
	}
	// tmax == 1 would divide by zero in both decay branches.
	if tmax <= 1 {
		return fmt.Errorf("tmax must exceed 1: %w", ErrInvalidParams)
	}
	if tmax > roundLimit {
		return fmt.Errorf("tmax %d exceeds round limit %d: %w", tmax, roundLimit, ErrInvalidParams)
	}
	if p0 < ptmax {
		return fmt.Errorf("p0 below ptmax: %w", ErrInvalidParams)
	}
	if decayModel != utils.DecayModelLinear && decayModel != utils.DecayModelExponential {
		return fmt.Errorf("decay model %q: %w", decayModel, ErrInvalidParams)
	}
	return nil
}

// InitializePad creates the auction and its first round, and moves the sale
// supply from the creator into the pad vault.
func (e *Engine) InitializePad(params *InitializePadParams) (*models.Auction, error) {
	timestamp := e.now()

	var auction *models.Auction
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		if err := validatePricingParams(params.P0, params.PTMax, params.TMax, params.Omega, params.Alpha, params.TimeShiftMax, params.RoundDuration, params.Supply, params.DecayModel, config.RoundLimit); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Auction{}).
			Where("pad_name = ? AND mint = ?", params.PadName, params.Mint).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("pad %s already exists for mint %s: %w", params.PadName, params.Mint, ErrInvalidLifecycleState)
		}

		auction = &models.Auction{
			PadName:               params.PadName,
			Creator:               params.Creator,
			Mint:                  params.Mint,
			PaymentMint:           params.PaymentMint,
			PaymentReceiver:       params.PaymentReceiver,
			Status:                models.AuctionStatusStarted,
			P0:                    params.P0,
			PTMax:                 params.PTMax,
			TMax:                  params.TMax,
			Omega:                 params.Omega,
			Alpha:                 params.Alpha,
			TimeShiftMax:          params.TimeShiftMax,
			DecayModel:            params.DecayModel,
			CurrentPrice:          params.P0,
			CurrentRound:          1,
			TotalSupply:           params.Supply,
			ExpectedSalesPerRound: params.Supply / uint64(params.TMax),
			HaveBuyLimit:          params.HaveBuyLimit,
			BuyLimit:              params.BuyLimit,
		}
		if err := tx.Create(auction).Error; err != nil {
			return err
		}

		round := models.AuctionRound{
			AuctionID:    auction.ID,
			Round:        1,
			Status:       models.RoundStatusStarted,
			RoundStartAt: timestamp,
			RoundEndAt:   timestamp + params.RoundDuration,
			Price:        params.P0,
			HaveBuyLimit: params.HaveBuyLimit,
			BuyLimit:     params.BuyLimit,
		}
		if err := tx.Create(&round).Error; err != nil {
			return err
		}

		vault := e.Custody.VaultAddress(params.PadName, params.Mint)
		return e.Custody.TransferSaleAsset(params.Creator, vault, params.Mint, params.Supply)
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.PadInitialized, timestamp, map[string]interface{}{
		"pad_name": auction.PadName,
		"mint":     auction.Mint,
		"p0":       auction.P0,
		"supply":   auction.TotalSupply,
	})
	return auction, nil
}

// UpdatePadParams changes the payment receiver; only the creator may call.
type UpdatePadParams struct {
	PadName         string
	Mint            string
	Caller          string
	PaymentReceiver string
	Signature       string
}

func (e *Engine) UpdatePad(params *UpdatePadParams) (*models.Auction, error) {
	timestamp := e.now()

	var auction *models.Auction
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		message := []byte(fmt.Sprintf("update_pad:%s:%s:%s", params.PadName, params.Mint, params.PaymentReceiver))
		if err := e.checkBackAuthority(config, message, params.Signature); err != nil {
			return err
		}

		auction, err = findAuction(tx, params.PadName, params.Mint)
		if err != nil {
			return err
		}
		if params.Caller != auction.Creator {
			return fmt.Errorf("caller is not the pad creator: %w", ErrUnauthorized)
		}

		auction.PaymentReceiver = params.PaymentReceiver
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.PadUpdated, timestamp, map[string]interface{}{
		"pad_name":         auction.PadName,
		"mint":             auction.Mint,
		"payment_receiver": auction.PaymentReceiver,
	})
	return auction, nil
}

// Lookups lock the row for the rest of the transaction. Concurrent buys
// against the same pad serialize on the auction row, so supply and counter
// checks read committed, current values. Sqlite drops the clause and
// serializes writers itself.
func findAuction(tx *gorm.DB, padName, mint string) (*models.Auction, error) {
	var auction models.Auction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pad_name = ? AND mint = ?", padName, mint).First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pad %s for mint %s: %w", padName, mint, ErrNotFound)
		}
		return nil, err
	}
	return &auction, nil
}

func findRound(tx *gorm.DB, auctionID uint, round uint16) (*models.AuctionRound, error) {
	var auctionRound models.AuctionRound
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("auction_id = ? AND round = ?", auctionID, round).First(&auctionRound).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("round %d: %w", round, ErrNotFound)
		}
		return nil, err
	}
	return &auctionRound, nil
}
