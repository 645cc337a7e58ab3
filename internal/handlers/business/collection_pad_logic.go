package business

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
	"padcontrol/pkg/utils"
)

// InitializeCollectionPadParams creates a collection pad selling the numbered
// slots [StartingIndex, EndingIndex] and opens round 1.
type InitializeCollectionPadParams struct {
	PadName                   string
	Creator                   string
	CollectionMint            string
	CollectionUpdateAuthority string
	PaymentMint               string
	PaymentReceiver           string
	P0                        uint64
	PTMax                     uint64
	TMax                      uint16
	Omega                     uint64
	Alpha                     uint64
	TimeShiftMax              uint64
	RoundDuration             int64
	StartingIndex             uint64
	EndingIndex               uint64
	DecayModel                string
	HaveBuyLimit              bool
	BuyLimit                  uint64
	SellerFeeBasisPoints      uint16
	AssetCreators             []models.AssetCreator
	AssetName                 string
	AssetSymbol               string
	AssetURL                  string
	AssetURLSuffix            string
}

func validateAssetParams(sellerFeeBasisPoints uint16, creators []models.AssetCreator, name, symbol, url string) error {
	if uint64(sellerFeeBasisPoints) > utils.BasePoint {
		return fmt.Errorf("seller fee basis points %d: %w", sellerFeeBasisPoints, ErrInvalidParams)
	}
	if name == "" || symbol == "" || url == "" {
		return fmt.Errorf("empty asset metadata: %w", ErrInvalidParams)
	}
	if len(creators) == 0 {
		return fmt.Errorf("no asset creators: %w", ErrInvalidParams)
	}
	var shares uint
	for _, c := range creators {
		if c.Address == "" {
			return fmt.Errorf("empty creator address: %w", ErrInvalidParams)
		}
		shares += uint(c.Share)
	}
	if shares != 100 {
		return fmt.Errorf("creator shares sum to %d, want 100: %w", shares, ErrInvalidParams)
	}
	return nil
}

func (e *Engine) InitializeCollectionPad(params *InitializeCollectionPadParams) (*models.CollectionAuction, error) {
	timestamp := e.now()
	if params.EndingIndex < params.StartingIndex {
		return nil, fmt.Errorf("index range [%d, %d]: %w", params.StartingIndex, params.EndingIndex, ErrInvalidParams)
	}
	supply := params.EndingIndex - params.StartingIndex + 1

	var auction *models.CollectionAuction
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		if err := validatePricingParams(params.P0, params.PTMax, params.TMax, params.Omega, params.Alpha, params.TimeShiftMax, params.RoundDuration, supply, params.DecayModel, config.RoundLimit); err != nil {
			return err
		}
		if err := validateAssetParams(params.SellerFeeBasisPoints, params.AssetCreators, params.AssetName, params.AssetSymbol, params.AssetURL); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.CollectionAuction{}).
			Where("pad_name = ? AND collection_mint = ?", params.PadName, params.CollectionMint).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("collection pad %s already exists for %s: %w", params.PadName, params.CollectionMint, ErrInvalidLifecycleState)
		}

		creatorsRaw, err := json.Marshal(params.AssetCreators)
		if err != nil {
			return err
		}

		auction = &models.CollectionAuction{
			PadName:                   params.PadName,
			Creator:                   params.Creator,
			CollectionMint:            params.CollectionMint,
			CollectionUpdateAuthority: params.CollectionUpdateAuthority,
			PaymentMint:               params.PaymentMint,
			PaymentReceiver:           params.PaymentReceiver,
			Status:                    models.AuctionStatusStarted,
			P0:                        params.P0,
			PTMax:                     params.PTMax,
			TMax:                      params.TMax,
			Omega:                     params.Omega,
			Alpha:                     params.Alpha,
			TimeShiftMax:              params.TimeShiftMax,
			DecayModel:                params.DecayModel,
			CurrentPrice:              params.P0,
			CurrentRound:              1,
			TotalSupply:               supply,
			ExpectedSalesPerRound:     supply / uint64(params.TMax),
			StartingIndex:             params.StartingIndex,
			EndingIndex:               params.EndingIndex,
			CurrentIndex:              params.StartingIndex,
			HaveBuyLimit:              params.HaveBuyLimit,
			BuyLimit:                  params.BuyLimit,
			SellerFeeBasisPoints:      params.SellerFeeBasisPoints,
			AssetCreators:             creatorsRaw,
			AssetName:                 params.AssetName,
			AssetSymbol:               params.AssetSymbol,
			AssetURL:                  params.AssetURL,
			AssetURLSuffix:            params.AssetURLSuffix,
		}
		if err := tx.Create(auction).Error; err != nil {
			return err
		}

		round := models.CollectionAuctionRound{
			CollectionAuctionID: auction.ID,
			Round:               1,
			Status:              models.RoundStatusStarted,
			RoundStartAt:        timestamp,
			RoundEndAt:          timestamp + params.RoundDuration,
			Price:               params.P0,
			HaveBuyLimit:        params.HaveBuyLimit,
			BuyLimit:            params.BuyLimit,
		}
		return tx.Create(&round).Error
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.CollectionPadInitialized, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"p0":              auction.P0,
		"supply":          auction.TotalSupply,
	})
	return auction, nil
}

type UpdateCollectionPadParams struct {
	PadName         string
	CollectionMint  string
	Caller          string
	PaymentReceiver string
	Signature       string
}

func (e *Engine) UpdateCollectionPad(params *UpdateCollectionPadParams) (*models.CollectionAuction, error) {
	timestamp := e.now()

	var auction *models.CollectionAuction
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		message := []byte(fmt.Sprintf("update_collection_pad:%s:%s:%s", params.PadName, params.CollectionMint, params.PaymentReceiver))
		if err := e.checkBackAuthority(config, message, params.Signature); err != nil {
			return err
		}

		auction, err = findCollectionAuction(tx, params.PadName, params.CollectionMint)
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

	e.emit(events.CollectionPadUpdated, timestamp, map[string]interface{}{
		"pad_name":         auction.PadName,
		"collection_mint":  auction.CollectionMint,
		"payment_receiver": auction.PaymentReceiver,
	})
	return auction, nil
}

type StartNextCollectionRoundParams struct {
	PadName        string
	CollectionMint string
	Round          uint16
	RoundDuration  int64
	Caller         string
	Signature      string
}

func (e *Engine) StartNextCollectionRound(params *StartNextCollectionRoundParams) (*models.CollectionAuctionRound, error) {
	if params.PadName == "" || params.CollectionMint == "" || params.RoundDuration <= 0 {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.CollectionAuction
	var nextRound *models.CollectionAuctionRound
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		auction, err = findCollectionAuction(tx, params.PadName, params.CollectionMint)
		if err != nil {
			return err
		}
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusStarted {
			return fmt.Errorf("collection auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if params.Round != auction.CurrentRound+1 {
			return fmt.Errorf("round %d, current %d: %w", params.Round, auction.CurrentRound, ErrInvalidParams)
		}
		if params.Round > auction.TMax {
			return fmt.Errorf("round %d exceeds t_max %d: %w", params.Round, auction.TMax, ErrInvalidParams)
		}
		previous, err := findCollectionRound(tx, auction.ID, auction.CurrentRound)
		if err != nil {
			return err
		}
		if previous.Status != models.RoundStatusEnded {
			return fmt.Errorf("round %d still open: %w", previous.Round, ErrInvalidLifecycleState)
		}

		price := utils.CalculatePrice(auction.P0, auction.PTMax, auction.TMax, params.Round,
			auction.Boosts(), auction.DecayModel, auction.TimeShiftMax)

		auction.CurrentRound = params.Round
		auction.CurrentPrice = price
		if err := tx.Save(auction).Error; err != nil {
			return err
		}

		nextRound = &models.CollectionAuctionRound{
			CollectionAuctionID: auction.ID,
			Round:               params.Round,
			Status:              models.RoundStatusStarted,
			RoundStartAt:        timestamp,
			RoundEndAt:          timestamp + params.RoundDuration,
			Price:               price,
			HaveBuyLimit:        auction.HaveBuyLimit,
			BuyLimit:            auction.BuyLimit,
		}
		return tx.Create(nextRound).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.CollectionRoundStarted, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"round":           nextRound.Round,
		"price":           nextRound.Price,
	})
	return nextRound, nil
}

type EndCollectionRoundParams struct {
	PadName        string
	CollectionMint string
	Round          uint16
	Caller         string
	Signature      string
}

func (e *Engine) EndCollectionRound(params *EndCollectionRoundParams) (*models.CollectionAuctionRound, error) {
	if params.PadName == "" || params.CollectionMint == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.CollectionAuction
	var round *models.CollectionAuctionRound
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		auction, err = findCollectionAuction(tx, params.PadName, params.CollectionMint)
		if err != nil {
			return err
		}
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusStarted {
			return fmt.Errorf("collection auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if params.Round != auction.CurrentRound {
			return fmt.Errorf("round %d, current %d: %w", params.Round, auction.CurrentRound, ErrInvalidParams)
		}
		round, err = findCollectionRound(tx, auction.ID, params.Round)
		if err != nil {
			return err
		}
		if round.Status != models.RoundStatusStarted {
			return fmt.Errorf("round %d already ended: %w", round.Round, ErrInvalidLifecycleState)
		}
		if timestamp < round.RoundEndAt {
			return fmt.Errorf("round ends at %d, now %d: %w", round.RoundEndAt, timestamp, ErrRoundWindowViolation)
		}

		boost := utils.CalculateBoost(round.TotalSupplySold, auction.ExpectedSalesPerRound,
			auction.Omega, auction.Alpha, auction.TimeShiftMax)
		auction.AppendBoost(int64(boost))

		round.Status = models.RoundStatusEnded
		round.RoundEndedAt = timestamp
		round.Boost = int64(boost)
		if err := tx.Save(round).Error; err != nil {
			return err
		}

		if round.Round == auction.TMax {
			auction.Status = models.AuctionStatusEnded
		}
		auction.CurrentPrice = utils.CalculatePrice(auction.P0, auction.PTMax, auction.TMax,
			auction.CurrentRound, auction.Boosts(), auction.DecayModel, auction.TimeShiftMax)
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.CollectionRoundEnded, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"round":           round.Round,
		"boost":           round.Boost,
		"status":          auction.Status,
	})
	return round, nil
}

type CollectionUpdateAuthorityParams struct {
	PadName        string
	CollectionMint string
	Caller         string
	Signature      string
}

// GiveCollectionUpdateAuthority hands the collection's update authority to the
// registry custodian so minting can proceed. Fills are rejected until this
// runs.
func (e *Engine) GiveCollectionUpdateAuthority(params *CollectionUpdateAuthorityParams) (*models.CollectionAuction, error) {
	return e.setUpdateAuthority(params, true)
}

// TakeCollectionUpdateAuthority returns the update authority to its original
// holder. Pending fills stay pending until it is given back.
func (e *Engine) TakeCollectionUpdateAuthority(params *CollectionUpdateAuthorityParams) (*models.CollectionAuction, error) {
	return e.setUpdateAuthority(params, false)
}

func (e *Engine) setUpdateAuthority(params *CollectionUpdateAuthorityParams, give bool) (*models.CollectionAuction, error) {
	if params.PadName == "" || params.CollectionMint == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.CollectionAuction
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		auction, err = findCollectionAuction(tx, params.PadName, params.CollectionMint)
		if err != nil {
			return err
		}
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.HaveCollectionUpdateAuthority == give {
			return fmt.Errorf("update authority already %v: %w", give, ErrInvalidLifecycleState)
		}

		target := auction.CollectionUpdateAuthority
		if give {
			target = e.Custody.VaultAddress(auction.PadName, auction.CollectionMint)
		}
		if err := e.Registry.SetCollectionUpdateAuthority(auction.CollectionMint, target); err != nil {
			return err
		}

		auction.HaveCollectionUpdateAuthority = give
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}

	event := events.UpdateAuthorityTaken
	if give {
		event = events.UpdateAuthorityGiven
	}
	e.emit(event, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
	})
	return auction, nil
}

func findCollectionAuction(tx *gorm.DB, padName, collectionMint string) (*models.CollectionAuction, error) {
	var auction models.CollectionAuction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pad_name = ? AND collection_mint = ?", padName, collectionMint).First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection pad %s for %s: %w", padName, collectionMint, ErrNotFound)
		}
		return nil, err
	}
	return &auction, nil
}

func findCollectionRound(tx *gorm.DB, auctionID uint, round uint16) (*models.CollectionAuctionRound, error) {
	var auctionRound models.CollectionAuctionRound
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection_auction_id = ? AND round = ?", auctionID, round).First(&auctionRound).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("collection round %d: %w", round, ErrNotFound)
		}
		return nil, err
	}
	return &auctionRound, nil
}
