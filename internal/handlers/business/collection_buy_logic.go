package business

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
	"padcontrol/pkg/utils"
)

// BuyCollectionAssetParams is one purchase call against a collection pad.
// Amount is a slot count, not a fixed-point quantity.
type BuyCollectionAssetParams struct {
	PadName        string
	CollectionMint string
	User           string
	Amount         uint64
	BuyIndex       uint64
	Round          uint16
	Signature      string
}

// BuyCollectionAsset reserves the next Amount slots and takes payment plus the
// per-unit minting fee. Slots are minted later by FillBoughtCollectionAsset;
// the payment is final here, the fill is retryable.
func (e *Engine) BuyCollectionAsset(params *BuyCollectionAssetParams) (*models.UserCollectionAuctionBuyReceipt, error) {
	timestamp := e.now()
	if params.Amount == 0 {
		return nil, fmt.Errorf("zero buy amount: %w", ErrInvalidParams)
	}

	var receipt *models.UserCollectionAuctionBuyReceipt
	var soldOut bool
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		message := []byte(fmt.Sprintf("buy_collection:%s:%s:%s:%d:%d", params.PadName, params.CollectionMint, params.User, params.Amount, params.BuyIndex))
		if err := e.checkBackAuthority(config, message, params.Signature); err != nil {
			return err
		}

		auction, err := findCollectionAuction(tx, params.PadName, params.CollectionMint)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusStarted {
			return fmt.Errorf("collection auction is %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if params.Round != auction.CurrentRound {
			return fmt.Errorf("round %d is not current round %d: %w", params.Round, auction.CurrentRound, ErrInvalidParams)
		}

		round, err := findCollectionRound(tx, auction.ID, auction.CurrentRound)
		if err != nil {
			return err
		}
		if round.Status != models.RoundStatusStarted {
			return fmt.Errorf("round %d is %s: %w", round.Round, round.Status, ErrInvalidLifecycleState)
		}
		if timestamp < round.RoundStartAt || timestamp > round.RoundEndAt {
			return fmt.Errorf("round window [%d, %d]: %w", round.RoundStartAt, round.RoundEndAt, ErrRoundWindowViolation)
		}

		sold, err := addU64(auction.TotalSupplySold, params.Amount)
		if err != nil {
			return err
		}
		if sold > auction.TotalSupply {
			return fmt.Errorf("%d of %d slots sold: %w", auction.TotalSupplySold, auction.TotalSupply, ErrSupplyExhausted)
		}

		var userAuction models.UserCollectionAuction
		newUser := false
		err = tx.Where("collection_auction_id = ? AND user_address = ?", auction.ID, params.User).First(&userAuction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newUser = true
			userAuction = models.UserCollectionAuction{CollectionAuctionID: auction.ID, User: params.User}
		} else if err != nil {
			return err
		}

		if params.BuyIndex <= userAuction.TotalBuyCount {
			return fmt.Errorf("buy index %d already used: %w", params.BuyIndex, ErrDuplicateReceipt)
		}
		if params.BuyIndex != userAuction.TotalBuyCount+1 {
			return fmt.Errorf("buy index %d, expected %d: %w", params.BuyIndex, userAuction.TotalBuyCount+1, ErrInvalidBuyIndex)
		}

		var userRound models.UserCollectionAuctionRound
		newRoundUser := false
		err = tx.Where("collection_auction_round_id = ? AND user_address = ?", round.ID, params.User).First(&userRound).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newRoundUser = true
			userRound = models.UserCollectionAuctionRound{CollectionAuctionRoundID: round.ID, User: params.User, Round: round.Round}
		} else if err != nil {
			return err
		}

		if round.HaveBuyLimit && userRound.TotalBuyAmount+params.Amount > round.BuyLimit {
			return fmt.Errorf("round buy limit %d: %w", round.BuyLimit, ErrBuyLimitExceeded)
		}

		// Slot count times per-unit price; prices are already fixed-point.
		payment, err := mulU64(params.Amount, auction.CurrentPrice)
		if err != nil {
			return err
		}
		var fee uint64
		if config.IsFeeRequired {
			fee = mulBasePoint(payment, config.FeeBasePoint)
		}
		mintingFee, err := mulU64(params.Amount, config.MintingFee)
		if err != nil {
			return err
		}

		if err := e.Custody.TransferPayment(params.User, auction.PaymentReceiver, auction.PaymentMint, payment-fee); err != nil {
			return err
		}
		if fee > 0 {
			if err := e.Custody.TransferPayment(params.User, config.FeeReceiver, auction.PaymentMint, fee); err != nil {
				return err
			}
		}
		if mintingFee > 0 {
			if err := e.Custody.TransferPayment(params.User, config.Treasury, auction.PaymentMint, mintingFee); err != nil {
				return err
			}
		}

		auction.TotalSupplySold = sold
		auction.CurrentIndex += params.Amount
		auction.TotalUserBuyCount++
		auction.TotalPayment += payment
		auction.TotalFee += fee
		auction.TotalMintingFee += mintingFee
		if newUser {
			auction.TotalUserCount++
		}

		round.TotalSupplySold += params.Amount
		round.TotalUserBuyCount++
		round.TotalPayment += payment
		round.TotalFee += fee
		if newRoundUser {
			round.TotalUserCount++
		}

		userAuction.TotalBuyCount++
		userAuction.TotalBuyAmount += params.Amount
		userAuction.TotalPayment += payment

		userRound.TotalBuyCount++
		userRound.TotalBuyAmount += params.Amount
		userRound.TotalPayment += payment

		receipt = &models.UserCollectionAuctionBuyReceipt{
			CollectionAuctionID: auction.ID,
			User:                params.User,
			BuyIndex:            params.BuyIndex,
			BuyAmount:           params.Amount,
			Payment:             payment,
			Round:               round.Round,
		}

		if auction.TotalSupplySold == auction.TotalSupply {
			soldOut = true
			boost := utils.CalculateBoost(round.TotalSupplySold, auction.ExpectedSalesPerRound, auction.Omega, auction.Alpha, auction.TimeShiftMax)
			auction.AppendBoost(int64(boost))
			auction.Status = models.AuctionStatusSoldOut
			round.Status = models.RoundStatusEnded
			round.RoundEndedAt = timestamp
			round.Boost = int64(boost)
		}

		if err := tx.Save(auction).Error; err != nil {
			return err
		}
		if err := tx.Save(round).Error; err != nil {
			return err
		}
		if err := tx.Save(&userAuction).Error; err != nil {
			return err
		}
		if err := tx.Save(&userRound).Error; err != nil {
			return err
		}
		return tx.Create(receipt).Error
	})
	if err != nil {
		return nil, err
	}

	e.emit(events.CollectionBuyCompleted, timestamp, map[string]interface{}{
		"pad_name":        params.PadName,
		"collection_mint": params.CollectionMint,
		"user":            params.User,
		"amount":          params.Amount,
		"payment":         receipt.Payment,
		"buy_index":       params.BuyIndex,
		"round":           receipt.Round,
		"sold_out":        soldOut,
	})
	return receipt, nil
}

// FillBoughtCollectionAssetParams mints one unit against an existing receipt.
type FillBoughtCollectionAssetParams struct {
	PadName        string
	CollectionMint string
	User           string
	BuyIndex       uint64
}

// FillBoughtCollectionAsset mints the next unpaid-for-minting unit of a
// receipt. Safe to retry: a fill that fails at the registry changes nothing,
// and a receipt with every unit filled is rejected rather than overfilled.
func (e *Engine) FillBoughtCollectionAsset(params *FillBoughtCollectionAssetParams) (string, error) {
	timestamp := e.now()
	var assetID string
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
		if !auction.HaveCollectionUpdateAuthority {
			return fmt.Errorf("update authority not held: %w", ErrInvalidLifecycleState)
		}

		var receipt models.UserCollectionAuctionBuyReceipt
		err = tx.Where("collection_auction_id = ? AND user_address = ? AND buy_index = ?", auction.ID, params.User, params.BuyIndex).
			First(&receipt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("receipt %d for %s: %w", params.BuyIndex, params.User, ErrNotFound)
		} else if err != nil {
			return err
		}
		if receipt.BuyAmountFilled >= receipt.BuyAmount {
			return fmt.Errorf("receipt %d fully filled: %w", params.BuyIndex, ErrInvalidLifecycleState)
		}

		var userAuction models.UserCollectionAuction
		if err := tx.Where("collection_auction_id = ? AND user_address = ?", auction.ID, params.User).
			First(&userAuction).Error; err != nil {
			return err
		}

		index := auction.StartingIndex + auction.TotalSupplySoldFilled
		assetID, err = e.Registry.MintCollectionAsset(assetSpecFor(auction, params.User, index))
		if err != nil {
			return err
		}

		receipt.BuyAmountFilled++
		userAuction.TotalBuyAmountFilled++
		auction.TotalSupplySoldFilled++
		if err := tx.Save(&receipt).Error; err != nil {
			return err
		}
		if err := tx.Save(&userAuction).Error; err != nil {
			return err
		}
		return tx.Save(auction).Error
	})
	if err != nil {
		return "", err
	}

	e.emit(events.CollectionAssetFilled, timestamp, map[string]interface{}{
		"pad_name":        params.PadName,
		"collection_mint": params.CollectionMint,
		"user":            params.User,
		"buy_index":       params.BuyIndex,
		"asset":           assetID,
	})
	return assetID, nil
}

// assetSpecFor builds the numbered item spec from the pad's metadata template.
func assetSpecFor(auction *models.CollectionAuction, owner string, index uint64) AssetSpec {
	return AssetSpec{
		CollectionMint:       auction.CollectionMint,
		Owner:                owner,
		Index:                index,
		Name:                 fmt.Sprintf("%s #%d", auction.AssetName, index),
		Symbol:               auction.AssetSymbol,
		URI:                  fmt.Sprintf("%s%d%s", auction.AssetURL, index, auction.AssetURLSuffix),
		SellerFeeBasisPoints: auction.SellerFeeBasisPoints,
		Creators:             auction.Creators(),
	}
}

func mulU64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, ErrArithmetic
	}
	return product, nil
}
