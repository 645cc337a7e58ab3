package business

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
	"padcontrol/pkg/utils"
)

// BuyParams is one purchase call against a fungible pad. BuyIndex is chosen by
// the buyer and must be exactly one past their previous index, which makes a
// retried submission detectable instead of reapplied.
type BuyParams struct {
	PadName   string
	Mint      string
	User      string
	Amount    uint64
	BuyIndex  uint64
	Round     uint16
	Signature string
}

// Buy applies one purchase: price lookup, round validation, limit enforcement,
// payment split, custody transfers and counter updates, all in one
// transaction. A buy that exhausts the supply flips the pad to sold out in the
// same transaction.
func (e *Engine) Buy(params *BuyParams) (*models.UserAuctionBuyReceipt, error) {
	timestamp := e.now()
	if params.Amount == 0 {
		return nil, fmt.Errorf("zero buy amount: %w", ErrInvalidParams)
	}

	var receipt *models.UserAuctionBuyReceipt
	var soldOut bool
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		message := []byte(fmt.Sprintf("buy:%s:%s:%s:%d:%d", params.PadName, params.Mint, params.User, params.Amount, params.BuyIndex))
		if err := e.checkBackAuthority(config, message, params.Signature); err != nil {
			return err
		}

		auction, err := findAuction(tx, params.PadName, params.Mint)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusStarted {
			return fmt.Errorf("auction is %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if params.Round != auction.CurrentRound {
			return fmt.Errorf("round %d is not current round %d: %w", params.Round, auction.CurrentRound, ErrInvalidParams)
		}

		round, err := findRound(tx, auction.ID, auction.CurrentRound)
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
			return fmt.Errorf("%d of %d supply sold: %w", auction.TotalSupplySold, auction.TotalSupply, ErrSupplyExhausted)
		}

		// Per-user records, created lazily on first touch.
		var userAuction models.UserAuction
		newUser := false
		err = tx.Where("auction_id = ? AND user_address = ?", auction.ID, params.User).First(&userAuction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newUser = true
			userAuction = models.UserAuction{AuctionID: auction.ID, User: params.User}
		} else if err != nil {
			return err
		}

		if params.BuyIndex <= userAuction.TotalBuyCount {
			return fmt.Errorf("buy index %d already used: %w", params.BuyIndex, ErrDuplicateReceipt)
		}
		if params.BuyIndex != userAuction.TotalBuyCount+1 {
			return fmt.Errorf("buy index %d, expected %d: %w", params.BuyIndex, userAuction.TotalBuyCount+1, ErrInvalidBuyIndex)
		}

		var userRound models.UserAuctionRound
		newRoundUser := false
		err = tx.Where("auction_round_id = ? AND user_address = ?", round.ID, params.User).First(&userRound).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newRoundUser = true
			userRound = models.UserAuctionRound{AuctionRoundID: round.ID, User: params.User, Round: round.Round}
		} else if err != nil {
			return err
		}

		if round.HaveBuyLimit && userRound.TotalBuyAmount+params.Amount > round.BuyLimit {
			return fmt.Errorf("round buy limit %d: %w", round.BuyLimit, ErrBuyLimitExceeded)
		}

		payment, err := utils.CalculateTotalPrice(params.Amount, auction.CurrentPrice, utils.DefaultDecimals, utils.DefaultDecimals, utils.DefaultDecimals)
		if err != nil {
			return fmt.Errorf("total price: %w", ErrArithmetic)
		}
		var fee uint64
		if config.IsFeeRequired {
			fee = mulBasePoint(payment, config.FeeBasePoint)
		}

		// Money moves before counters; a custody failure rolls everything back.
		if err := e.Custody.TransferPayment(params.User, auction.PaymentReceiver, auction.PaymentMint, payment-fee); err != nil {
			return err
		}
		if fee > 0 {
			if err := e.Custody.TransferPayment(params.User, config.FeeReceiver, auction.PaymentMint, fee); err != nil {
				return err
			}
		}
		vault := e.Custody.VaultAddress(auction.PadName, auction.Mint)
		if err := e.Custody.TransferSaleAsset(vault, params.User, auction.Mint, params.Amount); err != nil {
			return err
		}

		auction.TotalSupplySold = sold
		auction.TotalUserBuyCount++
		auction.TotalPayment += payment
		auction.TotalFee += fee
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

		receipt = &models.UserAuctionBuyReceipt{
			AuctionID: auction.ID,
			User:      params.User,
			BuyIndex:  params.BuyIndex,
			BuyAmount: params.Amount,
			Payment:   payment,
			Round:     round.Round,
		}

		// A buy that exhausts the supply closes the round and the pad in the
		// same transaction, with the round's boost recorded as usual.
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

	e.emit(events.BuyCompleted, timestamp, map[string]interface{}{
		"pad_name":  params.PadName,
		"mint":      params.Mint,
		"user":      params.User,
		"amount":    params.Amount,
		"payment":   receipt.Payment,
		"buy_index": params.BuyIndex,
		"round":     receipt.Round,
		"sold_out":  soldOut,
	})
	return receipt, nil
}
