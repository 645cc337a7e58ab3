package business

import (
	"fmt"

	"gorm.io/gorm"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
	"padcontrol/pkg/utils"
)

type StartNextRoundParams struct {
	PadName       string
	Mint          string
	Round         uint16
	RoundDuration int64
	Caller        string
	Signature     string
}

// StartNextRound opens round N+1 at the price implied by the boost history so
// far. Only the immediate successor of the current round can start, and only
// after the current round has ended.
func (e *Engine) StartNextRound(params *StartNextRoundParams) (*models.AuctionRound, error) {
	if params.PadName == "" || params.Mint == "" || params.RoundDuration <= 0 {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.Auction
	var nextRound *models.AuctionRound
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		auction, err = findAuction(tx, params.PadName, params.Mint)
		if err != nil {
			return err
		}
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusStarted {
			return fmt.Errorf("auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if params.Round != auction.CurrentRound+1 {
			return fmt.Errorf("round %d, current %d: %w", params.Round, auction.CurrentRound, ErrInvalidParams)
		}
		if params.Round > auction.TMax {
			return fmt.Errorf("round %d exceeds t_max %d: %w", params.Round, auction.TMax, ErrInvalidParams)
		}
		previous, err := findRound(tx, auction.ID, auction.CurrentRound)
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

		nextRound = &models.AuctionRound{
			AuctionID:    auction.ID,
			Round:        params.Round,
			Status:       models.RoundStatusStarted,
			RoundStartAt: timestamp,
			RoundEndAt:   timestamp + params.RoundDuration,
			Price:        price,
			HaveBuyLimit: auction.HaveBuyLimit,
			BuyLimit:     auction.BuyLimit,
		}
		return tx.Create(nextRound).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.RoundStarted, timestamp, map[string]interface{}{
		"pad_name": auction.PadName,
		"mint":     auction.Mint,
		"round":    nextRound.Round,
		"price":    nextRound.Price,
	})
	return nextRound, nil
}

type EndRoundParams struct {
	PadName   string
	Mint      string
	Round     uint16
	Caller    string
	Signature string
}

// EndRound closes the current round once its window has elapsed, computes the
// round's sales boost and republishes the auction price. Ending the final
// round ends the auction.
func (e *Engine) EndRound(params *EndRoundParams) (*models.AuctionRound, error) {
	if params.PadName == "" || params.Mint == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.Auction
	var round *models.AuctionRound
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		auction, err = findAuction(tx, params.PadName, params.Mint)
		if err != nil {
			return err
		}
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusStarted {
			return fmt.Errorf("auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if params.Round != auction.CurrentRound {
			return fmt.Errorf("round %d, current %d: %w", params.Round, auction.CurrentRound, ErrInvalidParams)
		}
		round, err = findRound(tx, auction.ID, params.Round)
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
	e.emit(events.RoundEnded, timestamp, map[string]interface{}{
		"pad_name": auction.PadName,
		"mint":     auction.Mint,
		"round":    round.Round,
		"boost":    round.Boost,
		"status":   auction.Status,
	})
	return round, nil
}
