package schedule

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"padcontrol/internal/handlers/business"
	"padcontrol/internal/models"
)

// Sweeper drives the time-based parts of the pad lifecycle that no user
// request triggers: ending elapsed rounds and opening their successors.
// It acts as the back authority.
type Sweeper struct {
	Engine        *business.Engine
	BackAuthority string
}

func NewSweeper(engine *business.Engine, backAuthority string) *Sweeper {
	return &Sweeper{Engine: engine, BackAuthority: backAuthority}
}

// SweepRounds ends every elapsed round and starts the next one with the same
// duration. Pads whose final round ends are left for LockAndDistribute.
func (s *Sweeper) SweepRounds() {
	now := s.Engine.Now().Unix()

	var rounds []models.AuctionRound
	err := s.Engine.DB.
		Where("status = ? AND round_end_at <= ?", models.RoundStatusStarted, now).
		Find(&rounds).Error
	if err != nil {
		log.Errorf("Failed to query elapsed rounds: %v", err)
		return
	}

	for _, round := range rounds {
		var auction models.Auction
		if err := s.Engine.DB.First(&auction, round.AuctionID).Error; err != nil {
			log.Errorf("Failed to load auction %d: %v", round.AuctionID, err)
			continue
		}
		if auction.Status != models.AuctionStatusStarted {
			continue
		}

		ended, err := s.Engine.EndRound(&business.EndRoundParams{
			PadName: auction.PadName,
			Mint:    auction.Mint,
			Round:   round.Round,
			Caller:  s.BackAuthority,
		})
		if err != nil {
			if !errors.Is(err, business.ErrInvalidLifecycleState) {
				log.Errorf("Failed to end round %d of pad %s: %v", round.Round, auction.PadName, err)
			}
			continue
		}
		log.Infof("Ended round %d of pad %s, boost %d", ended.Round, auction.PadName, ended.Boost)

		if round.Round < auction.TMax {
			duration := round.RoundEndAt - round.RoundStartAt
			next, err := s.Engine.StartNextRound(&business.StartNextRoundParams{
				PadName:       auction.PadName,
				Mint:          auction.Mint,
				Round:         round.Round + 1,
				RoundDuration: duration,
				Caller:        s.BackAuthority,
			})
			if err != nil {
				log.Errorf("Failed to start round %d of pad %s: %v", round.Round+1, auction.PadName, err)
				continue
			}
			log.Infof("Started round %d of pad %s at price %d", next.Round, auction.PadName, next.Price)
		}
	}

	s.sweepCollectionRounds(now)
}

func (s *Sweeper) sweepCollectionRounds(now int64) {
	var rounds []models.CollectionAuctionRound
	err := s.Engine.DB.
		Where("status = ? AND round_end_at <= ?", models.RoundStatusStarted, now).
		Find(&rounds).Error
	if err != nil {
		log.Errorf("Failed to query elapsed collection rounds: %v", err)
		return
	}

	for _, round := range rounds {
		var auction models.CollectionAuction
		if err := s.Engine.DB.First(&auction, round.CollectionAuctionID).Error; err != nil {
			log.Errorf("Failed to load collection auction %d: %v", round.CollectionAuctionID, err)
			continue
		}
		if auction.Status != models.AuctionStatusStarted {
			continue
		}

		ended, err := s.Engine.EndCollectionRound(&business.EndCollectionRoundParams{
			PadName:        auction.PadName,
			CollectionMint: auction.CollectionMint,
			Round:          round.Round,
			Caller:         s.BackAuthority,
		})
		if err != nil {
			if !errors.Is(err, business.ErrInvalidLifecycleState) {
				log.Errorf("Failed to end collection round %d of pad %s: %v", round.Round, auction.PadName, err)
			}
			continue
		}
		log.Infof("Ended collection round %d of pad %s, boost %d", ended.Round, auction.PadName, ended.Boost)

		if round.Round < auction.TMax {
			duration := round.RoundEndAt - round.RoundStartAt
			next, err := s.Engine.StartNextCollectionRound(&business.StartNextCollectionRoundParams{
				PadName:        auction.PadName,
				CollectionMint: auction.CollectionMint,
				Round:          round.Round + 1,
				RoundDuration:  duration,
				Caller:         s.BackAuthority,
			})
			if err != nil {
				log.Errorf("Failed to start collection round %d of pad %s: %v", round.Round+1, auction.PadName, err)
				continue
			}
			log.Infof("Started collection round %d of pad %s at price %d", next.Round, auction.PadName, next.Price)
		}
	}
}
