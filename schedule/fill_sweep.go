package schedule

import (
	log "github.com/sirupsen/logrus"

	"padcontrol/internal/models"
)

// FillQueue is the RabbitMQ queue minting work is dispatched on.
const FillQueue = "pad_fill"

// Fill message kinds.
const (
	FillKindBuy          = "buy"
	FillKindDistribution = "distribution"
	FillKindTreasury     = "treasury"
)

// FillRequest is one unit of minting work for the worker.
type FillRequest struct {
	Kind           string `json:"kind"`
	PadName        string `json:"pad_name"`
	CollectionMint string `json:"collection_mint"`
	User           string `json:"user,omitempty"`
	BuyIndex       uint64 `json:"buy_index,omitempty"`
}

// Publisher sends fill requests to the worker queue.
type Publisher interface {
	Publish(queueName string, message interface{}) error
}

// SweepFills enqueues one fill request per outstanding unminted unit: bought
// slots, claimed distribution slots and the treasury share. The worker
// performs the mints; requeuing an already-filled unit is rejected by the
// engine, so over-enqueueing is harmless.
func (s *Sweeper) SweepFills(publisher Publisher) {
	var auctions []models.CollectionAuction
	err := s.Engine.DB.
		Where("have_collection_update_authority = ?", true).
		Find(&auctions).Error
	if err != nil {
		log.Errorf("Failed to query collection auctions: %v", err)
		return
	}

	for _, auction := range auctions {
		s.enqueueBuyFills(publisher, &auction)
		s.enqueueDistributionFills(publisher, &auction)
		s.enqueueTreasuryFills(publisher, &auction)
	}
}

func (s *Sweeper) enqueueBuyFills(publisher Publisher, auction *models.CollectionAuction) {
	var receipts []models.UserCollectionAuctionBuyReceipt
	err := s.Engine.DB.
		Where("collection_auction_id = ? AND buy_amount_filled < buy_amount", auction.ID).
		Find(&receipts).Error
	if err != nil {
		log.Errorf("Failed to query unfilled receipts for pad %s: %v", auction.PadName, err)
		return
	}

	for _, receipt := range receipts {
		pending := receipt.BuyAmount - receipt.BuyAmountFilled
		for i := uint64(0); i < pending; i++ {
			request := FillRequest{
				Kind:           FillKindBuy,
				PadName:        auction.PadName,
				CollectionMint: auction.CollectionMint,
				User:           receipt.User,
				BuyIndex:       receipt.BuyIndex,
			}
			if err := publisher.Publish(FillQueue, request); err != nil {
				log.Errorf("Failed to enqueue buy fill for pad %s: %v", auction.PadName, err)
				return
			}
		}
	}
}

func (s *Sweeper) enqueueDistributionFills(publisher Publisher, auction *models.CollectionAuction) {
	var claims []models.UserCollectionAuctionUnsoldDistribution
	err := s.Engine.DB.
		Where("collection_auction_id = ? AND amount_filled < amount", auction.ID).
		Find(&claims).Error
	if err != nil {
		log.Errorf("Failed to query unfilled claims for pad %s: %v", auction.PadName, err)
		return
	}

	for _, claim := range claims {
		pending := claim.Amount - claim.AmountFilled
		for i := uint64(0); i < pending; i++ {
			request := FillRequest{
				Kind:           FillKindDistribution,
				PadName:        auction.PadName,
				CollectionMint: auction.CollectionMint,
				User:           claim.User,
			}
			if err := publisher.Publish(FillQueue, request); err != nil {
				log.Errorf("Failed to enqueue distribution fill for pad %s: %v", auction.PadName, err)
				return
			}
		}
	}
}

func (s *Sweeper) enqueueTreasuryFills(publisher Publisher, auction *models.CollectionAuction) {
	pending := auction.TotalUnsoldSupplyToTreasury - auction.TotalUnsoldSupplyToTreasuryFilled
	for i := uint64(0); i < pending; i++ {
		request := FillRequest{
			Kind:           FillKindTreasury,
			PadName:        auction.PadName,
			CollectionMint: auction.CollectionMint,
		}
		if err := publisher.Publish(FillQueue, request); err != nil {
			log.Errorf("Failed to enqueue treasury fill for pad %s: %v", auction.PadName, err)
			return
		}
	}
}
