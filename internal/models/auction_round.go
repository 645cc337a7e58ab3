package models

import (
	"time"
)

// Round status values
const (
	RoundStatusStarted = "started"
	RoundStatusEnded   = "ended"
)

// AuctionRound is one fixed-duration pricing window of an auction, 1-indexed.
// Price is constant within a round. Immutable once ended apart from the end
// timestamp bookkeeping.
type AuctionRound struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	AuctionID uint   `gorm:"not null;uniqueIndex:idx_auction_round" json:"auction_id"`
	Round     uint16 `gorm:"not null;uniqueIndex:idx_auction_round" json:"round"`
	Status    string `gorm:"size:20;not null;default:'started'" json:"status"`

	RoundStartAt int64 `gorm:"not null" json:"round_start_at"`
	RoundEndAt   int64 `gorm:"not null" json:"round_end_at"`
	RoundEndedAt int64 `gorm:"default:0" json:"round_ended_at"`

	// Price snapshot at round start; Boost is set when the round ends.
	Price uint64 `gorm:"not null" json:"price"`
	Boost int64  `gorm:"default:-1" json:"boost"`

	TotalSupplySold   uint64 `gorm:"default:0" json:"total_supply_sold"`
	TotalUserBuyCount uint64 `gorm:"default:0" json:"total_user_buy_count"`
	TotalUserCount    uint64 `gorm:"default:0" json:"total_user_count"`
	TotalPayment      uint64 `gorm:"default:0" json:"total_payment"`
	TotalFee          uint64 `gorm:"default:0" json:"total_fee"`

	HaveBuyLimit bool   `gorm:"default:false" json:"have_buy_limit"`
	BuyLimit     uint64 `gorm:"default:0" json:"buy_limit"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AuctionRound) TableName() string {
	return "auction_round"
}
