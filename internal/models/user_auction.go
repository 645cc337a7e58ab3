package models

import (
	"time"
)

// UserAuction accumulates one buyer's totals across a whole auction. Created
// lazily on first buy.
type UserAuction struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	AuctionID uint   `gorm:"not null;uniqueIndex:idx_user_auction" json:"auction_id"`
	User      string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_user_auction" json:"user"`

	TotalBuyCount  uint64 `gorm:"default:0" json:"total_buy_count"`
	TotalBuyAmount uint64 `gorm:"default:0" json:"total_buy_amount"`
	TotalPayment   uint64 `gorm:"default:0" json:"total_payment"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserAuction) TableName() string {
	return "user_auction"
}

// UserAuctionRound is the per-round enforcement record for buy limits.
type UserAuctionRound struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	AuctionRoundID uint   `gorm:"not null;uniqueIndex:idx_user_auction_round" json:"auction_round_id"`
	User           string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_user_auction_round" json:"user"`
	Round          uint16 `gorm:"not null" json:"round"`

	TotalBuyCount  uint64 `gorm:"default:0" json:"total_buy_count"`
	TotalBuyAmount uint64 `gorm:"default:0" json:"total_buy_amount"`
	TotalPayment   uint64 `gorm:"default:0" json:"total_payment"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserAuctionRound) TableName() string {
	return "user_auction_round"
}

// UserAuctionBuyReceipt is the immutable, idempotency-anchoring record of a
// single buy call. BuyIndex is buyer-supplied and strictly sequential per user.
type UserAuctionBuyReceipt struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	AuctionID uint   `gorm:"not null;uniqueIndex:idx_buy_receipt" json:"auction_id"`
	User      string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_buy_receipt" json:"user"`
	BuyIndex  uint64 `gorm:"not null;uniqueIndex:idx_buy_receipt" json:"buy_index"`

	BuyAmount uint64 `gorm:"not null" json:"buy_amount"`
	Payment   uint64 `gorm:"not null" json:"payment"`
	Round     uint16 `gorm:"not null" json:"round"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (UserAuctionBuyReceipt) TableName() string {
	return "user_auction_buy_receipt"
}

// UserAuctionUnsoldDistribution records a buyer's claimed share of the unsold
// distribution pool. Write-once: a nonzero amount means already claimed.
type UserAuctionUnsoldDistribution struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	AuctionID uint   `gorm:"not null;uniqueIndex:idx_user_distribution" json:"auction_id"`
	User      string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_user_distribution" json:"user"`
	Amount    uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserAuctionUnsoldDistribution) TableName() string {
	return "user_auction_unsold_distribution"
}
