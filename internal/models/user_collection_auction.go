package models

import (
	"time"
)

// CollectionAuctionRound mirrors AuctionRound for collection pads.
type CollectionAuctionRound struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	CollectionAuctionID uint   `gorm:"not null;uniqueIndex:idx_collection_round" json:"collection_auction_id"`
	Round               uint16 `gorm:"not null;uniqueIndex:idx_collection_round" json:"round"`
	Status              string `gorm:"size:20;not null;default:'started'" json:"status"`

	RoundStartAt int64 `gorm:"not null" json:"round_start_at"`
	RoundEndAt   int64 `gorm:"not null" json:"round_end_at"`
	RoundEndedAt int64 `gorm:"default:0" json:"round_ended_at"`

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

func (CollectionAuctionRound) TableName() string {
	return "collection_auction_round"
}

// UserCollectionAuction accumulates one buyer's totals across a collection pad.
type UserCollectionAuction struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	CollectionAuctionID uint   `gorm:"not null;uniqueIndex:idx_user_collection_auction" json:"collection_auction_id"`
	User                string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_user_collection_auction" json:"user"`

	TotalBuyCount        uint64 `gorm:"default:0" json:"total_buy_count"`
	TotalBuyAmount       uint64 `gorm:"default:0" json:"total_buy_amount"`
	TotalBuyAmountFilled uint64 `gorm:"default:0" json:"total_buy_amount_filled"`
	TotalPayment         uint64 `gorm:"default:0" json:"total_payment"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserCollectionAuction) TableName() string {
	return "user_collection_auction"
}

// UserCollectionAuctionRound enforces per-round buy limits on collection pads.
type UserCollectionAuctionRound struct {
	ID                       uint   `gorm:"primarykey" json:"id"`
	CollectionAuctionRoundID uint   `gorm:"not null;uniqueIndex:idx_user_collection_round" json:"collection_auction_round_id"`
	User                     string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_user_collection_round" json:"user"`
	Round                    uint16 `gorm:"not null" json:"round"`

	TotalBuyCount  uint64 `gorm:"default:0" json:"total_buy_count"`
	TotalBuyAmount uint64 `gorm:"default:0" json:"total_buy_amount"`
	TotalPayment   uint64 `gorm:"default:0" json:"total_payment"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserCollectionAuctionRound) TableName() string {
	return "user_collection_auction_round"
}

// UserCollectionAuctionBuyReceipt is the per-buy two-phase record: payment is
// final at creation, BuyAmountFilled advances one unit per successful mint.
type UserCollectionAuctionBuyReceipt struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	CollectionAuctionID uint   `gorm:"not null;uniqueIndex:idx_collection_buy_receipt" json:"collection_auction_id"`
	User                string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_collection_buy_receipt" json:"user"`
	BuyIndex            uint64 `gorm:"not null;uniqueIndex:idx_collection_buy_receipt" json:"buy_index"`

	BuyAmount       uint64 `gorm:"not null" json:"buy_amount"`
	BuyAmountFilled uint64 `gorm:"default:0" json:"buy_amount_filled"`
	Payment         uint64 `gorm:"not null" json:"payment"`
	Round           uint16 `gorm:"not null" json:"round"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserCollectionAuctionBuyReceipt) TableName() string {
	return "user_collection_auction_buy_receipt"
}

// UserCollectionAuctionUnsoldDistribution is the claim-then-fill record of a
// buyer's pro-rata entitlement to unsold collection slots.
type UserCollectionAuctionUnsoldDistribution struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	CollectionAuctionID uint   `gorm:"not null;uniqueIndex:idx_user_collection_distribution" json:"collection_auction_id"`
	User                string `gorm:"column:user_address;size:64;not null;uniqueIndex:idx_user_collection_distribution" json:"user"`

	Amount       uint64 `gorm:"default:0" json:"amount"`
	AmountFilled uint64 `gorm:"default:0" json:"amount_filled"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserCollectionAuctionUnsoldDistribution) TableName() string {
	return "user_collection_auction_unsold_distribution"
}
