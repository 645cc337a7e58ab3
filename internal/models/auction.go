package models

import (
	"encoding/json"
	"time"
)

// Auction status values
const (
	AuctionStatusStarted        = "started"
	AuctionStatusEnded          = "ended"
	AuctionStatusSoldOut        = "sold_out"
	AuctionStatusUnsoldLocked   = "unsold_locked_and_distribution_open"
	AuctionStatusUnsoldUnlocked = "unsold_unlocked"
)

// Auction is one fungible pad: a single primary sale, front-loaded at P0 and
// decaying toward PTMax over at most TMax rounds. One row per
// (pad_name, mint) pair; never deleted, only status-terminal.
type Auction struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	PadName         string `gorm:"size:64;not null;uniqueIndex:idx_auction_pad_mint" json:"pad_name"`
	Creator         string `gorm:"size:64;not null" json:"creator"`
	Mint            string `gorm:"size:64;not null;uniqueIndex:idx_auction_pad_mint" json:"mint"`
	PaymentMint     string `gorm:"size:64;not null" json:"payment_mint"`
	PaymentReceiver string `gorm:"size:64;not null" json:"payment_receiver"`
	Status          string `gorm:"size:40;not null;default:'started'" json:"status"`

	P0           uint64 `gorm:"not null" json:"p0"`
	PTMax        uint64 `gorm:"not null" json:"ptmax"`
	TMax         uint16 `gorm:"not null" json:"tmax"`
	Omega        uint64 `gorm:"not null" json:"omega"`
	Alpha        uint64 `gorm:"not null" json:"alpha"`
	TimeShiftMax uint64 `gorm:"not null" json:"time_shift_max"`
	DecayModel   string `gorm:"size:20;not null;default:'linear'" json:"decay_model"`

	CurrentPrice uint64          `gorm:"not null" json:"current_price"`
	CurrentRound uint16          `gorm:"not null;default:1" json:"current_round"`
	BoostHistory json.RawMessage `gorm:"type:jsonb" json:"boost_history"` // []int64, -1 = unset

	TotalSupply uint64 `gorm:"not null" json:"total_supply"`
	// ExpectedSalesPerRound is the pacing target for boost, fixed at pad
	// creation so boost entries stay comparable across rounds.
	ExpectedSalesPerRound uint64 `gorm:"not null" json:"expected_sales_per_round"`

	TotalSupplySold   uint64 `gorm:"default:0" json:"total_supply_sold"`
	TotalUserBuyCount uint64 `gorm:"default:0" json:"total_user_buy_count"`
	TotalUserCount    uint64 `gorm:"default:0" json:"total_user_count"`
	TotalPayment      uint64 `gorm:"default:0" json:"total_payment"`
	TotalFee          uint64 `gorm:"default:0" json:"total_fee"`

	HaveBuyLimit bool   `gorm:"default:false" json:"have_buy_limit"`
	BuyLimit     uint64 `gorm:"default:0" json:"buy_limit"`

	TotalUnsoldSupplyLocked                 uint64 `gorm:"default:0" json:"total_unsold_supply_locked"`
	UnsoldSupplyLockedAt                    int64  `gorm:"default:0" json:"unsold_supply_locked_at"`
	UnsoldSupplyCanUnlockAt                 int64  `gorm:"default:0" json:"unsold_supply_can_unlock_at"`
	UnsoldSupplyUnlockedAt                  int64  `gorm:"default:0" json:"unsold_supply_unlocked_at"`
	TotalUnsoldSupplyDistribution           uint64 `gorm:"default:0" json:"total_unsold_supply_distribution"`
	TotalUnsoldSupplyDistributionClaimed    uint64 `gorm:"default:0" json:"total_unsold_supply_distribution_claimed"`
	TotalUnsoldSupplyDistributionClaimCount uint64 `gorm:"default:0" json:"total_unsold_supply_distribution_claim_count"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Auction) TableName() string {
	return "auction"
}

// Boosts decodes the accumulated boost history, oldest round first.
func (a *Auction) Boosts() []int64 {
	var boosts []int64
	if len(a.BoostHistory) > 0 {
		_ = json.Unmarshal(a.BoostHistory, &boosts)
	}
	return boosts
}

// AppendBoost records a completed round's boost at the end of the history.
func (a *Auction) AppendBoost(boost int64) {
	boosts := append(a.Boosts(), boost)
	raw, _ := json.Marshal(boosts)
	a.BoostHistory = raw
}
