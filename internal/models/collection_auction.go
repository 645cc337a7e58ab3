package models

import (
	"encoding/json"
	"time"
)

// AssetCreator is one royalty payee of a collection; shares must sum to 100.
type AssetCreator struct {
	Address string `json:"address"`
	Share   uint8  `json:"share"`
}

// CollectionAuction is one collection pad: the same pricing and round machinery
// as Auction, selling sequentially numbered slots [StartingIndex, EndingIndex]
// that are minted after purchase (buy now, fill later).
type CollectionAuction struct {
	ID                        uint   `gorm:"primarykey" json:"id"`
	PadName                   string `gorm:"size:64;not null;uniqueIndex:idx_collection_auction_pad_mint" json:"pad_name"`
	Creator                   string `gorm:"size:64;not null" json:"creator"`
	CollectionMint            string `gorm:"size:64;not null;uniqueIndex:idx_collection_auction_pad_mint" json:"collection_mint"`
	CollectionUpdateAuthority string `gorm:"size:64;not null" json:"collection_update_authority"`
	PaymentMint               string `gorm:"size:64;not null" json:"payment_mint"`
	PaymentReceiver           string `gorm:"size:64;not null" json:"payment_receiver"`
	Status                    string `gorm:"size:40;not null;default:'started'" json:"status"`

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

	TotalSupply           uint64 `gorm:"not null" json:"total_supply"`
	ExpectedSalesPerRound uint64 `gorm:"not null" json:"expected_sales_per_round"`

	TotalSupplySold       uint64 `gorm:"default:0" json:"total_supply_sold"`
	TotalSupplySoldFilled uint64 `gorm:"default:0" json:"total_supply_sold_filled"`
	TotalUserBuyCount     uint64 `gorm:"default:0" json:"total_user_buy_count"`
	TotalUserCount        uint64 `gorm:"default:0" json:"total_user_count"`
	TotalPayment          uint64 `gorm:"default:0" json:"total_payment"`
	TotalFee              uint64 `gorm:"default:0" json:"total_fee"`
	TotalMintingFee       uint64 `gorm:"default:0" json:"total_minting_fee"`

	StartingIndex uint64 `gorm:"not null" json:"starting_index"`
	EndingIndex   uint64 `gorm:"not null" json:"ending_index"`
	CurrentIndex  uint64 `gorm:"not null" json:"current_index"`

	HaveBuyLimit bool   `gorm:"default:false" json:"have_buy_limit"`
	BuyLimit     uint64 `gorm:"default:0" json:"buy_limit"`

	TotalUnsoldSupplyToTreasury             uint64 `gorm:"default:0" json:"total_unsold_supply_to_treasury"`
	TotalUnsoldSupplyToTreasuryFilled       uint64 `gorm:"default:0" json:"total_unsold_supply_to_treasury_filled"`
	TotalUnsoldSupplyDistribution           uint64 `gorm:"default:0" json:"total_unsold_supply_distribution"`
	TotalUnsoldSupplyDistributionClaimed    uint64 `gorm:"default:0" json:"total_unsold_supply_distribution_claimed"`
	TotalUnsoldSupplyDistributionClaimCount uint64 `gorm:"default:0" json:"total_unsold_supply_distribution_claim_count"`
	TotalUnsoldSupplyDistributionFilled     uint64 `gorm:"default:0" json:"total_unsold_supply_distribution_filled"`

	SellerFeeBasisPoints uint16          `gorm:"not null" json:"seller_fee_basis_points"`
	AssetCreators        json.RawMessage `gorm:"type:jsonb" json:"asset_creators"` // []AssetCreator
	AssetName            string          `gorm:"size:200;not null" json:"asset_name"`
	AssetSymbol          string          `gorm:"size:20;not null" json:"asset_symbol"`
	AssetURL             string          `gorm:"size:200;not null" json:"asset_url"`
	AssetURLSuffix       string          `gorm:"size:40" json:"asset_url_suffix"`

	HaveCollectionUpdateAuthority bool `gorm:"default:false" json:"have_collection_update_authority"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CollectionAuction) TableName() string {
	return "collection_auction"
}

func (a *CollectionAuction) Boosts() []int64 {
	var boosts []int64
	if len(a.BoostHistory) > 0 {
		_ = json.Unmarshal(a.BoostHistory, &boosts)
	}
	return boosts
}

func (a *CollectionAuction) AppendBoost(boost int64) {
	boosts := append(a.Boosts(), boost)
	raw, _ := json.Marshal(boosts)
	a.BoostHistory = raw
}

// Creators decodes the royalty payee list.
func (a *CollectionAuction) Creators() []AssetCreator {
	var creators []AssetCreator
	if len(a.AssetCreators) > 0 {
		_ = json.Unmarshal(a.AssetCreators, &creators)
	}
	return creators
}
