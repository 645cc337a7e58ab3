package business

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
)

type TreasuryAndDistributeParams struct {
	PadName        string
	CollectionMint string
	Caller         string
	Signature      string
}

// TreasuryAndDistribute splits the unsold slots once the collection sale is
// over: the configured share becomes the buyer distribution pool and the rest,
// including the division remainder, is earmarked for the treasury. Opens
// claiming.
func (e *Engine) TreasuryAndDistribute(params *TreasuryAndDistributeParams) (*models.CollectionAuction, error) {
	if params.PadName == "" || params.CollectionMint == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
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
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusEnded && auction.Status != models.AuctionStatusSoldOut {
			return fmt.Errorf("collection auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}

		unsold, err := subU64(auction.TotalSupply, auction.TotalSupplySold)
		if err != nil {
			return err
		}
		pool := mulBasePoint(unsold, config.DistributionBasePoint)

		auction.Status = models.AuctionStatusUnsoldLocked
		auction.TotalUnsoldSupplyDistribution = pool
		auction.TotalUnsoldSupplyToTreasury = unsold - pool
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.TreasuryAndDistributionOpened, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"treasury":        auction.TotalUnsoldSupplyToTreasury,
		"distribution":    auction.TotalUnsoldSupplyDistribution,
	})
	return auction, nil
}

type MintTreasuryAssetParams struct {
	PadName        string
	CollectionMint string
	Caller         string
	Signature      string
}

// MintTreasuryAsset mints one earmarked treasury unit to the treasury account.
// Called repeatedly until the treasury share is fully filled.
func (e *Engine) MintTreasuryAsset(params *MintTreasuryAssetParams) (string, error) {
	if params.PadName == "" || params.CollectionMint == "" {
		return "", ErrInvalidParams
	}
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
		if err := checkPrivileged(auction.Creator, config.BackAuthority, params.Caller); err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusUnsoldLocked {
			return fmt.Errorf("collection auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if !auction.HaveCollectionUpdateAuthority {
			return fmt.Errorf("update authority not held: %w", ErrInvalidLifecycleState)
		}
		if auction.TotalUnsoldSupplyToTreasuryFilled >= auction.TotalUnsoldSupplyToTreasury {
			return fmt.Errorf("treasury share fully minted: %w", ErrInvalidLifecycleState)
		}
		if auction.CurrentIndex > auction.EndingIndex {
			return fmt.Errorf("index %d past ending index %d: %w", auction.CurrentIndex, auction.EndingIndex, ErrArithmetic)
		}

		assetID, err = e.Registry.MintCollectionAsset(assetSpecFor(auction, config.Treasury, auction.CurrentIndex))
		if err != nil {
			return err
		}

		auction.CurrentIndex++
		auction.TotalUnsoldSupplyToTreasuryFilled++
		return tx.Save(auction).Error
	})
	if err != nil {
		return "", err
	}
	e.emit(events.TreasuryAssetMinted, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"asset":           assetID,
		"filled":          auction.TotalUnsoldSupplyToTreasuryFilled,
	})
	return assetID, nil
}

type ClaimCollectionAssetDistributionParams struct {
	PadName        string
	CollectionMint string
	User           string
	Signature      string
}

// ClaimCollectionAssetDistribution reserves a buyer's pro-rata slice of the
// unsold distribution pool and takes the per-unit minting fee. The reserved
// units are minted afterwards, one per FillClaimedCollectionAssetDistribution
// call.
func (e *Engine) ClaimCollectionAssetDistribution(params *ClaimCollectionAssetDistributionParams) (*models.UserCollectionAuctionUnsoldDistribution, error) {
	if params.PadName == "" || params.CollectionMint == "" || params.User == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.CollectionAuction
	var claim *models.UserCollectionAuctionUnsoldDistribution
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		message := []byte(fmt.Sprintf("claim_collection:%s:%s:%s", params.PadName, params.CollectionMint, params.User))
		if err := e.checkBackAuthority(config, message, params.Signature); err != nil {
			return err
		}
		auction, err = findCollectionAuction(tx, params.PadName, params.CollectionMint)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusUnsoldLocked {
			return fmt.Errorf("distribution not open, status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}

		var userAuction models.UserCollectionAuction
		err = tx.Where("collection_auction_id = ? AND user_address = ?", auction.ID, params.User).First(&userAuction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s never bought: %w", params.User, ErrNotFound)
		} else if err != nil {
			return err
		}

		var existing models.UserCollectionAuctionUnsoldDistribution
		err = tx.Where("collection_auction_id = ? AND user_address = ?", auction.ID, params.User).First(&existing).Error
		if err == nil {
			return ErrAlreadyClaimed
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		amount := proRata(userAuction.TotalBuyAmount, auction.TotalUnsoldSupplyDistribution, auction.TotalSupplySold)
		mintingFee, err := mulU64(amount, config.MintingFee)
		if err != nil {
			return err
		}
		if mintingFee > 0 {
			if err := e.Custody.TransferPayment(params.User, config.Treasury, auction.PaymentMint, mintingFee); err != nil {
				return err
			}
		}

		claim = &models.UserCollectionAuctionUnsoldDistribution{
			CollectionAuctionID: auction.ID,
			User:                params.User,
			Amount:              amount,
		}
		if err := tx.Create(claim).Error; err != nil {
			return err
		}

		auction.TotalUnsoldSupplyDistributionClaimed, err = addU64(auction.TotalUnsoldSupplyDistributionClaimed, amount)
		if err != nil {
			return err
		}
		auction.TotalUnsoldSupplyDistributionClaimCount++
		auction.TotalMintingFee += mintingFee
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.CollectionDistributionClaimed, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"user":            params.User,
		"amount":          claim.Amount,
	})
	return claim, nil
}

type FillClaimedCollectionAssetDistributionParams struct {
	PadName        string
	CollectionMint string
	User           string
}

// FillClaimedCollectionAssetDistribution mints one reserved distribution unit
// to the claimant. Retryable until the claim is fully filled.
func (e *Engine) FillClaimedCollectionAssetDistribution(params *FillClaimedCollectionAssetDistributionParams) (string, error) {
	if params.PadName == "" || params.CollectionMint == "" || params.User == "" {
		return "", ErrInvalidParams
	}
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

		var claim models.UserCollectionAuctionUnsoldDistribution
		err = tx.Where("collection_auction_id = ? AND user_address = ?", auction.ID, params.User).First(&claim).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("claim for %s: %w", params.User, ErrNotFound)
		} else if err != nil {
			return err
		}
		if claim.AmountFilled >= claim.Amount {
			return fmt.Errorf("claim fully filled: %w", ErrInvalidLifecycleState)
		}
		if auction.CurrentIndex > auction.EndingIndex {
			return fmt.Errorf("index %d past ending index %d: %w", auction.CurrentIndex, auction.EndingIndex, ErrArithmetic)
		}

		assetID, err = e.Registry.MintCollectionAsset(assetSpecFor(auction, params.User, auction.CurrentIndex))
		if err != nil {
			return err
		}

		auction.CurrentIndex++
		auction.TotalUnsoldSupplyDistributionFilled++
		claim.AmountFilled++
		if err := tx.Save(&claim).Error; err != nil {
			return err
		}
		return tx.Save(auction).Error
	})
	if err != nil {
		return "", err
	}
	e.emit(events.CollectionDistributionFilled, timestamp, map[string]interface{}{
		"pad_name":        auction.PadName,
		"collection_mint": auction.CollectionMint,
		"user":            params.User,
		"asset":           assetID,
	})
	return assetID, nil
}
