package business

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
	"padcontrol/pkg/utils"
)

type LockAndDistributeParams struct {
	PadName   string
	Mint      string
	Caller    string
	Signature string
}

// LockAndDistribute moves the unsold supply out of the sale vault once the
// auction is over: a configured share goes into the time-locked vault and a
// configured share becomes the buyer distribution pool. Opens claiming.
func (e *Engine) LockAndDistribute(params *LockAndDistributeParams) (*models.Auction, error) {
	if params.PadName == "" || params.Mint == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.Auction
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
		if auction.Status != models.AuctionStatusEnded && auction.Status != models.AuctionStatusSoldOut {
			return fmt.Errorf("auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}

		unsold, err := subU64(auction.TotalSupply, auction.TotalSupplySold)
		if err != nil {
			return err
		}
		locked := mulBasePoint(unsold, config.LockBasePoint)
		pool := mulBasePoint(unsold, config.DistributionBasePoint)

		if locked > 0 {
			vault := e.Custody.VaultAddress(auction.PadName, auction.Mint)
			lockVault := e.Custody.LockVaultAddress(auction.PadName, auction.Mint)
			if err := e.Custody.TransferSaleAsset(vault, lockVault, auction.Mint, locked); err != nil {
				return err
			}
		}

		auction.Status = models.AuctionStatusUnsoldLocked
		auction.TotalUnsoldSupplyLocked = locked
		auction.TotalUnsoldSupplyDistribution = pool
		auction.UnsoldSupplyLockedAt = timestamp
		auction.UnsoldSupplyCanUnlockAt = timestamp + config.LockDuration
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.UnsoldLocked, timestamp, map[string]interface{}{
		"pad_name":      auction.PadName,
		"mint":          auction.Mint,
		"locked":        auction.TotalUnsoldSupplyLocked,
		"distribution":  auction.TotalUnsoldSupplyDistribution,
		"can_unlock_at": auction.UnsoldSupplyCanUnlockAt,
	})
	return auction, nil
}

type ClaimDistributionParams struct {
	PadName   string
	Mint      string
	User      string
	Signature string
}

// ClaimDistribution pays a buyer their pro-rata slice of the unsold
// distribution pool. At most one claim per user per pad; the claimed amount
// is floor(userBought * pool / totalSold).
func (e *Engine) ClaimDistribution(params *ClaimDistributionParams) (*models.UserAuctionUnsoldDistribution, error) {
	if params.PadName == "" || params.Mint == "" || params.User == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.Auction
	var claim *models.UserAuctionUnsoldDistribution
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		config, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := checkProgramWorking(config); err != nil {
			return err
		}
		message := []byte(fmt.Sprintf("claim:%s:%s:%s", params.PadName, params.Mint, params.User))
		if err := e.checkBackAuthority(config, message, params.Signature); err != nil {
			return err
		}
		auction, err = findAuction(tx, params.PadName, params.Mint)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionStatusUnsoldLocked && auction.Status != models.AuctionStatusUnsoldUnlocked {
			return fmt.Errorf("distribution not open, status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}

		var userAuction models.UserAuction
		err = tx.Where("auction_id = ? AND user_address = ?", auction.ID, params.User).First(&userAuction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s never bought: %w", params.User, ErrNotFound)
		} else if err != nil {
			return err
		}

		var existing models.UserAuctionUnsoldDistribution
		err = tx.Where("auction_id = ? AND user_address = ?", auction.ID, params.User).First(&existing).Error
		if err == nil {
			return ErrAlreadyClaimed
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		amount := proRata(userAuction.TotalBuyAmount, auction.TotalUnsoldSupplyDistribution, auction.TotalSupplySold)
		if amount > 0 {
			vault := e.Custody.VaultAddress(auction.PadName, auction.Mint)
			if err := e.Custody.TransferSaleAsset(vault, params.User, auction.Mint, amount); err != nil {
				return err
			}
		}

		claim = &models.UserAuctionUnsoldDistribution{
			AuctionID: auction.ID,
			User:      params.User,
			Amount:    amount,
		}
		if err := tx.Create(claim).Error; err != nil {
			return err
		}

		auction.TotalUnsoldSupplyDistributionClaimed, err = addU64(auction.TotalUnsoldSupplyDistributionClaimed, amount)
		if err != nil {
			return err
		}
		auction.TotalUnsoldSupplyDistributionClaimCount++
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.DistributionClaimed, timestamp, map[string]interface{}{
		"pad_name": auction.PadName,
		"mint":     auction.Mint,
		"user":     params.User,
		"amount":   claim.Amount,
	})
	return claim, nil
}

type UnlockUnsoldSupplyParams struct {
	PadName   string
	Mint      string
	Caller    string
	Signature string
}

// UnlockUnsoldSupply returns the time-locked unsold supply to the creator
// once the lock duration has elapsed. Terminal state.
func (e *Engine) UnlockUnsoldSupply(params *UnlockUnsoldSupplyParams) (*models.Auction, error) {
	if params.PadName == "" || params.Mint == "" {
		return nil, ErrInvalidParams
	}
	timestamp := e.now()
	var auction *models.Auction
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
		if params.Caller != auction.Creator {
			return fmt.Errorf("caller %s is not the creator: %w", params.Caller, ErrUnauthorized)
		}
		if auction.Status != models.AuctionStatusUnsoldLocked {
			return fmt.Errorf("auction status %s: %w", auction.Status, ErrInvalidLifecycleState)
		}
		if timestamp < auction.UnsoldSupplyCanUnlockAt {
			return fmt.Errorf("locked until %d, now %d: %w", auction.UnsoldSupplyCanUnlockAt, timestamp, ErrClockNotElapsed)
		}

		if auction.TotalUnsoldSupplyLocked > 0 {
			lockVault := e.Custody.LockVaultAddress(auction.PadName, auction.Mint)
			if err := e.Custody.TransferSaleAsset(lockVault, auction.Creator, auction.Mint, auction.TotalUnsoldSupplyLocked); err != nil {
				return err
			}
		}

		auction.Status = models.AuctionStatusUnsoldUnlocked
		auction.UnsoldSupplyUnlockedAt = timestamp
		return tx.Save(auction).Error
	})
	if err != nil {
		return nil, err
	}
	e.emit(events.UnsoldUnlocked, timestamp, map[string]interface{}{
		"pad_name": auction.PadName,
		"mint":     auction.Mint,
		"amount":   auction.TotalUnsoldSupplyLocked,
	})
	return auction, nil
}

// mulBasePoint takes amount * bp / 10000 with a 128-bit intermediate.
func mulBasePoint(amount uint64, bp uint16) uint64 {
	product := new(big.Int).Mul(new(big.Int).SetUint64(amount), big.NewInt(int64(bp)))
	product.Div(product, new(big.Int).SetUint64(utils.BasePoint))
	return product.Uint64()
}

// proRata takes floor(share * pool / total), 0 when total is 0.
func proRata(share, pool, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	product := new(big.Int).Mul(new(big.Int).SetUint64(share), new(big.Int).SetUint64(pool))
	product.Div(product, new(big.Int).SetUint64(total))
	return product.Uint64()
}
