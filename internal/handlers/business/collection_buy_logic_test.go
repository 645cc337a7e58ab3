package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padcontrol/internal/models"
)

func collectionBuyParams(user string, amount, buyIndex uint64) *BuyCollectionAssetParams {
	return &BuyCollectionAssetParams{
		PadName:        "relics",
		CollectionMint: "COLLMINT",
		User:           user,
		Amount:         amount,
		BuyIndex:       buyIndex,
		Round:          1,
	}
}

func TestBuyCollectionAsset(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)
	env.seedCollectionPad(t, defaultCollectionPadParams("relics"))

	t.Run("Buy Reserves Slots And Takes Fees", func(t *testing.T) {
		receipt, err := env.engine.BuyCollectionAsset(collectionBuyParams("alice", 3, 1))
		require.NoError(t, err)
		assert.Equal(t, uint64(3), receipt.BuyAmount)
		assert.Equal(t, 15*testScale, receipt.Payment)
		assert.Equal(t, uint64(0), receipt.BuyAmountFilled)

		// 1% protocol fee plus 5 per-unit minting fee to the treasury.
		require.Len(t, env.custody.payments, 3)
		fee := 15 * testScale / 100
		assert.Equal(t, transferCall{From: "alice", To: "receiver", Mint: "PAYMINT", Amount: 15*testScale - fee}, env.custody.payments[0])
		assert.Equal(t, transferCall{From: "alice", To: "feereceiver", Mint: "PAYMINT", Amount: fee}, env.custody.payments[1])
		assert.Equal(t, transferCall{From: "alice", To: "treasury", Mint: "PAYMINT", Amount: 15}, env.custody.payments[2])

		auction := env.reloadCollectionAuction(t, "relics", "COLLMINT")
		assert.Equal(t, uint64(3), auction.TotalSupplySold)
		assert.Equal(t, uint64(4), auction.CurrentIndex)
		assert.Equal(t, uint64(15), auction.TotalMintingFee)
	})

	t.Run("Replayed Buy Index", func(t *testing.T) {
		_, err := env.engine.BuyCollectionAsset(collectionBuyParams("alice", 1, 1))
		assert.ErrorIs(t, err, ErrDuplicateReceipt)
	})

	t.Run("Oversold Buy Rejected", func(t *testing.T) {
		_, err := env.engine.BuyCollectionAsset(collectionBuyParams("bob", 98, 1))
		assert.ErrorIs(t, err, ErrSupplyExhausted)
	})

	t.Run("Exhausting Buy Flips To Sold Out", func(t *testing.T) {
		_, err := env.engine.BuyCollectionAsset(collectionBuyParams("bob", 97, 1))
		require.NoError(t, err)

		auction := env.reloadCollectionAuction(t, "relics", "COLLMINT")
		assert.Equal(t, models.AuctionStatusSoldOut, auction.Status)
		assert.Equal(t, uint64(101), auction.CurrentIndex)
	})
}

func TestBuyCollectionAssetFeeOnWidePayment(t *testing.T) {
	env := newTestEnv(t)
	config := defaultConfigParams()
	config.FeeBasePoint = 9999
	_, err := env.engine.InitializeConfig(config)
	require.NoError(t, err)

	params := defaultCollectionPadParams("vault-relics")
	params.CollectionMint = "COLLMINT2"
	params.P0 = 10_000 * testScale
	params.EndingIndex = 200
	env.seedCollectionPad(t, params)

	// payment * feeBasePoint does not fit in uint64; the split must still
	// come out exact.
	buy := collectionBuyParams("whale", 200, 1)
	buy.PadName = "vault-relics"
	buy.CollectionMint = "COLLMINT2"
	receipt, err := env.engine.BuyCollectionAsset(buy)
	require.NoError(t, err)

	payment := uint64(200) * 10_000 * testScale
	fee := uint64(1_999_800_000_000_000)
	assert.Equal(t, payment, receipt.Payment)
	require.Len(t, env.custody.payments, 3)
	assert.Equal(t, transferCall{From: "whale", To: "receiver", Mint: "PAYMINT", Amount: payment - fee}, env.custody.payments[0])
	assert.Equal(t, transferCall{From: "whale", To: "feereceiver", Mint: "PAYMINT", Amount: fee}, env.custody.payments[1])
	assert.Equal(t, transferCall{From: "whale", To: "treasury", Mint: "PAYMINT", Amount: 1000}, env.custody.payments[2])

	reloaded := env.reloadCollectionAuction(t, "vault-relics", "COLLMINT2")
	assert.Equal(t, fee, reloaded.TotalFee)
}

func TestBuyCollectionAssetLocksPadRows(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)
	env.seedCollectionPad(t, defaultCollectionPadParams("relics"))

	locked := env.recordRowLocks(t)
	_, err := env.engine.BuyCollectionAsset(collectionBuyParams("alice", 1, 1))
	require.NoError(t, err)
	assert.True(t, locked["collection_auction"])
	assert.True(t, locked["collection_auction_round"])
}

func TestFillBoughtCollectionAsset(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)
	env.seedCollectionPad(t, defaultCollectionPadParams("relics"))
	_, err := env.engine.BuyCollectionAsset(collectionBuyParams("alice", 2, 1))
	require.NoError(t, err)

	fill := func() (string, error) {
		return env.engine.FillBoughtCollectionAsset(&FillBoughtCollectionAssetParams{
			PadName:        "relics",
			CollectionMint: "COLLMINT",
			User:           "alice",
			BuyIndex:       1,
		})
	}

	t.Run("Rejected Without Update Authority", func(t *testing.T) {
		_, err := fill()
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Fills One Unit Per Call", func(t *testing.T) {
		_, err := env.engine.GiveCollectionUpdateAuthority(&CollectionUpdateAuthorityParams{
			PadName:        "relics",
			CollectionMint: "COLLMINT",
			Caller:         "creator",
		})
		require.NoError(t, err)

		asset, err := fill()
		require.NoError(t, err)
		assert.NotEmpty(t, asset)

		require.Len(t, env.registry.minted, 1)
		spec := env.registry.minted[0]
		assert.Equal(t, uint64(1), spec.Index)
		assert.Equal(t, "alice", spec.Owner)
		assert.Equal(t, "Relic #1", spec.Name)
		assert.Equal(t, "https://meta.example/relic/1.json", spec.URI)
		assert.Equal(t, uint16(500), spec.SellerFeeBasisPoints)

		_, err = fill()
		require.NoError(t, err)
		require.Len(t, env.registry.minted, 2)
		assert.Equal(t, uint64(2), env.registry.minted[1].Index)

		auction := env.reloadCollectionAuction(t, "relics", "COLLMINT")
		assert.Equal(t, uint64(2), auction.TotalSupplySoldFilled)
	})

	t.Run("Fully Filled Receipt Rejected", func(t *testing.T) {
		_, err := fill()
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Unknown Receipt", func(t *testing.T) {
		_, err := env.engine.FillBoughtCollectionAsset(&FillBoughtCollectionAssetParams{
			PadName:        "relics",
			CollectionMint: "COLLMINT",
			User:           "alice",
			BuyIndex:       2,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Registry Failure Rolls Back", func(t *testing.T) {
		_, err := env.engine.BuyCollectionAsset(collectionBuyParams("bob", 1, 1))
		require.NoError(t, err)

		env.registry.failWith = assert.AnError
		_, err = env.engine.FillBoughtCollectionAsset(&FillBoughtCollectionAssetParams{
			PadName:        "relics",
			CollectionMint: "COLLMINT",
			User:           "bob",
			BuyIndex:       1,
		})
		require.Error(t, err)
		env.registry.failWith = nil

		auction := env.reloadCollectionAuction(t, "relics", "COLLMINT")
		assert.Equal(t, uint64(2), auction.TotalSupplySoldFilled)

		var receipt models.UserCollectionAuctionBuyReceipt
		require.NoError(t, env.db.Where("user_address = ? AND buy_index = ?", "bob", 1).First(&receipt).Error)
		assert.Equal(t, uint64(0), receipt.BuyAmountFilled)
	})
}
