package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padcontrol/internal/models"
)

func defaultCollectionPadParams(name string) *InitializeCollectionPadParams {
	return &InitializeCollectionPadParams{
		PadName:                   name,
		Creator:                   "creator",
		CollectionMint:            "COLLMINT",
		CollectionUpdateAuthority: "origauthority",
		PaymentMint:               "PAYMINT",
		PaymentReceiver:           "receiver",
		P0:                        5 * testScale,
		PTMax:                     1 * testScale,
		TMax:                      10,
		Omega:                     1,
		Alpha:                     1,
		TimeShiftMax:              3,
		RoundDuration:             3600,
		StartingIndex:             1,
		EndingIndex:               100,
		DecayModel:                "linear",
		SellerFeeBasisPoints:      500,
		AssetCreators:             []models.AssetCreator{{Address: "creator", Share: 100}},
		AssetName:                 "Relic",
		AssetSymbol:               "RLC",
		AssetURL:                  "https://meta.example/relic/",
		AssetURLSuffix:            ".json",
	}
}

func (env *testEnv) seedCollectionPad(t *testing.T, params *InitializeCollectionPadParams) *models.CollectionAuction {
	t.Helper()
	auction, err := env.engine.InitializeCollectionPad(params)
	require.NoError(t, err)
	return auction
}

func (env *testEnv) reloadCollectionAuction(t *testing.T, padName, collectionMint string) *models.CollectionAuction {
	t.Helper()
	var auction models.CollectionAuction
	require.NoError(t, env.db.Where("pad_name = ? AND collection_mint = ?", padName, collectionMint).First(&auction).Error)
	return &auction
}

func TestInitializeCollectionPad(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)

	t.Run("Creates Pad From Index Range", func(t *testing.T) {
		auction := env.seedCollectionPad(t, defaultCollectionPadParams("relics"))
		assert.Equal(t, uint64(100), auction.TotalSupply)
		assert.Equal(t, uint64(10), auction.ExpectedSalesPerRound)
		assert.Equal(t, uint64(1), auction.CurrentIndex)
		assert.Equal(t, 5*testScale, auction.CurrentPrice)
		assert.False(t, auction.HaveCollectionUpdateAuthority)
		assert.Equal(t, []models.AssetCreator{{Address: "creator", Share: 100}}, auction.Creators())
	})

	t.Run("Duplicate Pad Rejected", func(t *testing.T) {
		_, err := env.engine.InitializeCollectionPad(defaultCollectionPadParams("relics"))
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Inverted Index Range", func(t *testing.T) {
		params := defaultCollectionPadParams("backwards")
		params.StartingIndex = 10
		params.EndingIndex = 5
		_, err := env.engine.InitializeCollectionPad(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("Creator Shares Must Sum To Hundred", func(t *testing.T) {
		params := defaultCollectionPadParams("split")
		params.AssetCreators = []models.AssetCreator{
			{Address: "creator", Share: 60},
			{Address: "partner", Share: 30},
		}
		_, err := env.engine.InitializeCollectionPad(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("Empty Asset Metadata", func(t *testing.T) {
		params := defaultCollectionPadParams("nameless")
		params.AssetName = ""
		_, err := env.engine.InitializeCollectionPad(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})
}

func TestCollectionUpdateAuthority(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)
	env.seedCollectionPad(t, defaultCollectionPadParams("relics"))

	authorityParams := &CollectionUpdateAuthorityParams{
		PadName:        "relics",
		CollectionMint: "COLLMINT",
		Caller:         "creator",
	}

	t.Run("Take Before Give Rejected", func(t *testing.T) {
		_, err := env.engine.TakeCollectionUpdateAuthority(authorityParams)
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Give Moves Authority To Custodian", func(t *testing.T) {
		auction, err := env.engine.GiveCollectionUpdateAuthority(authorityParams)
		require.NoError(t, err)
		assert.True(t, auction.HaveCollectionUpdateAuthority)
		assert.Equal(t, "vault:relics", env.registry.authorities["COLLMINT"])
	})

	t.Run("Give Twice Rejected", func(t *testing.T) {
		_, err := env.engine.GiveCollectionUpdateAuthority(authorityParams)
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Take Restores Original Holder", func(t *testing.T) {
		auction, err := env.engine.TakeCollectionUpdateAuthority(authorityParams)
		require.NoError(t, err)
		assert.False(t, auction.HaveCollectionUpdateAuthority)
		assert.Equal(t, "origauthority", env.registry.authorities["COLLMINT"])
	})
}
