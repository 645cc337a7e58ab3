package business

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"padcontrol/internal/models"
)

const (
	testScale = uint64(1_000_000_000)
	baseTime  = int64(1_700_000_000)
)

type transferCall struct {
	From   string
	To     string
	Mint   string
	Amount uint64
}

type fakeCustody struct {
	payments  []transferCall
	saleMoves []transferCall
	failWith  error
}

func (c *fakeCustody) TransferPayment(from, to, paymentMint string, amount uint64) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.payments = append(c.payments, transferCall{From: from, To: to, Mint: paymentMint, Amount: amount})
	return nil
}

func (c *fakeCustody) TransferSaleAsset(from, to, mint string, amount uint64) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.saleMoves = append(c.saleMoves, transferCall{From: from, To: to, Mint: mint, Amount: amount})
	return nil
}

func (c *fakeCustody) VaultAddress(padName, mint string) string {
	return "vault:" + padName
}

func (c *fakeCustody) LockVaultAddress(padName, mint string) string {
	return "lockvault:" + padName
}

type fakeRegistry struct {
	minted      []AssetSpec
	authorities map[string]string
	failWith    error
}

func (r *fakeRegistry) MintCollectionAsset(spec AssetSpec) (string, error) {
	if r.failWith != nil {
		return "", r.failWith
	}
	r.minted = append(r.minted, spec)
	return fmt.Sprintf("asset-%d", len(r.minted)), nil
}

func (r *fakeRegistry) SetCollectionUpdateAuthority(collectionMint, newAuthority string) error {
	if r.failWith != nil {
		return r.failWith
	}
	if r.authorities == nil {
		r.authorities = make(map[string]string)
	}
	r.authorities[collectionMint] = newAuthority
	return nil
}

type emittedEvent struct {
	Event   string
	Payload interface{}
}

type fakeSink struct {
	events []emittedEvent
}

func (s *fakeSink) Emit(event string, timestamp int64, payload interface{}) {
	s.events = append(s.events, emittedEvent{Event: event, Payload: payload})
}

func (s *fakeSink) last() emittedEvent {
	if len(s.events) == 0 {
		return emittedEvent{}
	}
	return s.events[len(s.events)-1]
}

type fakeVerifier struct {
	failWith error
}

func (v *fakeVerifier) Verify(authority string, message []byte, signature string) error {
	return v.failWith
}

// testEnv wires an engine against an in-memory database with fake
// collaborators and a settable clock.
type testEnv struct {
	engine   *Engine
	db       *gorm.DB
	custody  *fakeCustody
	registry *fakeRegistry
	sink     *fakeSink
	verifier *fakeVerifier
	now      int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ProgramConfig{},
		&models.Auction{},
		&models.AuctionRound{},
		&models.UserAuction{},
		&models.UserAuctionRound{},
		&models.UserAuctionBuyReceipt{},
		&models.UserAuctionUnsoldDistribution{},
		&models.CollectionAuction{},
		&models.CollectionAuctionRound{},
		&models.UserCollectionAuction{},
		&models.UserCollectionAuctionRound{},
		&models.UserCollectionAuctionBuyReceipt{},
		&models.UserCollectionAuctionUnsoldDistribution{},
	))

	env := &testEnv{
		db:       db,
		custody:  &fakeCustody{},
		registry: &fakeRegistry{},
		sink:     &fakeSink{},
		verifier: &fakeVerifier{},
		now:      baseTime,
	}
	env.engine = NewEngine(db, env.custody, env.registry, env.sink, env.verifier)
	env.engine.Now = func() time.Time { return time.Unix(env.now, 0) }
	return env
}

func (env *testEnv) advance(seconds int64) {
	env.now += seconds
}

// recordRowLocks notes which record types were read with a locking clause.
// Sqlite renders the clause as nothing, but it still registers on the
// statement.
func (env *testEnv) recordRowLocks(t *testing.T) map[string]bool {
	t.Helper()
	locked := map[string]bool{}
	err := env.db.Callback().Query().After("gorm:query").Register("record_row_locks", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses["FOR"]; !ok {
			return
		}
		switch tx.Statement.Dest.(type) {
		case *models.Auction:
			locked["auction"] = true
		case *models.AuctionRound:
			locked["auction_round"] = true
		case *models.CollectionAuction:
			locked["collection_auction"] = true
		case *models.CollectionAuctionRound:
			locked["collection_auction_round"] = true
		}
	})
	require.NoError(t, err)
	return locked
}

func defaultConfigParams() *InitializeConfigParams {
	return &InitializeConfigParams{
		SigningAuthority:      "authority",
		BackAuthority:         "backauth",
		IsFeeRequired:         true,
		FeeBasePoint:          100,
		FeeReceiver:           "feereceiver",
		RoundLimit:            20,
		DistributionBasePoint: 3000,
		LockBasePoint:         7000,
		LockDuration:          86400,
		MintingFee:            5,
		Treasury:              "treasury",
	}
}

func (env *testEnv) seedConfig(t *testing.T) *models.ProgramConfig {
	t.Helper()
	config, err := env.engine.InitializeConfig(defaultConfigParams())
	require.NoError(t, err)
	return config
}

func defaultPadParams(name string) *InitializePadParams {
	return &InitializePadParams{
		PadName:         name,
		Creator:         "creator",
		Mint:            "SALEMINT",
		PaymentMint:     "PAYMINT",
		PaymentReceiver: "receiver",
		P0:              100 * testScale,
		PTMax:           10 * testScale,
		TMax:            10,
		Omega:           1,
		Alpha:           1,
		TimeShiftMax:    3,
		RoundDuration:   3600,
		Supply:          1000 * testScale,
		DecayModel:      "linear",
	}
}

func (env *testEnv) seedPad(t *testing.T, params *InitializePadParams) *models.Auction {
	t.Helper()
	auction, err := env.engine.InitializePad(params)
	require.NoError(t, err)
	return auction
}

func (env *testEnv) reloadAuction(t *testing.T, padName, mint string) *models.Auction {
	t.Helper()
	var auction models.Auction
	require.NoError(t, env.db.Where("pad_name = ? AND mint = ?", padName, mint).First(&auction).Error)
	return &auction
}

func (env *testEnv) reloadRound(t *testing.T, auctionID uint, round uint16) *models.AuctionRound {
	t.Helper()
	var auctionRound models.AuctionRound
	require.NoError(t, env.db.Where("auction_id = ? AND round = ?", auctionID, round).First(&auctionRound).Error)
	return &auctionRound
}

func TestInitializeConfig(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Creates Singleton", func(t *testing.T) {
		config := env.seedConfig(t)
		assert.NotZero(t, config.ID)
		assert.Equal(t, models.ProgramStatusNormal, config.ProgramStatus)
		assert.Equal(t, uint16(20), config.RoundLimit)
	})

	t.Run("Second Initialize Rejected", func(t *testing.T) {
		_, err := env.engine.InitializeConfig(defaultConfigParams())
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Rejects Overcommitted Base Points", func(t *testing.T) {
		params := defaultConfigParams()
		params.DistributionBasePoint = 6000
		params.LockBasePoint = 6000
		_, err := env.engine.InitializeConfig(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})
}

func TestUpdateConfig(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)

	update := &UpdateConfigParams{
		Caller:                "authority",
		BackAuthority:         "backauth2",
		ProgramStatus:         models.ProgramStatusHalted,
		IsFeeRequired:         true,
		FeeBasePoint:          200,
		FeeReceiver:           "feereceiver",
		RoundLimit:            30,
		DistributionBasePoint: 2000,
		LockBasePoint:         8000,
		LockDuration:          3600,
		Treasury:              "treasury",
	}

	t.Run("Only Signing Authority", func(t *testing.T) {
		bad := *update
		bad.Caller = "intruder"
		_, err := env.engine.UpdateConfig(&bad)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Halts The Program", func(t *testing.T) {
		config, err := env.engine.UpdateConfig(update)
		require.NoError(t, err)
		assert.Equal(t, models.ProgramStatusHalted, config.ProgramStatus)
		assert.Equal(t, "backauth2", config.BackAuthority)

		// Every state-changing operation refuses while halted.
		_, err = env.engine.InitializePad(defaultPadParams("halted-pad"))
		assert.ErrorIs(t, err, ErrProgramHalted)
	})
}

func TestInitializePad(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)

	t.Run("Creates Auction And First Round", func(t *testing.T) {
		auction := env.seedPad(t, defaultPadParams("genesis"))
		assert.Equal(t, models.AuctionStatusStarted, auction.Status)
		assert.Equal(t, uint16(1), auction.CurrentRound)
		assert.Equal(t, 100*testScale, auction.CurrentPrice)
		assert.Equal(t, 100*testScale, auction.ExpectedSalesPerRound)

		round := env.reloadRound(t, auction.ID, 1)
		assert.Equal(t, models.RoundStatusStarted, round.Status)
		assert.Equal(t, baseTime, round.RoundStartAt)
		assert.Equal(t, baseTime+3600, round.RoundEndAt)
		assert.Equal(t, 100*testScale, round.Price)

		// Supply moved from the creator into the pad vault.
		require.Len(t, env.custody.saleMoves, 1)
		move := env.custody.saleMoves[0]
		assert.Equal(t, "creator", move.From)
		assert.Equal(t, "vault:genesis", move.To)
		assert.Equal(t, 1000*testScale, move.Amount)
	})

	t.Run("Duplicate Pad Rejected", func(t *testing.T) {
		_, err := env.engine.InitializePad(defaultPadParams("genesis"))
		assert.ErrorIs(t, err, ErrInvalidLifecycleState)
	})

	t.Run("Single Round Curve Rejected", func(t *testing.T) {
		params := defaultPadParams("flat")
		params.TMax = 1
		_, err := env.engine.InitializePad(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("TMax Above Round Limit Rejected", func(t *testing.T) {
		params := defaultPadParams("marathon")
		params.TMax = 21
		_, err := env.engine.InitializePad(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("Inverted Price Bounds Rejected", func(t *testing.T) {
		params := defaultPadParams("inverted")
		params.P0 = 1 * testScale
		params.PTMax = 2 * testScale
		_, err := env.engine.InitializePad(params)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})
}

func TestUpdatePad(t *testing.T) {
	env := newTestEnv(t)
	env.seedConfig(t)
	env.seedPad(t, defaultPadParams("genesis"))

	t.Run("Creator Changes Payment Receiver", func(t *testing.T) {
		auction, err := env.engine.UpdatePad(&UpdatePadParams{
			PadName:         "genesis",
			Mint:            "SALEMINT",
			Caller:          "creator",
			PaymentReceiver: "receiver2",
		})
		require.NoError(t, err)
		assert.Equal(t, "receiver2", auction.PaymentReceiver)
	})

	t.Run("Non Creator Rejected", func(t *testing.T) {
		_, err := env.engine.UpdatePad(&UpdatePadParams{
			PadName:         "genesis",
			Mint:            "SALEMINT",
			Caller:          "backauth",
			PaymentReceiver: "receiver3",
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Unknown Pad", func(t *testing.T) {
		_, err := env.engine.UpdatePad(&UpdatePadParams{
			PadName:         "missing",
			Mint:            "SALEMINT",
			Caller:          "creator",
			PaymentReceiver: "receiver2",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
