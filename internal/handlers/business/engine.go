package business

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"padcontrol/internal/events"
	"padcontrol/internal/models"
)

// TokenCustody moves fungible balances on behalf of the engine. Amounts are in
// the internal 9-decimals fixed-point scale; implementations convert to the
// mint's own decimals.
type TokenCustody interface {
	// TransferPayment debits the payment mint from one account and credits
	// another, creating the destination token account on demand.
	TransferPayment(from, to, paymentMint string, amount uint64) error
	// TransferSaleAsset moves sale-asset units between the creator, the pad
	// vault, the lock vault and buyers.
	TransferSaleAsset(from, to, mint string, amount uint64) error
	// VaultAddress derives the deterministic holding account for a pad.
	VaultAddress(padName, mint string) string
	// LockVaultAddress derives the deterministic lock account for a pad.
	LockVaultAddress(padName, mint string) string
}

// AssetSpec describes one numbered collection item to mint.
type AssetSpec struct {
	CollectionMint       string
	Owner                string
	Index                uint64
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []models.AssetCreator
}

// AssetRegistry mints numbered collection items and custodies the collection's
// update authority. MintCollectionAsset must be idempotent per asset
// identifier: minting the same spec twice returns the same identifier.
type AssetRegistry interface {
	MintCollectionAsset(spec AssetSpec) (string, error)
	SetCollectionUpdateAuthority(collectionMint, newAuthority string) error
}

// CoSignVerifier checks a back-authority co-signature over an operation
// payload.
type CoSignVerifier interface {
	Verify(authority string, message []byte, signature string) error
}

// Engine executes every pad operation as one atomic transaction against the
// records it touches. Collaborators are injected; none are read back for
// correctness except the database itself.
type Engine struct {
	DB       *gorm.DB
	Custody  TokenCustody
	Registry AssetRegistry
	Sink     events.Sink
	CoSign   CoSignVerifier
	// Now is the ledger clock; every time gate reads it, never a
	// caller-supplied timestamp.
	Now func() time.Time
}

func NewEngine(db *gorm.DB, custody TokenCustody, registry AssetRegistry, sink events.Sink, coSign CoSignVerifier) *Engine {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Engine{
		DB:       db,
		Custody:  custody,
		Registry: registry,
		Sink:     sink,
		CoSign:   coSign,
		Now:      time.Now,
	}
}

func (e *Engine) now() int64 {
	return e.Now().Unix()
}

func (e *Engine) emit(event string, timestamp int64, payload interface{}) {
	e.Sink.Emit(event, timestamp, payload)
}

// loadConfig fetches the singleton program config inside a transaction.
func loadConfig(tx *gorm.DB) (*models.ProgramConfig, error) {
	var config models.ProgramConfig
	if err := tx.First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("program config: %w", ErrNotFound)
		}
		return nil, err
	}
	return &config, nil
}

func checkProgramWorking(config *models.ProgramConfig) error {
	if config.ProgramStatus == models.ProgramStatusHalted {
		return ErrProgramHalted
	}
	return nil
}

// checkBackAuthority verifies the mandatory co-signature when the config
// demands one.
func (e *Engine) checkBackAuthority(config *models.ProgramConfig, message []byte, signature string) error {
	if !config.IsBackAuthorityRequired {
		return nil
	}
	if e.CoSign == nil || signature == "" {
		return fmt.Errorf("back authority co-signature required: %w", ErrUnauthorized)
	}
	if err := e.CoSign.Verify(config.BackAuthority, message, signature); err != nil {
		return fmt.Errorf("back authority co-signature: %w", ErrUnauthorized)
	}
	return nil
}

// checkPrivileged allows the pad creator or the back authority.
func checkPrivileged(creator, backAuthority, caller string) error {
	if caller != creator && caller != backAuthority {
		return fmt.Errorf("caller %s is neither creator nor back authority: %w", caller, ErrUnauthorized)
	}
	return nil
}

func addU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmetic
	}
	return sum, nil
}

func subU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrArithmetic
	}
	return a - b, nil
}
