package solana

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	solanago "github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const transferMaxRetries = 3

// VaultCustody moves SPL balances between custody-held accounts. Vault and
// lock-vault addresses are program-derived from the pad identity, so the same
// pad always resolves to the same holding accounts.
type VaultCustody struct {
	rpc       *client.Client
	keys      *KeyManager
	password  string
	programID solanago.PublicKey
	limiter   *rate.Limiter
}

// NewVaultCustody wires the custody layer from the environment. PAD_PROGRAM_ID
// seeds vault derivation; KEYSTORE_PASSWORD unlocks the signing keystore.
func NewVaultCustody() (*VaultCustody, error) {
	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		return nil, fmt.Errorf("SOLANA_RPC_URL not set")
	}
	programID, err := solanago.PublicKeyFromBase58(os.Getenv("PAD_PROGRAM_ID"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAD_PROGRAM_ID: %w", err)
	}
	return &VaultCustody{
		rpc:       client.NewClient(rpcURL),
		keys:      NewKeyManager(),
		password:  os.Getenv("KEYSTORE_PASSWORD"),
		programID: programID,
		limiter:   rate.NewLimiter(rate.Limit(10), 10),
	}, nil
}

// VaultAddress derives the pad's sale-asset holding account.
func (v *VaultCustody) VaultAddress(padName, mint string) string {
	return v.deriveVault("pad_vault", padName, mint)
}

// LockVaultAddress derives the pad's lock holding account.
func (v *VaultCustody) LockVaultAddress(padName, mint string) string {
	return v.deriveVault("pad_lock_vault", padName, mint)
}

func (v *VaultCustody) deriveVault(prefix, padName, mint string) string {
	seeds := [][]byte{
		[]byte(prefix),
		[]byte(padName),
		[]byte(mint),
	}
	address, _, err := solanago.FindProgramAddress(seeds, v.programID)
	if err != nil {
		log.Errorf("Failed to derive %s for pad %s: %v", prefix, padName, err)
		return ""
	}
	return address.String()
}

// TransferPayment moves payment-mint units between accounts.
func (v *VaultCustody) TransferPayment(from, to, paymentMint string, amount uint64) error {
	return v.transfer(from, to, paymentMint, amount)
}

// TransferSaleAsset moves sale-asset units between accounts.
func (v *VaultCustody) TransferSaleAsset(from, to, mint string, amount uint64) error {
	return v.transfer(from, to, mint, amount)
}

func (v *VaultCustody) transfer(from, to, mint string, amount uint64) error {
	ctx := context.Background()

	signer, err := v.keys.LoadKeyStoreEntry(from, v.password)
	if err != nil {
		return fmt.Errorf("no custody key for %s: %w", from, err)
	}

	mintPubkey := common.PublicKeyFromString(mint)
	toOwner := common.PublicKeyFromString(to)
	fromATA, _, err := common.FindAssociatedTokenAddress(signer.PublicKey, mintPubkey)
	if err != nil {
		return fmt.Errorf("derive source ATA: %w", err)
	}
	toATA, _, err := common.FindAssociatedTokenAddress(toOwner, mintPubkey)
	if err != nil {
		return fmt.Errorf("derive destination ATA: %w", err)
	}

	instructions := []types.Instruction{}
	toInfo, _ := v.rpc.GetAccountInfo(ctx, toATA.ToBase58())
	if toInfo.Owner == (common.PublicKey{}) {
		instructions = append(instructions, associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 signer.PublicKey,
				Owner:                  toOwner,
				Mint:                   mintPubkey,
				AssociatedTokenAccount: toATA,
			},
		))
	}
	instructions = append(instructions, token.Transfer(token.TransferParam{
		From:   fromATA,
		To:     toATA,
		Auth:   signer.PublicKey,
		Amount: amount,
	}))

	var lastErr error
	for attempt := 0; attempt <= transferMaxRetries; attempt++ {
		if err := v.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}

		sig, err := v.send(ctx, signer, instructions)
		if err == nil {
			log.Infof("Transferred %d of %s from %s to %s: %s", amount, mint, from, to, sig)
			return nil
		}
		lastErr = err
		if attempt < transferMaxRetries {
			time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
			log.Warnf("Transfer failed for %s, attempt %d/%d, retrying... Error: %v",
				from, attempt+1, transferMaxRetries, err)
		}
	}
	return fmt.Errorf("transfer from %s after %d attempts: %w", from, transferMaxRetries+1, lastErr)
}

func (v *VaultCustody) send(ctx context.Context, signer *types.Account, instructions []types.Instruction) (string, error) {
	latest, err := v.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash: %w", err)
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        signer.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    instructions,
		}),
		Signers: []types.Account{*signer},
	})
	if err != nil {
		return "", fmt.Errorf("NewTransaction: %w", err)
	}
	return v.rpc.SendTransaction(ctx, tx)
}
