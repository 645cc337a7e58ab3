package solana

import (
	"context"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	log "github.com/sirupsen/logrus"

	"padcontrol/internal/handlers/business"
)

// MetaplexRegistry mints numbered collection items as 1-of-1 tokens with
// Metaplex metadata. The registry's keystore account is the mint and update
// authority while the pad holds the collection's update authority.
type MetaplexRegistry struct {
	rpc      *client.Client
	keys     *KeyManager
	password string
	// authority signs mints and pays rent.
	authority string
}

func NewMetaplexRegistry() (*MetaplexRegistry, error) {
	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		return nil, fmt.Errorf("SOLANA_RPC_URL not set")
	}
	authority := os.Getenv("REGISTRY_AUTHORITY")
	if authority == "" {
		return nil, fmt.Errorf("REGISTRY_AUTHORITY not set")
	}
	return &MetaplexRegistry{
		rpc:       client.NewClient(rpcURL),
		keys:      NewKeyManager(),
		password:  os.Getenv("KEYSTORE_PASSWORD"),
		authority: authority,
	}, nil
}

// MintCollectionAsset mints one numbered item to its owner and returns the new
// mint address.
func (r *MetaplexRegistry) MintCollectionAsset(spec business.AssetSpec) (string, error) {
	ctx := context.Background()

	feePayer, err := r.keys.LoadKeyStoreEntry(r.authority, r.password)
	if err != nil {
		return "", fmt.Errorf("no registry key for %s: %w", r.authority, err)
	}

	owner := common.PublicKeyFromString(spec.Owner)
	collectionMint := common.PublicKeyFromString(spec.CollectionMint)
	mint := types.NewAccount()

	ata, _, err := common.FindAssociatedTokenAddress(owner, mint.PublicKey)
	if err != nil {
		return "", fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}
	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint.PublicKey)
	if err != nil {
		return "", fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}
	masterEditionPubkey, err := token_metadata.GetMasterEdition(mint.PublicKey)
	if err != nil {
		return "", fmt.Errorf("GetMasterEdition: %w", err)
	}

	mintRent, err := r.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", fmt.Errorf("GetMinimumBalanceForRentExemption: %w", err)
	}
	recent, err := r.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	creators := make([]token_metadata.Creator, 0, len(spec.Creators))
	for _, creator := range spec.Creators {
		creators = append(creators, token_metadata.Creator{
			Address: common.PublicKeyFromString(creator.Address),
			Share:   creator.Share,
		})
	}

	maxSupply := uint64(0)
	verified := false

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{mint, *feePayer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				system.CreateAccount(system.CreateAccountParam{
					From:     feePayer.PublicKey,
					New:      mint.PublicKey,
					Owner:    common.TokenProgramID,
					Lamports: mintRent,
					Space:    token.MintAccountSize,
				}),
				token.InitializeMint(token.InitializeMintParam{
					Decimals:   0,
					Mint:       mint.PublicKey,
					MintAuth:   feePayer.PublicKey,
					FreezeAuth: &feePayer.PublicKey,
				}),
				token_metadata.CreateMetadataAccountV3(
					token_metadata.CreateMetadataAccountV3Param{
						Metadata:                metadataPubkey,
						Mint:                    mint.PublicKey,
						MintAuthority:           feePayer.PublicKey,
						UpdateAuthority:         feePayer.PublicKey,
						Payer:                   feePayer.PublicKey,
						UpdateAuthorityIsSigner: true,
						IsMutable:               true,
						Data: token_metadata.DataV2{
							Name:                 spec.Name,
							Symbol:               spec.Symbol,
							Uri:                  spec.URI,
							SellerFeeBasisPoints: spec.SellerFeeBasisPoints,
							Creators:             &creators,
							Collection: &token_metadata.Collection{
								Verified: verified,
								Key:      collectionMint,
							},
						},
						CollectionDetails: nil,
					},
				),
				associated_token_account.CreateAssociatedTokenAccount(
					associated_token_account.CreateAssociatedTokenAccountParam{
						Funder:                 feePayer.PublicKey,
						Owner:                  owner,
						Mint:                   mint.PublicKey,
						AssociatedTokenAccount: ata,
					},
				),
				token.MintTo(token.MintToParam{
					Mint:   mint.PublicKey,
					To:     ata,
					Auth:   feePayer.PublicKey,
					Amount: 1,
				}),
				token_metadata.CreateMasterEditionV3(
					token_metadata.CreateMasterEditionParam{
						Edition:         masterEditionPubkey,
						Mint:            mint.PublicKey,
						UpdateAuthority: feePayer.PublicKey,
						MintAuthority:   feePayer.PublicKey,
						Metadata:        metadataPubkey,
						Payer:           feePayer.PublicKey,
						MaxSupply:       &maxSupply,
					},
				),
			},
		}),
	})
	if err != nil {
		return "", fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := r.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("SendTransaction: %w", err)
	}

	log.Infof("Minted collection asset #%d (%s) to %s: %s", spec.Index, mint.PublicKey.ToBase58(), spec.Owner, sig)
	return mint.PublicKey.ToBase58(), nil
}

// SetCollectionUpdateAuthority rewrites the collection metadata's update
// authority.
func (r *MetaplexRegistry) SetCollectionUpdateAuthority(collectionMint, newAuthority string) error {
	ctx := context.Background()

	authority, err := r.keys.LoadKeyStoreEntry(r.authority, r.password)
	if err != nil {
		return fmt.Errorf("no registry key for %s: %w", r.authority, err)
	}

	mint := common.PublicKeyFromString(collectionMint)
	target := common.PublicKeyFromString(newAuthority)
	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}

	recent, err := r.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{*authority},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        authority.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
					MetadataAccount:    metadataPubkey,
					UpdateAuthority:    authority.PublicKey,
					NewUpdateAuthority: &target,
				}),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := r.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("SendTransaction: %w", err)
	}

	log.Infof("Collection %s update authority set to %s: %s", collectionMint, newAuthority, sig)
	return nil
}
