package solana

import (
	"crypto/ed25519"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
)

// Ed25519Verifier checks back-authority co-signatures: base58 ed25519
// signatures over the raw operation payload, verified against the authority's
// base58 public key.
type Ed25519Verifier struct{}

func NewEd25519Verifier() *Ed25519Verifier {
	return &Ed25519Verifier{}
}

func (Ed25519Verifier) Verify(authority string, message []byte, signature string) error {
	pubkey, err := solanago.PublicKeyFromBase58(authority)
	if err != nil {
		return fmt.Errorf("invalid authority key: %w", err)
	}
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("invalid signature format: %w", err)
	}
	if !ed25519.Verify(pubkey.Bytes(), message, sig[:]) {
		return fmt.Errorf("signature does not verify for %s", authority)
	}
	return nil
}
