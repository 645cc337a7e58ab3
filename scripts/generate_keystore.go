package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"padcontrol/pkg/solana"
)

// Generates encrypted signer keypairs for the pad custody keystore. Every
// address that signs custody transfers (creators, vault authorities, the back
// authority) needs an entry under configs/keystore.
func main() {
	count := flag.Int("count", 1, "number of keypairs to generate")
	flag.Parse()

	password := os.Getenv("KEYSTORE_PASSWORD")
	if password == "" {
		log.Fatal("KEYSTORE_PASSWORD is required")
	}

	km := solana.NewKeyManager()
	for i := 0; i < *count; i++ {
		account, err := km.GenerateKeyPair()
		if err != nil {
			log.Fatalf("Failed to generate keypair: %v", err)
		}
		if err := km.SaveKeyStoreEntry(account, password); err != nil {
			log.Fatalf("Failed to save keystore entry: %v", err)
		}
		fmt.Println(account.PublicKey.ToBase58())
	}
}
