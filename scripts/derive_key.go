// derive_key.go prints the pubkey and both address forms for a hex-encoded
// private key file.
// Usage: go run scripts/derive_key.go <keyfile> [mainnet|testnet]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/Klingon-tech/seedsim/internal/wallet"
	"github.com/Klingon-tech/seedsim/pkg/crypto"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <keyfile> [mainnet|testnet]")
		os.Exit(1)
	}
	net := &chaincfg.MainNetParams
	if len(os.Args) > 2 && os.Args[2] == "testnet" {
		net = &chaincfg.TestNet3Params
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fail(err)
	}
	keyBytes, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		fail(err)
	}

	curve := crypto.NewSecp256k1()
	pub, err := curve.PublicKey(keyBytes)
	if err != nil {
		fail(err)
	}
	enc, err := wallet.NewAddressEncoder(curve, net)
	if err != nil {
		fail(err)
	}

	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	for _, typ := range []types.AddressType{types.AddressSegwit, types.AddressLegacy} {
		addr, err := enc.Encode(pub, typ)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s=%s\n", typ, addr)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
