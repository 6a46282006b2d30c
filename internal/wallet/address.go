package wallet

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/Klingon-tech/seedsim/pkg/crypto"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// pubKeyHashSize is the length of a Hash160 digest.
const pubKeyHashSize = 20

// AddressEncoder turns public keys into address text for one network.
type AddressEncoder struct {
	curve crypto.Curve
	net   *chaincfg.Params
}

// NewAddressEncoder creates an encoder. A nil network selects mainnet.
func NewAddressEncoder(curve crypto.Curve, net *chaincfg.Params) (*AddressEncoder, error) {
	if curve == nil {
		return nil, ErrCapabilityUnavailable
	}
	if net == nil {
		net = &chaincfg.MainNetParams
	}
	return &AddressEncoder{curve: curve, net: net}, nil
}

// Network returns the encoder's network parameters.
func (e *AddressEncoder) Network() *chaincfg.Params {
	return e.net
}

// Encode returns the address for pub. Uncompressed keys are compressed first.
func (e *AddressEncoder) Encode(pub []byte, typ types.AddressType) (string, error) {
	if !typ.Valid() {
		return "", fmt.Errorf("%w: %d", ErrAddressType, typ)
	}
	compressed, err := e.curve.CompressPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	hash := crypto.Hash160(compressed)

	switch typ {
	case types.AddressLegacy:
		return base58.CheckEncode(hash, e.net.PubKeyHashAddrID), nil
	default:
		conv, err := bech32.ConvertBits(hash, 8, 5, true)
		if err != nil {
			return "", fmt.Errorf("%w: bech32 convert: %v", ErrDerivation, err)
		}
		data := append([]byte{0x00}, conv...)
		addr, err := bech32.Encode(e.net.Bech32HRPSegwit, data)
		if err != nil {
			return "", fmt.Errorf("%w: bech32 encode: %v", ErrDerivation, err)
		}
		return addr, nil
	}
}

// Decode parses a legacy or segwit v0 address for the encoder's network and
// returns its type and 20-byte public key hash.
func (e *AddressEncoder) Decode(text string) (types.AddressType, []byte, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(text), e.net.Bech32HRPSegwit+"1") {
		return e.decodeSegwit(text)
	}

	hash, version, err := base58.CheckDecode(text)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, text, err)
	}
	if version != e.net.PubKeyHashAddrID {
		return 0, nil, fmt.Errorf("%w: %q is not a %s pay-to-pubkey-hash address", ErrInvalidAddress, text, e.net.Name)
	}
	if len(hash) != pubKeyHashSize {
		return 0, nil, fmt.Errorf("%w: %q has %d-byte hash", ErrInvalidAddress, text, len(hash))
	}
	return types.AddressLegacy, hash, nil
}

func (e *AddressEncoder) decodeSegwit(text string) (types.AddressType, []byte, error) {
	hrp, data, version, err := bech32.DecodeGeneric(text)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, text, err)
	}
	if hrp != e.net.Bech32HRPSegwit {
		return 0, nil, fmt.Errorf("%w: %q has prefix %q", ErrInvalidAddress, text, hrp)
	}
	if version != bech32.Version0 || len(data) == 0 || data[0] != 0 {
		return 0, nil, fmt.Errorf("%w: %q is not a witness v0 address", ErrInvalidAddress, text)
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, text, err)
	}
	if len(program) != pubKeyHashSize {
		return 0, nil, fmt.Errorf("%w: %q has %d-byte program", ErrInvalidAddress, text, len(program))
	}
	return types.AddressSegwit, program, nil
}
