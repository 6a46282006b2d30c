// Package types defines the value types shared between the wallet core and
// its callers.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAddressType is returned when an address type name is not recognized.
var ErrUnknownAddressType = errors.New("unknown address type")

// AddressType selects the address encoding and its derivation purpose.
type AddressType int

const (
	// AddressSegwit is a native segwit v0 (P2WPKH, bech32) address. Default.
	AddressSegwit AddressType = iota
	// AddressLegacy is a legacy pay-to-pubkey-hash (P2PKH, base58check) address.
	AddressLegacy
)

// String returns the canonical name of the address type.
func (t AddressType) String() string {
	switch t {
	case AddressSegwit:
		return "segwit"
	case AddressLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("AddressType(%d)", int(t))
	}
}

// Valid reports whether t is a known address type.
func (t AddressType) Valid() bool {
	return t == AddressSegwit || t == AddressLegacy
}

// ParseAddressType parses an address type name. Accepts "segwit", "bech32",
// "p2wpkh", "legacy" and "p2pkh" in any case.
func ParseAddressType(s string) (AddressType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "segwit", "bech32", "p2wpkh", "native":
		return AddressSegwit, nil
	case "legacy", "p2pkh":
		return AddressLegacy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAddressType, s)
	}
}

// MarshalJSON encodes the address type as its name.
func (t AddressType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAddressType, int(t))
	}
	return json.Marshal(t.String())
}

// Address is a derived receiving address.
type Address struct {
	Text  string      `json:"address"`
	Type  AddressType `json:"type"`
	Path  string      `json:"path"`
	Index uint32      `json:"index"`
}

// String returns the encoded address text.
func (a Address) String() string {
	return a.Text
}

// IsZero returns true if the address has no text.
func (a Address) IsZero() bool {
	return a.Text == ""
}
